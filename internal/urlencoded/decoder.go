package urlencoded

import (
	"bytes"

	"github.com/indigo-web/utils/uf"
	"github.com/indigo-web/wireparse/http/status"
	"github.com/indigo-web/wireparse/internal/hexconv"
)

// Decode decodes percent-encoded octets and plus-encoded spaces of src, appending the
// result to dst. If src contains nothing to decode, it is returned as is and dst stays
// untouched. dst may be src[:0] in order to decode the data in place.
func Decode(src, dst []byte) (decoded, buffer []byte, err error) {
	first := bytes.IndexAny(src, "%+")
	if first == -1 {
		return src, dst, nil
	}

	head := len(dst)
	dst = append(dst, src[:first]...)

	for i := first; i < len(src); i++ {
		switch c := src[i]; c {
		case '+':
			dst = append(dst, ' ')
		case '%':
			if i+2 >= len(src) {
				return nil, dst, status.ErrURLDecoding
			}

			a, b := hexconv.Halfbyte[src[i+1]], hexconv.Halfbyte[src[i+2]]
			if a|b > 0x0F {
				return nil, dst, status.ErrURLDecoding
			}

			dst = append(dst, (a<<4)|b)
			i += 2
		default:
			dst = append(dst, c)
		}
	}

	return dst[head:], dst, nil
}

func DecodeString(src string, buff []byte) (decoded string, buffer []byte, err error) {
	d, buffer, err := Decode(uf.S2B(src), buff)
	return uf.B2S(d), buffer, err
}
