package urlencoded

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/indigo-web/wireparse/http/status"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("no escaping", func(t *testing.T) {
		str := []byte("/hello")
		decoded, _, err := Decode(str, []byte{})
		require.NoError(t, err)
		require.Equal(t, "/hello", string(decoded))
	})

	t.Run("corners", func(t *testing.T) {
		decoded, _, err := Decode([]byte("%2fhello%2f"), []byte{})
		require.NoError(t, err)
		require.Equal(t, "/hello/", string(decoded))
	})

	t.Run("multiple consecutive", func(t *testing.T) {
		decoded, _, err := Decode([]byte("%2f%20hello"), []byte{})
		require.NoError(t, err)
		require.Equal(t, "/ hello", string(decoded))
	})

	t.Run("plus as space", func(t *testing.T) {
		decoded, _, err := Decode([]byte("hel+lo+"), []byte{})
		require.NoError(t, err)
		require.Equal(t, "hel lo ", string(decoded))
	})

	t.Run("encoded plus", func(t *testing.T) {
		decoded, _, err := Decode([]byte("a%2Bb"), []byte{})
		require.NoError(t, err)
		require.Equal(t, "a+b", string(decoded))
	})

	t.Run("incomplete sequence", func(t *testing.T) {
		for _, tc := range []string{"%2", "%", "abc%f"} {
			_, _, err := Decode([]byte(tc), []byte{})
			require.EqualError(t, err, status.ErrURLDecoding.Error(), tc)
		}
	})

	t.Run("invalid code", func(t *testing.T) {
		_, _, err := Decode([]byte("%2j"), []byte{})
		require.EqualError(t, err, status.ErrURLDecoding.Error())
	})

	t.Run("appends after existing data", func(t *testing.T) {
		buff := []byte("prefix")
		decoded, buff, err := Decode([]byte("a%20b"), buff)
		require.NoError(t, err)
		require.Equal(t, "a b", string(decoded))
		require.Equal(t, "prefixa b", string(buff))
	})

	t.Run("decode into itself", func(t *testing.T) {
		for _, tc := range []struct {
			Encoded []byte
			Want    string
		}{
			{[]byte("%2a"), "*"},
			{[]byte("he%6c%6Co"), "hello"},
			{[]byte("nothing here"), "nothing here"},
			{[]byte("a+b%21"), "a b!"},
		} {
			decoded, _, err := Decode(tc.Encoded, tc.Encoded[:0])
			require.NoError(t, err)
			require.Equal(t, tc.Want, string(decoded))
		}
	})

	t.Run("string", func(t *testing.T) {
		decoded, _, err := DecodeString("wo%20rld", nil)
		require.NoError(t, err)
		require.Equal(t, "wo rld", decoded)
	})
}

func BenchmarkDecode(b *testing.B) {
	buff := make([]byte, 0, 65536)

	for _, size := range []int{4096, 65536} {
		for _, prop := range []struct{ A, B int }{{0, 1}, {1, 5}, {1, 1}, {1, 0}} {
			b.Run(fmt.Sprintf("%d bytes %d:%d", size, prop.A, prop.B), func(b *testing.B) {
				str := []byte(mix("%2a", "a", prop.A, prop.B, size))
				b.ReportAllocs()
				b.SetBytes(int64(len(str)))
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, _, _ = Decode(str, buff[:0])
				}
			})
		}
	}
}

// mix produces a shuffled mix of a and b substrings in the given proportion, spanning
// roughly length bytes.
func mix(a, b string, propA, propB, length int) string {
	ratio := length / (len(a)*propA + len(b)*propB)
	as, bs := propA*ratio, propB*ratio
	arr := make([]string, 0, as+bs)

	for range as {
		arr = append(arr, a)
	}
	for range bs {
		arr = append(arr, b)
	}

	rand.Shuffle(len(arr), func(i, j int) {
		arr[i], arr[j] = arr[j], arr[i]
	})

	return strings.Join(arr, "")
}
