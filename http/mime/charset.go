package mime

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/wireparse/internal/strutil"
)

// Charset is an IANA character set name. Names are case-insensitive.
type Charset = string

const (
	UTF8   Charset = "utf-8"
	ASCII  Charset = "us-ascii"
	Latin1 Charset = "iso-8859-1"
)

// CharsetOf returns the charset parameter of a media type in lower case, falling back to
// DefaultCharset. Empty string is returned if neither is known.
func CharsetOf(contentType string) Charset {
	value, params := strutil.CutHeader(contentType)
	for key, charset := range strutil.WalkParams(params) {
		if strcomp.EqualFold(key, "charset") {
			return strings.ToLower(charset)
		}
	}

	return DefaultCharset[MIME(strings.ToLower(value))]
}

// plainCharset tells whether text in the charset can be taken as is.
func plainCharset(charset Charset) bool {
	return strcomp.EqualFold(charset, UTF8) || strcomp.EqualFold(charset, ASCII)
}
