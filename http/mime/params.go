package mime

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/wireparse/http/status"
	"github.com/indigo-web/wireparse/internal/strutil"
	"github.com/indigo-web/wireparse/internal/urlencoded"
)

// MaxBoundaryLength is the longest boundary RFC 2046 admits.
const MaxBoundaryLength = 70

// Boundary extracts the boundary parameter from a multipart Content-Type value.
func Boundary(contentType string) (string, error) {
	if !IsMultipart(contentType) {
		return "", status.ErrUnsupportedMediaType
	}

	for key, value := range strutil.WalkParams(strutil.CutParams(contentType)) {
		if len(key) == 0 {
			break
		}

		if strcomp.EqualFold(key, "boundary") {
			if !ValidBoundary(value) {
				return "", status.ErrBadBoundary
			}

			return value, nil
		}
	}

	return "", status.ErrBadBoundary
}

// ValidBoundary checks the boundary to be 1 to 70 printable characters long, not ending
// with a space.
func ValidBoundary(boundary string) bool {
	if len(boundary) == 0 || len(boundary) > MaxBoundaryLength || boundary[len(boundary)-1] == ' ' {
		return false
	}

	for i := 0; i < len(boundary); i++ {
		if boundary[i] < 0x20 || boundary[i] > 0x7E {
			return false
		}
	}

	return true
}

// ContentDisposition is a parsed Content-Disposition field value.
type ContentDisposition struct {
	// Type is lower-cased, e.g. form-data, attachment or inline.
	Type     string
	Name     string
	Filename string
}

// IsFile tells whether the disposition names a file.
func (c ContentDisposition) IsFile() bool {
	return len(c.Filename) > 0
}

// Disposition parses a Content-Disposition value. The extended `filename*` parameter
// (RFC 5987) takes precedence over the plain one.
func Disposition(value string) (c ContentDisposition, err error) {
	typ, params := strutil.CutHeader(value)
	if len(typ) == 0 {
		return c, status.ErrBadRequest
	}

	c.Type = strings.ToLower(typ)
	var extended bool

	for key, val := range strutil.WalkParams(params) {
		switch {
		case len(key) == 0:
			return c, status.ErrBadRequest
		case strcomp.EqualFold(key, "name"):
			c.Name = val
		case strcomp.EqualFold(key, "filename"):
			if !extended {
				c.Filename = val
			}
		case strcomp.EqualFold(key, "filename*"):
			filename, ok := extendedValue(val)
			if !ok {
				return c, status.ErrBadRequest
			}

			c.Filename, extended = filename, true
		}
	}

	return c, nil
}

// extendedValue decodes `charset'language'percent-encoded`. Only UTF-8 and ASCII
// charsets are accepted, as nothing else can be returned as is.
func extendedValue(value string) (string, bool) {
	charset, rest, found := strings.Cut(value, "'")
	if !found {
		return "", false
	}

	_, encoded, found := strings.Cut(rest, "'")
	if !found {
		return "", false
	}

	if !plainCharset(charset) {
		return "", false
	}

	// plus is a literal attr-char here, not an encoded space
	encoded = strings.ReplaceAll(encoded, "+", "%2B")
	decoded, _, err := urlencoded.DecodeString(encoded, nil)
	return decoded, err == nil
}
