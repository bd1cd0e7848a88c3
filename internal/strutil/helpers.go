package strutil

import "strings"

func LStripWS(str string) string {
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case ' ', '\t':
		default:
			return str[i:]
		}
	}

	return ""
}

func RStripWS(str string) string {
	for i := len(str); i > 0; i-- {
		switch str[i-1] {
		case ' ', '\t':
		default:
			return str[:i]
		}
	}

	return ""
}

// CutHeader splits a header value into the value itself and its parameters, if any.
// Whitespaces around both are stripped.
func CutHeader(header string) (value, params string) {
	sep := strings.IndexByte(header, ';')
	if sep == -1 {
		return RStripWS(LStripWS(header)), ""
	}

	return RStripWS(LStripWS(header[:sep])), LStripWS(header[sep+1:])
}

// CutParams returns the parameters part of a header value.
func CutParams(header string) (params string) {
	_, params = CutHeader(header)
	return params
}

// Unquote strips enclosing double quotes and resolves quoted-pairs. Unquoted strings
// are returned as is.
func Unquote(str string) string {
	if len(str) < 2 || str[0] != '"' || str[len(str)-1] != '"' {
		return str
	}

	str = str[1 : len(str)-1]
	if strings.IndexByte(str, '\\') == -1 {
		return str
	}

	var b strings.Builder
	b.Grow(len(str))

	for i := 0; i < len(str); i++ {
		if str[i] == '\\' && i+1 < len(str) {
			i++
		}

		b.WriteByte(str[i])
	}

	return b.String()
}
