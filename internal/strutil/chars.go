package strutil

// tokenChars marks the tchar set of RFC 9110, 5.6.2.
var tokenChars = func() (table [256]bool) {
	for c := '0'; c <= '9'; c++ {
		table[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		table[c] = true
		table[c-'a'+'A'] = true
	}

	for _, c := range []byte("!#$%&'*+-.^_`|~") {
		table[c] = true
	}

	return table
}()

// IsToken tells whether the character may appear in a token, e.g. a header name
// or a request method.
func IsToken(c byte) bool {
	return tokenChars[c]
}

// IsVisible reports whether the character is a visible US-ASCII one (VCHAR).
func IsVisible(c byte) bool {
	return c > 0x20 && c < 0x7F
}
