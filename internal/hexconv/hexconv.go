package hexconv

// Halfbyte maps an ASCII hex digit into its value. Every other byte maps into 0xFF,
// so a|b > 0x0F for any pair containing a non-hex character.
var Halfbyte = func() (table [256]byte) {
	for i := range table {
		table[i] = 0xFF
	}

	for c := '0'; c <= '9'; c++ {
		table[c] = byte(c - '0')
	}

	for c := 'a'; c <= 'f'; c++ {
		table[c] = byte(c-'a') + 10
		table[c-'a'+'A'] = byte(c-'a') + 10
	}

	return table
}()
