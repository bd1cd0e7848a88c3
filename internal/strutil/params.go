package strutil

import "iter"

// WalkParams iterates over header parameters of the form `key=value; key="value"`.
// Quoted values are unquoted, keys are returned as is. A malformed sequence is reported
// as an empty pair, which is always the last one.
func WalkParams(data string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for data = LStripWS(data); len(data) > 0; data = LStripWS(data) {
			eq := 0
			for eq < len(data) && IsToken(data[eq]) {
				eq++
			}

			if eq == 0 || eq == len(data) || data[eq] != '=' {
				yield("", "")
				return
			}

			key := data[:eq]
			data = data[eq+1:]

			var value string
			if len(data) > 0 && data[0] == '"' {
				end, ok := closingQuote(data)
				if !ok {
					yield("", "")
					return
				}

				value, data = Unquote(data[:end+1]), data[end+1:]
			} else {
				n := 0
				for n < len(data) && IsToken(data[n]) {
					n++
				}

				value, data = data[:n], data[n:]
			}

			data = LStripWS(data)
			switch {
			case len(data) == 0:
			case data[0] == ';':
				data = data[1:]
			default:
				yield("", "")
				return
			}

			if !yield(key, value) {
				return
			}
		}
	}
}

func closingQuote(str string) (int, bool) {
	for i := 1; i < len(str); i++ {
		switch str[i] {
		case '\\':
			i++
		case '"':
			return i, true
		}
	}

	return 0, false
}
