package proto

type Proto uint8

const (
	Unknown Proto = 0
	HTTP10  Proto = 1 << iota
	HTTP11
	HTTP2

	HTTP1 = HTTP10 | HTTP11
)

func (p Proto) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	}

	return ""
}

// Parse maps a major/minor version pair into a known protocol. Versions nobody speaks
// result in Unknown.
func Parse(major, minor int) Proto {
	switch {
	case major == 1 && minor == 0:
		return HTTP10
	case major == 1 && minor == 1:
		return HTTP11
	case major == 2 && minor == 0:
		return HTTP2
	}

	return Unknown
}
