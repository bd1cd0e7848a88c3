package method

type Method uint8

const (
	Unknown Method = iota
	GET
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH

	// Count is the greatest method value.
	Count = iota - 1
)

// List contains every known method, ordered by value. Unknown is excluded.
var List = []Method{GET, HEAD, POST, PUT, DELETE, CONNECT, OPTIONS, TRACE, PATCH}

var names = [...]string{
	Unknown: "UNKNOWN",
	GET:     "GET",
	HEAD:    "HEAD",
	POST:    "POST",
	PUT:     "PUT",
	DELETE:  "DELETE",
	CONNECT: "CONNECT",
	OPTIONS: "OPTIONS",
	TRACE:   "TRACE",
	PATCH:   "PATCH",
}

func (m Method) String() string {
	if int(m) >= len(names) {
		return names[Unknown]
	}

	return names[m]
}

// Parse maps a method token into the enum. Extension methods are reported as Unknown,
// even though they are syntactically valid.
func Parse(str string) Method {
	switch len(str) {
	case 3:
		switch str {
		case "GET":
			return GET
		case "PUT":
			return PUT
		}
	case 4:
		switch str {
		case "POST":
			return POST
		case "HEAD":
			return HEAD
		}
	case 5:
		switch str {
		case "PATCH":
			return PATCH
		case "TRACE":
			return TRACE
		}
	case 6:
		if str == "DELETE" {
			return DELETE
		}
	case 7:
		switch str {
		case "CONNECT":
			return CONNECT
		case "OPTIONS":
			return OPTIONS
		}
	}

	return Unknown
}
