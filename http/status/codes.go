package status

type Code uint16

// Codes a status line may carry. The list is deliberately not exhaustive: a parsed status
// line accepts any code in the [MinCode, MaxCode] range.
const (
	Continue           Code = 100 // RFC 9110, 15.2.1
	SwitchingProtocols Code = 101 // RFC 9110, 15.2.2

	OK        Code = 200 // RFC 9110, 15.3.1
	Created   Code = 201 // RFC 9110, 15.3.2
	NoContent Code = 204 // RFC 9110, 15.3.5

	MovedPermanently Code = 301 // RFC 9110, 15.4.2
	Found            Code = 302 // RFC 9110, 15.4.3
	NotModified      Code = 304 // RFC 9110, 15.4.5

	BadRequest                  Code = 400 // RFC 9110, 15.5.1
	NotFound                    Code = 404 // RFC 9110, 15.5.5
	LengthRequired              Code = 411 // RFC 9110, 15.5.12
	RequestEntityTooLarge       Code = 413 // RFC 9110, 15.5.14
	RequestURITooLong           Code = 414 // RFC 9110, 15.5.15
	UnsupportedMediaType        Code = 415 // RFC 9110, 15.5.16
	RequestHeaderFieldsTooLarge Code = 431 // RFC 6585, 5

	InternalServerError     Code = 500 // RFC 9110, 15.6.1
	NotImplemented          Code = 501 // RFC 9110, 15.6.2
	HTTPVersionNotSupported Code = 505 // RFC 9110, 15.6.6
)

const (
	MinCode Code = 100
	MaxCode Code = 1000
)

// Valid tells whether the code lies in the range a status line is allowed to carry.
func (c Code) Valid() bool {
	return c >= MinCode && c <= MaxCode
}

// Class returns the leading digit of the code, e.g. 4 for 404.
func (c Code) Class() int {
	return int(c) / 100
}

// Text returns the canonical reason phrase for known codes and an empty string otherwise.
func Text(code Code) string {
	switch code {
	case Continue:
		return "Continue"
	case SwitchingProtocols:
		return "Switching Protocols"
	case OK:
		return "OK"
	case Created:
		return "Created"
	case NoContent:
		return "No Content"
	case MovedPermanently:
		return "Moved Permanently"
	case Found:
		return "Found"
	case NotModified:
		return "Not Modified"
	case BadRequest:
		return "Bad Request"
	case NotFound:
		return "Not Found"
	case LengthRequired:
		return "Length Required"
	case RequestEntityTooLarge:
		return "Request Entity Too Large"
	case RequestURITooLong:
		return "Request URI Too Long"
	case UnsupportedMediaType:
		return "Unsupported Media Type"
	case RequestHeaderFieldsTooLarge:
		return "Request Header Fields Too Large"
	case InternalServerError:
		return "Internal Server Error"
	case NotImplemented:
		return "Not Implemented"
	case HTTPVersionNotSupported:
		return "HTTP Version Not Supported"
	}

	return ""
}
