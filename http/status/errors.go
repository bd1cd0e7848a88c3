package status

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrBadRequest              = NewError(BadRequest, "bad request")
	ErrURLDecoding             = NewError(BadRequest, "invalid urlencoded sequence")
	ErrBadBoundary             = NewError(BadRequest, "malformed multipart boundary")
	ErrUnexpectedEOF           = NewError(BadRequest, "unexpected end of stream")
	ErrRequestEntityTooLarge   = NewError(RequestEntityTooLarge, "request entity too large")
	ErrHeaderFieldsTooLarge    = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
	ErrURITooLong              = NewError(RequestURITooLong, "request line is too long")
	ErrUnsupportedMediaType    = NewError(UnsupportedMediaType, "unsupported media type")
	ErrInternalServerError     = NewError(InternalServerError, "internal server error")
	ErrHTTPVersionNotSupported = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrUnsupportedEncoding     = NewError(NotImplemented, "unsupported transfer coding")
)
