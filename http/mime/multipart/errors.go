package multipart

import "github.com/indigo-web/wireparse/http/status"

var (
	ErrBadBoundary   = status.ErrBadBoundary
	ErrUnexpectedEOF = status.ErrUnexpectedEOF
	// ErrStreamProvider is a configuration failure rather than a parse error: the provider
	// couldn't supply a sink for a body part.
	ErrStreamProvider = status.NewError(status.InternalServerError, "multipart: stream provider failure")
)
