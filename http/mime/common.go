package mime

import (
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/wireparse/internal/strutil"
)

type MIME = string

const (
	OctetStream    MIME = "application/octet-stream"
	Plain          MIME = "text/plain"
	HTML           MIME = "text/html"
	XML            MIME = "text/xml"
	JSON           MIME = "application/json"
	YAML           MIME = "application/yaml"
	PDF            MIME = "application/pdf"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
	Multipart      MIME = "multipart/form-data"
	MultipartMixed MIME = "multipart/mixed"
	HTTP           MIME = "message/http"
	ZIP            MIME = "application/zip"
	GZIP           MIME = "application/gzip"
	ZSTD           MIME = "application/zstd"
	CSS            MIME = "text/css"
	GIF            MIME = "image/gif"
	JPEG           MIME = "image/jpeg"
	PNG            MIME = "image/png"
	SVG            MIME = "image/svg+xml"
	WEBP           MIME = "image/webp"
	JS             MIME = "text/javascript"
	WASM           MIME = "application/wasm"
)

// Complies returns whether two MIMEs are compatible. Empty MIME is
// considered compatible with any other MIME
func Complies(mime MIME, with string) bool {
	// get rid of parameters if any
	with, _ = strutil.CutHeader(with)
	return len(with) == 0 || with == mime
}

// IsMultipart tells whether the content type belongs to the multipart family.
func IsMultipart(contentType string) bool {
	value, _ := strutil.CutHeader(contentType)
	const prefix = "multipart/"

	return len(value) > len(prefix) && strcomp.EqualFold(value[:len(prefix)], prefix)
}
