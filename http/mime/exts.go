package mime

import (
	"path/filepath"
	"strings"
)

var Extension = map[string]MIME{
	".css":  CSS,
	".gif":  GIF,
	".htm":  HTML,
	".html": HTML,
	".jpeg": JPEG,
	".jpg":  JPEG,
	".js":   JS,
	".mjs":  JS,
	".json": JSON,
	".pdf":  PDF,
	".png":  PNG,
	".svg":  SVG,
	".txt":  Plain,
	".wasm": WASM,
	".webp": WEBP,
	".xml":  XML,
	".gz":   GZIP,
	".yaml": YAML,
	".yml":  YAML,
	".zip":  ZIP,
	".zstd": ZSTD,
}

// ByFilename guesses the MIME by the file extension, falling back to OctetStream.
func ByFilename(name string) MIME {
	if m, found := Extension[strings.ToLower(filepath.Ext(name))]; found {
		return m
	}

	return OctetStream
}

// DefaultCharset defines charsets, used by default for MIMEs unless explicitly set.
var DefaultCharset = map[MIME]Charset{
	CSS:            UTF8,
	HTML:           UTF8,
	JS:             UTF8,
	JSON:           UTF8,
	Plain:          UTF8,
	XML:            UTF8,
	FormUrlencoded: UTF8,
}
