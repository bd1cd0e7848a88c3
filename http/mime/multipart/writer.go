package multipart

import (
	"errors"
	"io"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/wireparse/http/mime"
	"github.com/indigo-web/wireparse/kv"
)

// boundaryLength is the length of generated boundaries.
const boundaryLength = 32

var errWriterClosed = errors.New("multipart: writer is closed")

// Writer builds a multipart message.
type Writer struct {
	w        io.Writer
	boundary string
	parts    int
	closed   bool
}

// NewWriter returns a writer with a random boundary.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:        w,
		boundary: uniuri.NewLen(boundaryLength),
	}
}

func (w *Writer) Boundary() string {
	return w.boundary
}

// SetBoundary overrides the generated boundary. It must be called before any part is
// written.
func (w *Writer) SetBoundary(boundary string) error {
	if w.parts > 0 {
		return errors.New("multipart: SetBoundary called after a part was written")
	}

	if !mime.ValidBoundary(boundary) {
		return ErrBadBoundary
	}

	w.boundary = boundary
	return nil
}

// ContentType returns the multipart/form-data content type carrying the boundary.
func (w *Writer) ContentType() string {
	boundary := w.boundary
	if strings.ContainsAny(boundary, `()<>@,;:\"/[]?= `) {
		boundary = `"` + boundary + `"`
	}

	return mime.Multipart + "; boundary=" + boundary
}

// CreatePart writes the delimiter and the headers of a new part, returning the writer
// for its content. The content must not contain the delimiter.
func (w *Writer) CreatePart(headers *kv.Storage) (io.Writer, error) {
	if w.closed {
		return nil, errWriterClosed
	}

	var b strings.Builder
	if w.parts > 0 {
		b.WriteString("\r\n")
	}

	b.WriteString("--")
	b.WriteString(w.boundary)
	b.WriteString("\r\n")

	for key, value := range headers.Pairs() {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	b.WriteString("\r\n")
	w.parts++

	_, err := io.WriteString(w.w, b.String())
	return w.w, err
}

// WriteField writes a form field.
func (w *Writer) WriteField(name, value string) error {
	headers := kv.New().Add("Content-Disposition", `form-data; name="`+escapeQuotes(name)+`"`)
	part, err := w.CreatePart(headers)
	if err != nil {
		return err
	}

	_, err = io.WriteString(part, value)
	return err
}

// CreateFormFile starts a file part, guessing its Content-Type by the filename.
func (w *Writer) CreateFormFile(field, filename string) (io.Writer, error) {
	headers := kv.New().
		Add("Content-Disposition",
			`form-data; name="`+escapeQuotes(field)+`"; filename="`+escapeQuotes(filename)+`"`,
		).
		Add("Content-Type", mime.ByFilename(filename))

	return w.CreatePart(headers)
}

// Close writes the closing delimiter.
func (w *Writer) Close() error {
	if w.closed {
		return errWriterClosed
	}

	w.closed = true
	closing := "--" + w.boundary + "--\r\n"
	if w.parts > 0 {
		closing = "\r\n" + closing
	}

	_, err := io.WriteString(w.w, closing)
	return err
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
