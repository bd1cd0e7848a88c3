package multipart

import (
	"errors"
	"io"

	"github.com/indigo-web/wireparse/http/mime"
	"github.com/indigo-web/wireparse/kv"
)

var (
	errIncomplete = errors.New("multipart: body part is not complete yet")
	errAborted    = errors.New("multipart: body part is abandoned")
)

// Part is a single body part. Its headers are immutable once the part is handed out, and
// its content is readable after it's complete.
type Part struct {
	Headers   *kv.Storage
	stream    Stream
	size      int64
	final     bool
	complete  bool
	released  bool
	committed bool
	aborted   bool
}

func newPart(headers *kv.Storage) *Part {
	return &Part{Headers: headers}
}

// Size returns the content length in bytes.
func (p *Part) Size() int64 {
	return p.size
}

// Final tells whether the part was closed by the closing delimiter.
func (p *Part) Final() bool {
	return p.final
}

func (p *Part) Complete() bool {
	return p.complete
}

// Stream returns the sink holding the content.
func (p *Part) Stream() Stream {
	return p.stream
}

// Commit publishes the content if the stream is a Committer, e.g. uploads it. Repeated
// calls do nothing.
func (p *Part) Commit() error {
	switch {
	case p.aborted:
		return errAborted
	case !p.complete:
		return errIncomplete
	case p.committed:
		return nil
	}

	if committer, ok := p.stream.(Committer); ok {
		if err := committer.Commit(); err != nil {
			return err
		}
	}

	p.committed = true
	return nil
}

// Open returns a reader over the content. The part is committed first, if it isn't yet.
func (p *Part) Open() (io.ReadCloser, error) {
	if err := p.Commit(); err != nil {
		return nil, err
	}

	return p.stream.Open()
}

// ReadAll is a shorthand for reading the whole content at once.
func (p *Part) ReadAll() ([]byte, error) {
	r, err := p.Open()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	return data, errors.Join(err, r.Close())
}

// Disposition parses the Content-Disposition header.
func (p *Part) Disposition() (mime.ContentDisposition, error) {
	return mime.Disposition(p.Headers.Value("Content-Disposition"))
}

// ContentType returns the Content-Type header, defaulting to text/plain (RFC 7578, 4.4).
func (p *Part) ContentType() string {
	return p.Headers.ValueOr("Content-Type", mime.Plain)
}

// Remove frees resources outliving the part, if its stream holds any.
func (p *Part) Remove() error {
	if remover, ok := p.stream.(Remover); ok {
		return remover.Remove()
	}

	return nil
}

func (p *Part) write(b []byte) error {
	n, err := p.stream.Write(b)
	p.size += int64(n)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}

	return err
}

func (p *Part) release() error {
	if p.released || p.stream == nil {
		return nil
	}

	p.released = true
	return p.stream.Release()
}

// abort abandons the part. Committed parts are left intact.
func (p *Part) abort() error {
	if p.aborted || p.committed || p.stream == nil {
		return nil
	}

	p.aborted = true
	if aborter, ok := p.stream.(Aborter); ok {
		p.released = true
		return aborter.Abort()
	}

	return p.release()
}
