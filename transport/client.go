package transport

import (
	"errors"
	"io"
	"time"
)

// maxEmptyReads bounds consecutive reads returning neither data nor error.
const maxEmptyReads = 100

type Client interface {
	// Read returns the next piece of data, which is valid until the next call. A nil error
	// guarantees the piece to be non-empty.
	Read() ([]byte, error)
	// Pushback preserves a piece of data from the previous read for the next one.
	Pushback([]byte)
}

type deadliner interface {
	SetReadDeadline(t time.Time) error
}

type client struct {
	src     io.Reader
	buff    []byte
	pending []byte
	timeout time.Duration
	err     error
}

// NewClient returns a client reading from src into buff. If src supports read deadlines
// (like net.Conn does) and the timeout is positive, every read is limited by it.
func NewClient(src io.Reader, timeout time.Duration, buff []byte) Client {
	return &client{
		src:     src,
		buff:    buff,
		timeout: timeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back. Timeouts are also
// handled automatically.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if c.err != nil {
		return nil, c.err
	}

	if d, ok := c.src.(deadliner); ok && c.timeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	for range maxEmptyReads {
		n, err := c.src.Read(c.buff)
		if n > 0 {
			// the error is reported on the next read, after the data is processed
			c.err = err
			return c.buff[:n], nil
		}

		if err != nil {
			c.err = err
			return nil, err
		}
	}

	return nil, io.ErrNoProgress
}

func (c *client) Pushback(b []byte) {
	c.pending = b
}

type clientReader struct {
	client Client
}

// NewReader exposes the client as an io.Reader. Data not fitting into the passed buffer
// is pushed back.
func NewReader(c Client) io.Reader {
	return clientReader{client: c}
}

func (r clientReader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}

	data, err := r.client.Read()
	if err != nil {
		return 0, err
	}

	n := copy(b, data)
	if n < len(data) {
		r.client.Pushback(data[n:])
	}

	return n, nil
}

type fixedReader struct {
	client Client
	left   int64
}

// NewFixedReader reads exactly length bytes of the client, as framed by Content-Length. The
// rest is left to the client. ErrUnexpectedEOF is returned if the stream ends earlier.
func NewFixedReader(c Client, length int64) io.Reader {
	return &fixedReader{client: c, left: length}
}

func (f *fixedReader) Read(b []byte) (int, error) {
	if f.left <= 0 {
		return 0, io.EOF
	}

	data, err := f.client.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrUnexpectedEOF
		}

		return 0, err
	}

	n := copy(b, data[:min(int64(len(data)), f.left)])
	if n < len(data) {
		f.client.Pushback(data[n:])
	}

	f.left -= int64(n)

	return n, nil
}
