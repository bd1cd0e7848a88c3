package dummy

import (
	"io"

	"github.com/indigo-web/wireparse/transport"
)

var _ transport.Client = new(Client)

// Client returns the pieces it was initialised with, one per read, and io.EOF afterwards.
// Pushed back data is returned before the next piece.
type Client struct {
	pointer int
	tmp     []byte
	data    [][]byte
	err     error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{data: data}
}

// Split returns a client yielding the data in pieces of n bytes.
func Split(data []byte, n int) *Client {
	var pieces [][]byte
	for i := 0; i < len(data); i += n {
		pieces = append(pieces, data[i:min(i+n, len(data))])
	}

	return NewMockClient(pieces...)
}

// FailWith makes the client return the error instead of io.EOF once the data is over.
func (c *Client) FailWith(err error) *Client {
	c.err = err
	return c
}

func (c *Client) Read() (data []byte, err error) {
	if len(c.tmp) > 0 {
		data, c.tmp = c.tmp, nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if c.err != nil {
			return nil, c.err
		}

		return nil, io.EOF
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.tmp = takeback
}

// Pending returns data preserved via Pushback.
func (c *Client) Pending() []byte {
	return c.tmp
}
