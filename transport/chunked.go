package transport

import (
	"errors"
	"io"

	"github.com/indigo-web/chunkedbody"
)

// Dechunker decodes a body of the chunked transfer coding, read from the client. Bytes
// following the body are pushed back to the client.
type Dechunker struct {
	client  Client
	parser  *chunkedbody.Parser
	trailer bool
	chunk   []byte
	done    bool
}

// NewDechunker returns a decoder. Trailer tells whether the body is followed by a trailer
// section, as announced by the Trailer header.
func NewDechunker(client Client, trailer bool) *Dechunker {
	return &Dechunker{
		client:  client,
		parser:  chunkedbody.NewParser(chunkedbody.DefaultSettings()),
		trailer: trailer,
	}
}

func (d *Dechunker) Read(b []byte) (n int, err error) {
	for len(d.chunk) == 0 {
		if d.done {
			return 0, io.EOF
		}

		data, err := d.client.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrUnexpectedEOF
			}

			return 0, err
		}

		chunk, extra, err := d.parser.Parse(data, d.trailer)
		switch err {
		case nil:
		case io.EOF:
			d.done = true
		default:
			return 0, err
		}

		if len(extra) > 0 {
			d.client.Pushback(extra)
		}

		d.chunk = chunk
	}

	n = copy(b, d.chunk)
	d.chunk = d.chunk[n:]

	return n, nil
}
