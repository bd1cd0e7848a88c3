package transport

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/indigo-web/wireparse/http/parse"
	"github.com/indigo-web/wireparse/http/status"
	"go.uber.org/zap"
)

// ErrUnexpectedEOF is returned when the stream ends before the parser completes.
var ErrUnexpectedEOF = status.ErrUnexpectedEOF

// Chunks yields consecutive reads of the client until the stream is over. io.EOF ends the
// sequence silently, any other error is yielded once as the last element. Context is checked
// before every read.
func Chunks(ctx context.Context, c Client) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			data, err := c.Read()
			switch {
			case err == nil:
				if !yield(data, nil) {
					return
				}
			case errors.Is(err, io.EOF):
				return
			default:
				yield(nil, err)
				return
			}
		}
	}
}

// Feed drives the parser with data read from the client until it completes. Bytes following
// the parsed entity are pushed back to the client, so the next parser may pick them up.
// If the stream ends prematurely, parsers implementing parse.Finisher are finished;
// otherwise ErrUnexpectedEOF is returned. Nil log disables logging.
func Feed(ctx context.Context, c Client, p parse.Parser, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	var total int

	for data, err := range Chunks(ctx, c) {
		if err != nil {
			log.Debug("read failed", zap.Int("consumed", total), zap.Error(err))
			return err
		}

		log.Debug("read", zap.Int("bytes", len(data)))

		offset := 0
		state := p.Parse(data, &offset)
		total += offset

		switch state {
		case parse.NeedMoreData:
		case parse.Completed:
			if offset < len(data) {
				c.Pushback(data[offset:])
			}

			return nil
		default:
			log.Warn("parsing failed", zap.Stringer("state", state), zap.Int("consumed", total))
			return parse.Err(state)
		}
	}

	finisher, ok := p.(parse.Finisher)
	if !ok {
		log.Warn("stream terminated prematurely", zap.Int("consumed", total))
		return ErrUnexpectedEOF
	}

	switch state := finisher.Finish(); state {
	case parse.Completed:
		return nil
	case parse.NeedMoreData:
		return ErrUnexpectedEOF
	default:
		log.Warn("parsing failed", zap.Stringer("state", state), zap.Int("consumed", total))
		return parse.Err(state)
	}
}
