package multipart

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/indigo-web/wireparse/config"
	"github.com/indigo-web/wireparse/http/parse"
	"github.com/indigo-web/wireparse/http/parser/http1"
	"github.com/indigo-web/wireparse/kv"
	"github.com/indigo-web/wireparse/transport"
	"go.uber.org/zap"
)

// Reader assembles body parts out of a multipart message. Every part's header section is
// parsed into its own storage, while the content is written into a stream supplied by
// the provider.
//
// Parse returns Completed once the last part is complete. Completed parts are queued and
// must be pulled with Next. Parse never commits them, so streams publishing their content
// elsewhere don't block it; Feed and Part.Open do. The reader must be closed when no more
// calls are going to be made, so the part in progress, if any, is abandoned.
type Reader struct {
	cfg         *config.Config
	framer      *Framer
	headers     *http1.HeaderParser
	provider    Provider
	log         *zap.Logger
	current     *Part
	ready       []*Part
	preamble    bool
	headersDone bool
	failed      parse.State
	err         error
}

// NewReader returns a reader for the boundary. Nil log disables logging.
func NewReader(cfg *config.Config, boundary string, provider Provider, log *zap.Logger) (*Reader, error) {
	framer, err := NewFramer(boundary, cfg.Multipart.MaxMessageSize)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Reader{
		cfg:      cfg,
		framer:   framer,
		headers:  http1.NewHeaderParser(nil, cfg.Multipart.MaxHeaderSize),
		provider: provider,
		log:      log,
		preamble: true,
		failed:   parse.NeedMoreData,
	}, nil
}

func (r *Reader) Parse(data []byte, offset *int) (state parse.State) {
	if r.failed != parse.NeedMoreData {
		return r.failed
	}

	if !parse.Acceptable(data, offset) {
		r.err = ErrUnexpectedEOF
		return r.fail(parse.Invalid)
	}

	defer func() {
		if v := recover(); v != nil {
			r.err = fmt.Errorf("multipart: recovered from panic: %v", v)
			state = r.fail(parse.Invalid)
		}
	}()

	for *offset < len(data) {
		framed, segment := r.framer.Parse(data, offset)
		if framed.Terminal() {
			return r.fail(framed)
		}

		if r.preamble {
			if framed != parse.Completed {
				return parse.NeedMoreData
			}

			r.preamble = false
			if segment.Final {
				// a message without any parts
				return r.finish()
			}

			r.begin()
			continue
		}

		if !r.write(segment.Leftover) || !r.write(segment.Bulk) {
			return r.failed
		}

		if framed == parse.NeedMoreData {
			return parse.NeedMoreData
		}

		if !r.complete(segment.Final) {
			return r.failed
		}

		if segment.Final {
			return r.finish()
		}

		r.begin()
	}

	return parse.NeedMoreData
}

// Next pops the earliest completed part.
func (r *Reader) Next() (*Part, bool) {
	if len(r.ready) == 0 {
		return nil, false
	}

	part := r.ready[0]
	r.ready[0] = nil
	r.ready = r.ready[1:]

	return part, true
}

// Err returns the cause of the failure, if any.
func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}

	return parse.Err(r.failed)
}

// Feed drives the reader with consecutive reads of the client, yielding every part as soon
// as it's complete. The sequence ends after the last part or on the first error. Data
// following the message is pushed back to the client.
func (r *Reader) Feed(ctx context.Context, c transport.Client) iter.Seq2[*Part, error] {
	return func(yield func(*Part, error) bool) {
		for chunk, err := range transport.Chunks(ctx, c) {
			if err != nil {
				yield(nil, err)
				return
			}

			offset := 0
			state := r.Parse(chunk, &offset)

			for part, ok := r.Next(); ok; part, ok = r.Next() {
				if err = r.commit(part); err != nil {
					yield(nil, err)
					return
				}

				if !yield(part, nil) {
					return
				}
			}

			switch state {
			case parse.Completed:
				if offset < len(chunk) {
					c.Pushback(chunk[offset:])
				}

				return
			case parse.Invalid, parse.SizeExceeded:
				yield(nil, r.Err())
				return
			}
		}

		yield(nil, ErrUnexpectedEOF)
	}
}

// Close abandons the part in progress along with the completed parts not pulled by Next.
// Parts pulled already are left intact.
func (r *Reader) Close() error {
	var errs []error
	if r.current != nil {
		errs = append(errs, guard(r.current.abort))
		r.current = nil
	}

	for part, ok := r.Next(); ok; part, ok = r.Next() {
		errs = append(errs, guard(part.abort))
	}

	return errors.Join(errs...)
}

// Reset prepares the reader for a new message with the same boundary. The part in
// progress must be released by Close beforehand.
func (r *Reader) Reset() {
	r.framer.Reset()
	r.current = nil
	r.ready = r.ready[:0]
	r.preamble = true
	r.headersDone = false
	r.failed = parse.NeedMoreData
	r.err = nil
}

func (r *Reader) begin() {
	r.current = newPart(kv.NewPrealloc(r.cfg.Headers.Prealloc))
	r.headers.Reset(r.current.Headers)
	r.headersDone = false
}

// write routes the content to the header parser until the header section is over, and
// into the stream afterwards.
func (r *Reader) write(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if !r.headersDone {
		offset := 0

		switch state := r.headers.Parse(data, &offset); state {
		case parse.NeedMoreData:
			return true
		case parse.Completed:
			r.headersDone = true
			if !r.acquire() {
				return false
			}

			data = data[offset:]
			if len(data) == 0 {
				return true
			}
		default:
			r.fail(state)
			return false
		}
	}

	if err := guard(func() error { return r.current.write(data) }); err != nil {
		r.err = fmt.Errorf("%w: write: %w", ErrStreamProvider, err)
		r.fail(parse.Invalid)
		return false
	}

	return true
}

func (r *Reader) acquire() bool {
	var stream Stream
	err := guard(func() (err error) {
		stream, err = r.provider.Stream(r.current.Headers)
		return err
	})
	if err == nil && stream == nil {
		err = errors.New("no stream returned")
	}

	if err != nil {
		r.err = fmt.Errorf("%w: %w", ErrStreamProvider, err)
		r.fail(parse.Invalid)
		return false
	}

	r.current.stream = stream
	return true
}

func (r *Reader) complete(final bool) bool {
	if !r.headersDone {
		r.log.Debug("body part terminated within its header section")
		r.err = ErrUnexpectedEOF
		r.fail(parse.Invalid)
		return false
	}

	part := r.current
	r.current = nil

	if err := guard(part.release); err != nil {
		r.log.Warn("couldn't release body part stream", zap.Error(err))
		r.err = fmt.Errorf("%w: release: %w", ErrStreamProvider, err)
		r.fail(parse.Invalid)
		return false
	}

	part.complete, part.final = true, final
	r.ready = append(r.ready, part)
	r.log.Debug("body part complete",
		zap.Int("headers", part.Headers.Len()),
		zap.Int64("size", part.size),
		zap.Bool("final", final),
	)

	return true
}

func (r *Reader) finish() parse.State {
	r.failed = parse.Completed
	return parse.Completed
}

// commit publishes a complete part. On failure, the message is invalidated and every
// part not yielded yet is abandoned.
func (r *Reader) commit(part *Part) error {
	err := guard(part.Commit)
	if err == nil {
		return nil
	}

	r.log.Warn("couldn't commit body part", zap.Error(err))
	r.err = fmt.Errorf("%w: commit: %w", ErrStreamProvider, err)
	r.fail(parse.Invalid)
	if err = errors.Join(guard(part.abort), r.Close()); err != nil {
		r.log.Warn("couldn't abort body part stream", zap.Error(err))
	}

	return r.err
}

func (r *Reader) fail(state parse.State) parse.State {
	if r.current != nil {
		if err := guard(r.current.abort); err != nil {
			r.log.Warn("couldn't abort body part stream", zap.Error(err))
		}

		r.current = nil
	}

	r.failed = state
	return state
}

// guard calls the provider's code, turning a panic into an error.
func guard(call func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()

	return call()
}
