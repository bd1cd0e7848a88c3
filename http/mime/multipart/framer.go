package multipart

import (
	"bytes"

	"github.com/indigo-web/wireparse/http/mime"
	"github.com/indigo-web/wireparse/http/parse"
)

const (
	// MinMessageSize is the size of the shortest multipart message possible, `--B--\r\n`
	// with a single-character boundary plus a part-less preamble. Size limits below it are
	// raised.
	MinMessageSize = 10
	// maxPadding bounds the linear whitespace admitted between a boundary and its CRLF.
	maxPadding = 256
)

type framerState uint8

const (
	eBodyContent framerState = iota
	eAfterCR
	eAfterLF
	eAfterDash1
	// eBoundaryToken matches the rest of the reference boundary and then walks its suffix:
	// optional `--` followed by optional linear whitespace.
	eBoundaryToken
	eAfterCR2
)

// Segment is the content decided on during a single call. Leftover holds bytes once
// suspected to be a delimiter that turned out to be content, and always precedes Bulk.
// Both views are valid until the next call only.
type Segment struct {
	Leftover, Bulk []byte
	// Final is set on the segment closing the last body part.
	Final bool
}

func (s Segment) Len() int {
	return len(s.Leftover) + len(s.Bulk)
}

// AppendTo appends both views, in order, to dst.
func (s Segment) AppendTo(dst []byte) []byte {
	return append(append(dst, s.Leftover...), s.Bulk...)
}

// Framer splits a multipart message into body parts by detecting boundary delimiters.
// Body parts are reported raw, headers included. The first reported part is the preamble,
// which always precedes the first delimiter and is usually empty.
//
// A delimiter is `CRLF--boundary`, optionally followed by `--` closing the message, and
// by linear whitespace, up to the terminating CRLF. The stream is treated as if it was
// preceded by a CRLF, so a message may start with the delimiter right away.
type Framer struct {
	state  framerState
	failed parse.State
	budget parse.Budget
	// ref is the delimiter to look for, `\r\n--boundary`.
	ref     []byte
	matched int
	dashes  int
	padding int
	final   bool
	// pending holds the bytes of the provisional match, which were seen during previous
	// calls. The first virtual bytes of it aren't real and are never replayed.
	pending, spare []byte
	virtual        int
}

// NewFramer returns a framer looking for the boundary. Non-positive maxSize disables the
// limit for the whole message, otherwise it's raised to MinMessageSize at least.
func NewFramer(boundary string, maxSize int64) (*Framer, error) {
	if !mime.ValidBoundary(boundary) {
		return nil, ErrBadBoundary
	}

	if maxSize > 0 {
		maxSize = max(maxSize, MinMessageSize)
	}

	ref := make([]byte, 0, len(boundary)+4)
	ref = append(append(ref, "\r\n--"...), boundary...)
	f := &Framer{
		budget:  parse.NewBudget(maxSize),
		ref:     ref,
		pending: make([]byte, 0, len(ref)+maxPadding+4),
		spare:   make([]byte, 0, len(ref)+maxPadding+4),
	}
	f.Reset()

	return f, nil
}

// Parse consumes the data starting at offset. NeedMoreData means the returned segment
// continues the current body part. Completed means the returned segment finishes it; the
// segment's Final flag tells whether it was the last one. Once the last part is complete,
// any subsequent data is the epilogue, which is consumed silently and never counts against
// the size limit.
func (f *Framer) Parse(data []byte, offset *int) (parse.State, Segment) {
	if f.failed != parse.NeedMoreData {
		return f.failed, Segment{}
	}

	if !parse.Acceptable(data, offset) {
		return f.fail(parse.Invalid), Segment{}
	}

	if f.final {
		// the epilogue isn't a part of the message, so it isn't charged to the budget
		*offset = len(data)
		return parse.Completed, Segment{Final: true}
	}

	end, clipped := f.budget.Clip(data, *offset)
	start, pos := *offset, *offset

	var segment Segment
	// candidate is the position the provisional match began at in the current call. It's
	// -1 if there's no match going on or it began during one of the previous calls.
	candidate := -1

	for pos < end {
		c := data[pos]

		switch f.state {
		case eBodyContent:
			cr := bytes.IndexByte(data[pos:end], '\r')
			if cr == -1 {
				pos = end
				break
			}

			pos += cr
			candidate = pos
			f.state, f.matched = eAfterCR, 1
			pos++
		case eAfterCR:
			if c != '\n' {
				f.mismatch(&segment, candidate)
				candidate = -1
				continue
			}

			f.state, f.matched = eAfterLF, 2
			pos++
		case eAfterLF:
			if c != '-' {
				f.mismatch(&segment, candidate)
				candidate = -1
				continue
			}

			f.state, f.matched = eAfterDash1, 3
			pos++
		case eAfterDash1:
			if c != '-' {
				f.mismatch(&segment, candidate)
				candidate = -1
				continue
			}

			f.state, f.matched = eBoundaryToken, 4
			pos++
		case eBoundaryToken:
			if f.matched < len(f.ref) {
				if c != f.ref[f.matched] {
					f.mismatch(&segment, candidate)
					candidate = -1
					continue
				}

				f.matched++
				pos++
				continue
			}

			if !f.suffix(c) {
				f.mismatch(&segment, candidate)
				candidate = -1
				continue
			}

			pos++
		case eAfterCR2:
			if c != '\n' {
				f.mismatch(&segment, candidate)
				candidate = -1
				continue
			}

			if candidate != -1 {
				segment.Bulk = data[start:candidate]
			}

			segment.Final = f.dashes == 2
			f.final = segment.Final
			f.consume(offset, pos+1)
			f.restart()

			return parse.Completed, segment
		}
	}

	f.consume(offset, pos)

	if clipped {
		return f.fail(parse.SizeExceeded), Segment{}
	}

	contentEnd := pos
	if f.state != eBodyContent {
		from := start
		if candidate != -1 {
			from = candidate
		}

		f.pending = append(f.pending, data[from:pos]...)
		contentEnd = from
	}

	segment.Bulk = data[start:contentEnd]

	return parse.NeedMoreData, segment
}

// suffix walks bytes following the reference boundary and reports whether the byte may
// still belong to the delimiter.
func (f *Framer) suffix(c byte) bool {
	switch {
	case c == '-' && f.dashes < 2 && f.padding == 0:
		f.dashes++
	case f.dashes == 1:
		return false
	case c == ' ' || c == '\t':
		f.padding++
		return f.padding <= maxPadding
	case c == '\r':
		f.state = eAfterCR2
	default:
		return false
	}

	return true
}

// mismatch abandons the provisional match. Its bytes are content: those from the current
// call stay in the bulk, and those from the previous calls become the leftover. The
// mismatching byte itself must be processed again, as it may begin a new match.
func (f *Framer) mismatch(segment *Segment, candidate int) {
	if candidate == -1 {
		segment.Leftover = f.pending[f.virtual:]
		// the leftover must stay intact until the next call, but pending may be appended
		// to before this one is over
		f.pending, f.spare = f.spare[:0], f.pending
	} else {
		f.pending = f.pending[:0]
	}

	f.virtual = 0
	f.state, f.matched = eBodyContent, 0
	f.dashes, f.padding = 0, 0
}

func (f *Framer) restart() {
	f.state, f.matched = eBodyContent, 0
	f.dashes, f.padding = 0, 0
	f.pending = f.pending[:0]
	f.virtual = 0
}

// Final tells whether the closing delimiter was met.
func (f *Framer) Final() bool {
	return f.final
}

// Consumed returns the number of message bytes consumed so far. The epilogue isn't counted.
func (f *Framer) Consumed() int64 {
	return f.budget.Total
}

// Reset prepares the framer for a new message with the same boundary.
func (f *Framer) Reset() {
	f.restart()
	f.failed = parse.NeedMoreData
	f.final = false
	f.budget.Reset()
	// pretend a CRLF was already seen, so the very first delimiter needn't be preceded by one
	f.pending = append(f.pending, "\r\n"...)
	f.virtual = len(f.pending)
	f.state, f.matched = eAfterLF, 2
}

func (f *Framer) consume(offset *int, pos int) {
	f.budget.Spend(pos - *offset)
	*offset = pos
}

func (f *Framer) fail(state parse.State) parse.State {
	f.failed = state
	return state
}
