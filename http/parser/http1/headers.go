package http1

import (
	"math"

	"github.com/indigo-web/wireparse/http/parse"
	"github.com/indigo-web/wireparse/internal/buffer"
	"github.com/indigo-web/wireparse/internal/strutil"
	"github.com/indigo-web/wireparse/kv"
)

type headersState uint8

const (
	eLineStart headersState = iota
	eHeaderKey
	eValueLWS
	eHeaderValue
	eValueCR
	eEndCR
)

// HeaderParser parses a header section, `name: value CRLF` lines terminated by an empty
// line. Lines starting with a whitespace continue the previous value (obsolete line
// folding) and are joined to it by a single space. Parsed pairs are added to the storage
// in order of appearance.
type HeaderParser struct {
	state   headersState
	failed  parse.State
	budget  parse.Budget
	pending bool
	key     buffer.Buffer
	value   buffer.Buffer
	into    *kv.Storage
}

// NewHeaderParser returns a parser filling the storage. Non-positive maxSize disables the
// limit.
func NewHeaderParser(into *kv.Storage, maxSize int) *HeaderParser {
	limit := maxSize
	if limit <= 0 {
		limit = math.MaxInt
	}

	return &HeaderParser{
		failed: parse.NeedMoreData,
		budget: parse.NewBudget(int64(maxSize)),
		key:    buffer.New(64, limit),
		value:  buffer.New(256, limit),
		into:   into,
	}
}

func (p *HeaderParser) Parse(data []byte, offset *int) parse.State {
	if p.failed != parse.NeedMoreData {
		return p.failed
	}

	if !parse.Acceptable(data, offset) {
		return p.fail(parse.Invalid)
	}

	end, clipped := p.budget.Clip(data, *offset)
	pos := *offset

	for pos < end {
		c := data[pos]

		switch p.state {
		case eLineStart:
			switch {
			case c == '\r':
				p.flush()
				p.state = eEndCR
			case c == ' ' || c == '\t':
				if !p.pending {
					return p.invalid(offset, pos)
				}

				p.value.Trunc(trailingWS(p.value.Preview()))
				p.value.AppendByte(' ')
				p.state = eValueLWS
			case strutil.IsToken(c):
				p.flush()
				p.state = eHeaderKey
				continue
			default:
				return p.invalid(offset, pos)
			}

			pos++
		case eHeaderKey:
			n := 0
			for pos+n < end && strutil.IsToken(data[pos+n]) {
				n++
			}

			if !p.key.Append(data[pos : pos+n]) {
				p.consume(offset, pos)
				return p.fail(parse.SizeExceeded)
			}

			pos += n
			if pos == end {
				continue
			}

			if data[pos] != ':' {
				return p.invalid(offset, pos)
			}

			p.state = eValueLWS
			pos++
		case eValueLWS:
			if c == ' ' || c == '\t' {
				pos++
				continue
			}

			p.state = eHeaderValue
		case eHeaderValue:
			n := 0
			for pos+n < end && isValueChar(data[pos+n]) {
				n++
			}

			if !p.value.Append(data[pos : pos+n]) {
				p.consume(offset, pos)
				return p.fail(parse.SizeExceeded)
			}

			pos += n
			if pos == end {
				continue
			}

			if data[pos] != '\r' {
				return p.invalid(offset, pos)
			}

			p.state = eValueCR
			pos++
		case eValueCR:
			if c != '\n' {
				return p.invalid(offset, pos)
			}

			p.pending = true
			p.state = eLineStart
			pos++
		case eEndCR:
			if c != '\n' {
				return p.invalid(offset, pos)
			}

			p.consume(offset, pos+1)
			p.failed = parse.Completed

			return parse.Completed
		}
	}

	p.consume(offset, pos)

	if clipped {
		return p.fail(parse.SizeExceeded)
	}

	return parse.NeedMoreData
}

// Reset prepares the parser for the next header section, stored into the passed storage.
func (p *HeaderParser) Reset(into *kv.Storage) {
	p.state = eLineStart
	p.failed = parse.NeedMoreData
	p.budget.Reset()
	p.pending = false
	p.key.Clear()
	p.value.Clear()
	p.into = into
}

// flush commits the header whose line was completed, as by now it's known no folded
// continuation follows.
func (p *HeaderParser) flush() {
	if !p.pending {
		return
	}

	value := p.value.Preview()
	value = value[:len(value)-trailingWS(value)]
	p.into.Add(string(p.key.Preview()), string(value))
	p.key.Clear()
	p.value.Clear()
	p.pending = false
}

func (p *HeaderParser) invalid(offset *int, pos int) parse.State {
	p.consume(offset, pos)
	return p.fail(parse.Invalid)
}

func (p *HeaderParser) consume(offset *int, pos int) {
	p.budget.Spend(pos - *offset)
	*offset = pos
}

func (p *HeaderParser) fail(state parse.State) parse.State {
	p.failed = state
	return state
}

func trailingWS(b []byte) (n int) {
	for n < len(b) && (b[len(b)-1-n] == ' ' || b[len(b)-1-n] == '\t') {
		n++
	}

	return n
}

// isValueChar reports whether the character may appear in a field value: visible
// characters, whitespaces and obs-text.
func isValueChar(c byte) bool {
	return c == ' ' || c == '\t' || strutil.IsVisible(c) || c >= 0x80
}
