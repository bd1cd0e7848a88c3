package form

import (
	"bytes"
	"math"

	"github.com/indigo-web/wireparse/http/parse"
	"github.com/indigo-web/wireparse/internal/buffer"
	"github.com/indigo-web/wireparse/internal/urlencoded"
)

// nullToken is the literal value standing for an absent one.
const nullToken = "null"

type parserState uint8

const (
	eName parserState = iota
	eValue
)

// Parser is an incremental parser of application/x-www-form-urlencoded bodies. Pairs are
// accumulated in the order they appear in the stream. As the body has no terminator on
// its own, Finish must be called once the stream is over.
type Parser struct {
	state      parserState
	failed     parse.State
	budget     parse.Budget
	name       buffer.Buffer
	value      buffer.Buffer
	decodeBuff []byte
	form       Form
}

// NewParser returns a parser that rejects bodies longer than maxSize bytes. Non-positive
// maxSize disables the limit.
func NewParser(maxSize int64, prealloc int) *Parser {
	limit := math.MaxInt
	if maxSize > 0 && maxSize < math.MaxInt {
		limit = int(maxSize)
	}

	return &Parser{
		state:  eName,
		failed: parse.NeedMoreData,
		budget: parse.NewBudget(maxSize),
		name:   buffer.New(64, limit),
		value:  buffer.New(256, limit),
		form:   make(Form, 0, prealloc),
	}
}

// Parse consumes the chunk starting at the offset. It never reports Completed, as only
// Finish knows the stream is over.
func (p *Parser) Parse(data []byte, offset *int) parse.State {
	if p.failed != parse.NeedMoreData {
		return p.failed
	}

	if !parse.Acceptable(data, offset) {
		return p.fail(parse.Invalid)
	}

	end, clipped := p.budget.Clip(data, *offset)
	pos := *offset

	for pos < end {
		switch p.state {
		case eName:
			sep := bytes.IndexAny(data[pos:end], "=&")
			if sep == -1 {
				if !p.name.Append(data[pos:end]) {
					return p.fail(parse.SizeExceeded)
				}

				pos = end
				continue
			}

			if !p.name.Append(data[pos : pos+sep]) {
				return p.fail(parse.SizeExceeded)
			}

			separator := data[pos+sep]
			pos += sep + 1

			if separator == '=' {
				if p.name.SegmentLength() == 0 {
					p.consume(offset, pos)
					return p.fail(parse.Invalid)
				}

				p.state = eValue
				continue
			}

			if !p.flushBare() {
				p.consume(offset, pos)
				return p.fail(parse.Invalid)
			}
		case eValue:
			amp := bytes.IndexByte(data[pos:end], '&')
			if amp == -1 {
				if !p.value.Append(data[pos:end]) {
					return p.fail(parse.SizeExceeded)
				}

				pos = end
				continue
			}

			if !p.value.Append(data[pos : pos+amp]) {
				return p.fail(parse.SizeExceeded)
			}

			pos += amp + 1

			if !p.flushPair() {
				p.consume(offset, pos)
				return p.fail(parse.Invalid)
			}

			p.state = eName
		}
	}

	p.consume(offset, pos)

	if clipped {
		return p.fail(parse.SizeExceeded)
	}

	return parse.NeedMoreData
}

// Finish flushes a pending pair, if any. After Completed is reported, the collected form
// is final.
func (p *Parser) Finish() parse.State {
	if p.failed != parse.NeedMoreData {
		return p.failed
	}

	var ok bool
	switch p.state {
	case eName:
		ok = p.flushBare()
	case eValue:
		ok = p.flushPair()
	}

	if !ok {
		return p.fail(parse.Invalid)
	}

	p.state = eName
	p.failed = parse.Completed

	return parse.Completed
}

// Form returns pairs collected so far.
func (p *Parser) Form() Form {
	return p.form
}

// Reset prepares the parser for a new body. The collected form is dropped, but the
// allocated memory is reused.
func (p *Parser) Reset() {
	p.state = eName
	p.failed = parse.NeedMoreData
	p.budget.Reset()
	p.name.Clear()
	p.value.Clear()
	p.form = p.form[:0]
}

func (p *Parser) flushBare() bool {
	token := p.name.Finish()
	defer p.name.Clear()

	if len(token) == 0 {
		return true
	}

	decoded, ok := p.decode(token)
	if !ok {
		return false
	}

	p.form = append(p.form, Bare(decoded))
	return true
}

func (p *Parser) flushPair() bool {
	rawName, rawValue := p.name.Finish(), p.value.Finish()
	defer func() {
		p.name.Clear()
		p.value.Clear()
	}()

	name, ok := p.decode(rawName)
	if !ok {
		return false
	}

	if string(rawValue) == nullToken {
		p.form = append(p.form, Null(name))
		return true
	}

	value, ok := p.decode(rawValue)
	if !ok {
		return false
	}

	p.form = append(p.form, Field(name, value))
	return true
}

func (p *Parser) decode(raw []byte) (string, bool) {
	decoded, buff, err := urlencoded.Decode(raw, p.decodeBuff[:0])
	p.decodeBuff = buff
	if err != nil {
		return "", false
	}

	return string(decoded), true
}

func (p *Parser) consume(offset *int, pos int) {
	p.budget.Spend(pos - *offset)
	*offset = pos
}

func (p *Parser) fail(state parse.State) parse.State {
	p.failed = state
	return state
}

// Decode parses a complete body at once.
func Decode(body []byte, maxSize int64) (Form, error) {
	p := NewParser(maxSize, 8)

	if len(body) > 0 {
		offset := 0
		if state := p.Parse(body, &offset); state.Terminal() {
			return nil, parse.Err(state)
		}
	}

	if state := p.Finish(); state != parse.Completed {
		return nil, parse.Err(state)
	}

	return p.Form(), nil
}
