package http1

import (
	"github.com/indigo-web/utils/uf"
	"github.com/indigo-web/wireparse/http/method"
	"github.com/indigo-web/wireparse/http/parse"
	"github.com/indigo-web/wireparse/internal/buffer"
	"github.com/indigo-web/wireparse/internal/strutil"
)

// MinRequestLineSize is the length of the shortest request line possible, `X / HTTP/1.1\r\n`.
const MinRequestLineSize = 14

type RequestLine struct {
	Version
	// Method is Unknown for extension methods. The raw token is always kept in MethodName.
	Method     method.Method
	MethodName string
	Target     string
}

type requestLineState uint8

const (
	eMethod requestLineState = iota
	eTarget
	// eRequestVersion walks the version token, terminated by CR.
	eRequestVersion
	eRequestAfterCR
	eRequestDone
)

// RequestLineParser parses `method SP request-target SP HTTP/x.y CRLF` incrementally.
type RequestLineParser struct {
	state   requestLineState
	failed  parse.State
	budget  parse.Budget
	version version
	tokens  buffer.Buffer
	method  []byte
	line    *RequestLine
}

func NewRequestLineParser(line *RequestLine, maxSize int) *RequestLineParser {
	maxSize = max(maxSize, MinRequestLineSize)

	return &RequestLineParser{
		failed: parse.NeedMoreData,
		budget: parse.NewBudget(int64(maxSize)),
		tokens: buffer.New(128, maxSize),
		line:   line,
	}
}

func (p *RequestLineParser) Parse(data []byte, offset *int) parse.State {
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
		case eMethod:
			n := 0
			for pos+n < end && strutil.IsToken(data[pos+n]) {
				n++
			}

			if !p.tokens.Append(data[pos : pos+n]) {
				p.consume(offset, pos)
				return p.fail(parse.SizeExceeded)
			}

			pos += n
			if pos == end {
				continue
			}

			if data[pos] != ' ' || p.tokens.SegmentLength() == 0 {
				return p.invalid(offset, pos)
			}

			p.method = p.tokens.Finish()
			p.state = eTarget
			pos++
		case eTarget:
			n := 0
			for pos+n < end && strutil.IsVisible(data[pos+n]) {
				n++
			}

			if !p.tokens.Append(data[pos : pos+n]) {
				p.consume(offset, pos)
				return p.fail(parse.SizeExceeded)
			}

			pos += n
			if pos == end {
				continue
			}

			if data[pos] != ' ' || p.tokens.SegmentLength() == 0 {
				return p.invalid(offset, pos)
			}

			p.line.MethodName = string(p.method)
			p.line.Method = method.Parse(uf.B2S(p.method))
			p.line.Target = string(p.tokens.Finish())
			p.state = eRequestVersion
			pos++
		case eRequestVersion:
			switch p.version.step(data[pos], '\r') {
			case stepInvalid:
				return p.invalid(offset, pos)
			case stepDone:
				p.line.Major, p.line.Minor = p.version.major, p.version.minor
				p.state = eRequestAfterCR
			}

			pos++
		case eRequestAfterCR:
			if data[pos] != '\n' {
				return p.invalid(offset, pos)
			}

			p.state = eRequestDone
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

// Reset prepares the parser for the next request line, which will be written into line.
func (p *RequestLineParser) Reset(line *RequestLine) {
	p.state = eMethod
	p.failed = parse.NeedMoreData
	p.budget.Reset()
	p.version.reset()
	p.tokens.Clear()
	p.method = nil
	p.line = line
}

func (p *RequestLineParser) invalid(offset *int, pos int) parse.State {
	p.consume(offset, pos)
	return p.fail(parse.Invalid)
}

func (p *RequestLineParser) consume(offset *int, pos int) {
	p.budget.Spend(pos - *offset)
	*offset = pos
}

func (p *RequestLineParser) fail(state parse.State) parse.State {
	p.failed = state
	return state
}
