package http1

import (
	"bytes"

	"github.com/indigo-web/wireparse/http/parse"
	"github.com/indigo-web/wireparse/http/status"
	"github.com/indigo-web/wireparse/internal/buffer"
)

// MinStatusLineSize is the length of the shortest status line possible, `HTTP/1.1 200 \r\n`
// minus the reason phrase. Limits below it are raised.
const MinStatusLineSize = 15

type StatusLine struct {
	Version
	Code   status.Code
	Reason string
}

type statusLineState uint8

const (
	// eStatusVersion walks the version token: before version, major, minor.
	eStatusVersion statusLineState = iota
	eStatusCode
	eReasonPhrase
	eStatusAfterCR
	eStatusDone
)

// StatusLineParser parses `HTTP/x.y SP code SP reason CRLF` incrementally. The status code
// must lie in the [100, 1000] range, the reason phrase may consist of bytes in [0x20, 0x7A]
// only.
type StatusLineParser struct {
	state   statusLineState
	failed  parse.State
	budget  parse.Budget
	version version
	code    int
	digits  int
	reason  buffer.Buffer
	line    *StatusLine
}

// NewStatusLineParser returns a parser filling the line. A status line longer than maxSize
// bytes results in parse.SizeExceeded.
func NewStatusLineParser(line *StatusLine, maxSize int) *StatusLineParser {
	maxSize = max(maxSize, MinStatusLineSize)

	return &StatusLineParser{
		failed: parse.NeedMoreData,
		budget: parse.NewBudget(int64(maxSize)),
		reason: buffer.New(64, maxSize),
		line:   line,
	}
}

func (p *StatusLineParser) Parse(data []byte, offset *int) parse.State {
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
		case eStatusVersion:
			switch p.version.step(c, ' ') {
			case stepInvalid:
				return p.invalid(offset, pos)
			case stepDone:
				p.line.Major, p.line.Minor = p.version.major, p.version.minor
				p.state = eStatusCode
			}

			pos++
		case eStatusCode:
			if c == ' ' {
				if p.digits == 0 || !status.Code(p.code).Valid() {
					return p.invalid(offset, pos)
				}

				p.line.Code = status.Code(p.code)
				p.state = eReasonPhrase
				pos++
				continue
			}

			if c < '0' || c > '9' {
				return p.invalid(offset, pos)
			}

			p.code = p.code*10 + int(c-'0')
			p.digits++
			if p.code > int(status.MaxCode) {
				return p.invalid(offset, pos)
			}

			pos++
		case eReasonPhrase:
			cr := bytes.IndexByte(data[pos:end], '\r')
			run := data[pos:end]
			if cr != -1 {
				run = data[pos : pos+cr]
			}

			for i, char := range run {
				if !isReasonChar(char) {
					return p.invalid(offset, pos+i)
				}
			}

			if !p.reason.Append(run) {
				p.consume(offset, pos)
				return p.fail(parse.SizeExceeded)
			}

			pos += len(run)
			if cr != -1 {
				p.line.Reason = string(p.reason.Finish())
				p.state = eStatusAfterCR
				pos++
			}
		case eStatusAfterCR:
			if c != '\n' {
				return p.invalid(offset, pos)
			}

			p.state = eStatusDone
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

// Reset prepares the parser for the next status line, which will be written into line.
func (p *StatusLineParser) Reset(line *StatusLine) {
	p.state = eStatusVersion
	p.failed = parse.NeedMoreData
	p.budget.Reset()
	p.version.reset()
	p.code, p.digits = 0, 0
	p.reason.Clear()
	p.line = line
}

func (p *StatusLineParser) invalid(offset *int, pos int) parse.State {
	p.consume(offset, pos)
	return p.fail(parse.Invalid)
}

func (p *StatusLineParser) consume(offset *int, pos int) {
	p.budget.Spend(pos - *offset)
	*offset = pos
}

func (p *StatusLineParser) fail(state parse.State) parse.State {
	p.failed = state
	return state
}

func isReasonChar(c byte) bool {
	return c >= 0x20 && c <= 0x7A
}
