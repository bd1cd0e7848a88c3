// Package parse holds the vocabulary every incremental parser of the module speaks.
//
// A parser is fed with consecutive chunks of a single logical stream. Each call gets the
// chunk and a cursor pointing at the first byte not yet consumed. The parser moves the
// cursor forward over the bytes it has interpreted and reports one of the four states.
// The cursor never moves backwards, neither within a call nor across calls, and no byte
// is ever consumed twice.
package parse

import "github.com/indigo-web/wireparse/http/status"

type State uint8

const (
	// NeedMoreData means the chunk was consumed up to the cursor and the parser waits for
	// the next one. It isn't an error.
	NeedMoreData State = iota
	// Completed means the parsed entity is complete. Bytes after the cursor, if any, belong
	// to whatever follows it.
	Completed
	// Invalid is reported on any grammar violation. It is terminal.
	Invalid
	// SizeExceeded is reported when the configured limit is crossed. It is terminal.
	SizeExceeded
)

func (s State) String() string {
	switch s {
	case NeedMoreData:
		return "NeedMoreData"
	case Completed:
		return "Completed"
	case Invalid:
		return "Invalid"
	case SizeExceeded:
		return "SizeExceeded"
	}

	return "State(?)"
}

// Terminal tells whether the parser must not be called anymore after reporting the state.
func (s State) Terminal() bool {
	return s == Invalid || s == SizeExceeded
}

// Parser is implemented by every incremental parser.
type Parser interface {
	Parse(data []byte, offset *int) State
}

// Finisher is implemented by parsers whose input has no terminator of its own, so the end
// of the stream must be signalled explicitly.
type Finisher interface {
	Finish() State
}

// Err converts terminal states into errors suitable for a protocol-level response. Non-terminal
// states result in nil.
func Err(s State) error {
	switch s {
	case Invalid:
		return status.ErrBadRequest
	case SizeExceeded:
		return status.ErrRequestEntityTooLarge
	}

	return nil
}

// Acceptable checks the cursor preconditions: the chunk must not be empty and the cursor
// must lie within it.
func Acceptable(data []byte, offset *int) bool {
	return len(data) > 0 && offset != nil && *offset >= 0 && *offset <= len(data)
}
