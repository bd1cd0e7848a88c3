package parse

// Budget tracks how many bytes a parse session has consumed against a ceiling. Max <= 0
// disables the ceiling.
//
// The ceiling is checked before any byte is interpreted: Clip restricts each chunk to the
// remaining budget, so a parser that runs out of its window without completing knows it
// crossed the limit exactly at byte Max.
type Budget struct {
	Max, Total int64
}

func NewBudget(max int64) Budget {
	return Budget{Max: max}
}

// Clip returns the end of the window the parser may look at, starting from offset. clipped
// tells whether the chunk holds more bytes than the budget admits.
func (b *Budget) Clip(data []byte, offset int) (end int, clipped bool) {
	if b.Max <= 0 {
		return len(data), false
	}

	remaining := b.Max - b.Total
	if remaining < 0 {
		remaining = 0
	}

	if int64(len(data)-offset) > remaining {
		return offset + int(remaining), true
	}

	return len(data), false
}

// Spend records n more consumed bytes.
func (b *Budget) Spend(n int) {
	b.Total += int64(n)
}

// Exhausted tells whether no byte is left in the budget.
func (b *Budget) Exhausted() bool {
	return b.Max > 0 && b.Total >= b.Max
}

func (b *Budget) Reset() {
	b.Total = 0
}
