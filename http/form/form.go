package form

import "iter"

// Pair is a single field of an urlencoded form. Either side may be absent: a value
// spelled as the literal null has no value, while a bare token with no '=' sign has no
// name and carries the token as its value.
type Pair struct {
	Name     string
	Value    string
	HasName  bool
	HasValue bool
}

// Field returns an ordinary name=value pair.
func Field(name, value string) Pair {
	return Pair{Name: name, Value: value, HasName: true, HasValue: true}
}

// Bare returns a pair made of a token standing alone.
func Bare(token string) Pair {
	return Pair{Value: token, HasValue: true}
}

// Null returns a pair whose value was sent as null.
func Null(name string) Pair {
	return Pair{Name: name, HasName: true}
}

// Form is an ordered sequence of pairs. Duplicates are preserved.
type Form []Pair

// Name returns the first pair matching the name.
func (f Form) Name(name string) (Pair, bool) {
	for pair := range f.Names(name) {
		return pair, true
	}

	return Pair{}, false
}

// Names returns an iterator over all pairs matching the name.
func (f Form) Names(name string) iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for _, pair := range f {
			if pair.HasName && pair.Name == name {
				if !yield(pair) {
					break
				}
			}
		}
	}
}

// Value returns the value of the first pair matching the name. Absent values are
// reported as not found.
func (f Form) Value(name string) (string, bool) {
	pair, found := f.Name(name)
	if !found || !pair.HasValue {
		return "", false
	}

	return pair.Value, true
}

// Bare returns an iterator over tokens that were sent without a name.
func (f Form) Bare() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, pair := range f {
			if !pair.HasName && pair.HasValue {
				if !yield(pair.Value) {
					break
				}
			}
		}
	}
}
