package kv

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage is an ordered multimap of (string, string) pairs with case-insensitive keys.
// Insertion order and duplicates are preserved. Lookups are linear, which beats a map on
// the amount of entries a header section usually carries.
type Storage struct {
	pairs []Pair
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance with room for n pairs.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// Add appends a new pair, even if the key is already presented.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// Get returns the first value of the key and whether it was found at all.
func (s *Storage) Get(key string) (value string, found bool) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Value returns the first value of the key or an empty string.
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

// Values returns an iterator over every value of the key, in insertion order.
func (s *Storage) Values(key string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, pair := range s.pairs {
			if strcomp.EqualFold(pair.Key, key) {
				if !yield(pair.Value) {
					break
				}
			}
		}
	}
}

// Keys returns an iterator over unique keys, each in the spelling it was first met.
func (s *Storage) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i, pair := range s.pairs {
			if s.seenBefore(i) {
				continue
			}

			if !yield(pair.Key) {
				break
			}
		}
	}
}

// Pairs returns an iterator over all the pairs.
func (s *Storage) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				break
			}
		}
	}
}

func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return s.Len() == 0
}

// Clone returns a deep copy, detached from the original.
func (s *Storage) Clone() *Storage {
	pairs := make([]Pair, len(s.pairs))
	copy(pairs, s.pairs)

	return &Storage{pairs: pairs}
}

// Expose returns the underlying pairs.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

// Clear drops all the entries, keeping the allocated memory.
func (s *Storage) Clear() *Storage {
	s.pairs = s.pairs[:0]
	return s
}

func (s *Storage) seenBefore(i int) bool {
	for _, pair := range s.pairs[:i] {
		if strcomp.EqualFold(pair.Key, s.pairs[i].Key) {
			return true
		}
	}

	return false
}
