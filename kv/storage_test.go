package kv

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	getHeaders := func() *Storage {
		return New().
			Add("Foo", "bar").
			Add("Hello", "World").
			Add("Lorem", "ipsum").
			Add("hello", "Pavlo")
	}

	t.Run("get", func(t *testing.T) {
		kv := getHeaders()
		value, found := kv.Get("HELLO")
		require.True(t, found)
		require.Equal(t, "World", value)

		_, found = kv.Get("missing")
		require.False(t, found)
		require.Equal(t, "default", kv.ValueOr("missing", "default"))
		require.Equal(t, "bar", kv.Value("foo"))
		require.True(t, kv.Has("lorem"))
	})

	t.Run("values", func(t *testing.T) {
		kv := getHeaders()
		require.Equal(t, []string{"World", "Pavlo"}, slices.Collect(kv.Values("hello")))
		require.Empty(t, slices.Collect(kv.Values("missing")))
	})

	t.Run("keys", func(t *testing.T) {
		require.Equal(t, []string{"Foo", "Hello", "Lorem"}, slices.Collect(getHeaders().Keys()))
	})

	t.Run("pairs keep order", func(t *testing.T) {
		var keys []string
		for key := range getHeaders().Pairs() {
			keys = append(keys, key)
		}

		require.Equal(t, []string{"Foo", "Hello", "Lorem", "hello"}, keys)
	})

	t.Run("clone is detached", func(t *testing.T) {
		kv := getHeaders()
		clone := kv.Clone()
		kv.Clear()
		require.True(t, kv.Empty())
		require.Equal(t, 4, clone.Len())
		require.Equal(t, "bar", clone.Value("Foo"))
	})
}
