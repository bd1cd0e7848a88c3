package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pushSegment(t *testing.T, buff Buffer, text string) Buffer {
	ok := buff.Append([]byte(text))
	require.True(t, ok)
	segment := buff.Finish()
	require.Equal(t, text, string(segment))
	return buff
}

func BenchmarkBuffer(b *testing.B) {
	buff := New(1024, 4096)
	smallString := []byte(strings.Repeat("a", 1023))

	b.ReportAllocs()
	b.SetBytes(int64(len(smallString)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = buff.Append(smallString)
		buff.Clear()
	}
}

func TestBuffer(t *testing.T) {
	t.Run("no overflow", func(t *testing.T) {
		buff := New(10, 20)
		buff = pushSegment(t, buff, "Hello")
		buff = pushSegment(t, buff, "Here")
	})

	t.Run("grows past initial size", func(t *testing.T) {
		buff := New(10, 20)
		buff = pushSegment(t, buff, "Hello, ")
		buff = pushSegment(t, buff, "World!")
	})

	t.Run("overflow over the limit", func(t *testing.T) {
		buff := New(10, 20)
		buff = pushSegment(t, buff, "Hello, ")
		buff = pushSegment(t, buff, "World!")
		buff = pushSegment(t, buff, "Lorem ")
		require.False(t, buff.Append([]byte("overflow")))
		require.True(t, buff.AppendByte('!'))
		require.False(t, buff.AppendByte('!'))
	})

	t.Run("segment length", func(t *testing.T) {
		buff := New(10, 20)
		require.True(t, buff.Append([]byte("Hello, ")))
		require.True(t, buff.Append([]byte("World!")))
		require.Equal(t, 13, buff.SegmentLength())
		require.Equal(t, "Hello, World!", string(buff.Preview()))
	})

	t.Run("clear keeps limit", func(t *testing.T) {
		buff := New(4, 4)
		require.True(t, buff.Append([]byte("abcd")))
		buff.Clear()
		require.Zero(t, buff.SegmentLength())
		require.True(t, buff.Append([]byte("efgh")))
		require.Equal(t, "efgh", string(buff.Finish()))
	})

	t.Run("truncate", func(t *testing.T) {
		buff := New(10, 20)
		require.True(t, buff.Append([]byte("Hello, world!")))
		segment := buff.Finish()
		require.True(t, buff.Append([]byte("Hi?")))
		buff.Trunc(5)
		require.Equal(t, "Hello, world!", string(segment))
		require.Empty(t, buff.Finish())
	})
}
