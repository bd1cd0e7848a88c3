package multipart

import (
	"io"
	"os"
	"testing"

	"github.com/indigo-web/wireparse/kv"
	"github.com/stretchr/testify/require"
)

func TestMemoryStream(t *testing.T) {
	stream, err := (&MemoryProvider{Prealloc: 16}).Stream(kv.New())
	require.NoError(t, err)

	_, err = stream.Write([]byte("hello, "))
	require.NoError(t, err)
	_, err = stream.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, stream.Release())

	_, err = stream.Write([]byte("!"))
	require.Error(t, err)

	for range 2 {
		r, err := stream.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, "hello, world", string(data))
	}
}

func TestFileStream(t *testing.T) {
	stream, err := FileProvider{Dir: t.TempDir()}.Stream(kv.New())
	require.NoError(t, err)

	_, err = stream.Write([]byte("on disk"))
	require.NoError(t, err)
	require.NoError(t, stream.Release())
	require.Error(t, stream.Release())

	r, err := stream.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "on disk", string(data))

	file := stream.(*FileStream)
	require.NoError(t, file.Remove())
	_, err = os.Stat(file.Name())
	require.True(t, os.IsNotExist(err))
}

func TestFileStreamAbort(t *testing.T) {
	dir := t.TempDir()
	for _, release := range []bool{false, true} {
		stream, err := FileProvider{Dir: dir}.Stream(kv.New())
		require.NoError(t, err)
		_, err = stream.Write([]byte("half of it"))
		require.NoError(t, err)
		if release {
			require.NoError(t, stream.Release())
		}

		require.NoError(t, stream.(*FileStream).Abort())
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Empty(t, entries)
	}
}

func TestFileProviderBadDir(t *testing.T) {
	_, err := FileProvider{Dir: "/nonexistent/dir/for/parts"}.Stream(kv.New())
	require.Error(t, err)
}

func TestFormDataProvider(t *testing.T) {
	var files, fields int
	provider := FormDataProvider{
		Files: ProviderFunc(func(*kv.Storage) (Stream, error) {
			files++
			return new(MemoryStream), nil
		}),
		Fields: ProviderFunc(func(*kv.Storage) (Stream, error) {
			fields++
			return new(MemoryStream), nil
		}),
	}

	for _, disposition := range []string{
		`form-data; name="a"`,
		`form-data; name="b"; filename="b.txt"`,
		"",
		`form-data; name="c"; filename*=UTF-8''c.txt`,
	} {
		_, err := provider.Stream(kv.New().Add("Content-Disposition", disposition))
		require.NoError(t, err)
	}

	require.Equal(t, 2, files)
	require.Equal(t, 2, fields)
}
