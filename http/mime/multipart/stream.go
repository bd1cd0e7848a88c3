package multipart

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/indigo-web/wireparse/http/mime"
	"github.com/indigo-web/wireparse/kv"
)

// Stream is a sink for a single body part content.
type Stream interface {
	io.Writer
	// Release is called exactly once, when nothing is going to be written anymore. In-memory
	// streams are rewound, file-backed ones closed.
	Release() error
	// Open returns a reader over the written content. It's valid after Release only.
	Open() (io.ReadCloser, error)
}

// Remover is implemented by streams holding resources outliving the Release, e.g. files.
type Remover interface {
	Remove() error
}

// Aborter is implemented by streams able to drop the content of an abandoned body part.
// Abort is called instead of Release when the part is cut off before its end, and after
// Release when a complete part is dropped before being committed. Streams not implementing
// it are released in both cases.
type Aborter interface {
	Abort() error
}

// Committer is implemented by streams publishing the content once the part is complete,
// e.g. uploading it. Commit may block, so it's never called from Parse: Reader.Feed
// commits every part before yielding it, and Part.Open commits lazily.
type Committer interface {
	Commit() error
}

// Provider supplies a stream for each body part given its headers.
type Provider interface {
	Stream(headers *kv.Storage) (Stream, error)
}

type ProviderFunc func(headers *kv.Storage) (Stream, error)

func (p ProviderFunc) Stream(headers *kv.Storage) (Stream, error) {
	return p(headers)
}

var errReleased = errors.New("multipart: stream is already released")

// MemoryStream keeps the content in memory.
type MemoryStream struct {
	data     []byte
	maxSize  int
	released bool
}

func (m *MemoryStream) Write(b []byte) (int, error) {
	if m.released {
		return 0, errReleased
	}

	if m.maxSize > 0 && len(m.data)+len(b) > m.maxSize {
		return 0, bytes.ErrTooLarge
	}

	m.data = append(m.data, b...)
	return len(b), nil
}

func (m *MemoryStream) Release() error {
	m.released = true
	return nil
}

func (m *MemoryStream) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

// Bytes returns the content written so far.
func (m *MemoryStream) Bytes() []byte {
	return m.data
}

// MemoryProvider keeps every body part in memory. MaxSize limits a single part, 0
// disables the limit.
type MemoryProvider struct {
	MaxSize int
	// Prealloc is the initial capacity of each stream.
	Prealloc int
}

func (m *MemoryProvider) Stream(*kv.Storage) (Stream, error) {
	return &MemoryStream{
		data:    make([]byte, 0, m.Prealloc),
		maxSize: m.MaxSize,
	}, nil
}

// FileStream writes the content into a file, which is kept after release until removed.
type FileStream struct {
	file     *os.File
	released bool
}

func (f *FileStream) Write(b []byte) (int, error) {
	if f.released {
		return 0, errReleased
	}

	return f.file.Write(b)
}

func (f *FileStream) Release() error {
	if f.released {
		return errReleased
	}

	f.released = true
	return f.file.Close()
}

func (f *FileStream) Open() (io.ReadCloser, error) {
	return os.Open(f.file.Name())
}

func (f *FileStream) Name() string {
	return f.file.Name()
}

func (f *FileStream) Remove() error {
	return os.Remove(f.file.Name())
}

// Abort closes the file, if still open, and removes it.
func (f *FileStream) Abort() error {
	var err error
	if !f.released {
		f.released = true
		err = f.file.Close()
	}

	return errors.Join(err, os.Remove(f.file.Name()))
}

// FileProvider stores every body part in a temporary file within Dir, os.TempDir() if
// empty.
type FileProvider struct {
	Dir string
}

func (f FileProvider) Stream(*kv.Storage) (Stream, error) {
	file, err := os.CreateTemp(f.Dir, "part-*")
	if err != nil {
		return nil, err
	}

	return &FileStream{file: file}, nil
}

// FormDataProvider routes file uploads, i.e. parts whose Content-Disposition carries a
// filename, to Files and everything else to Fields.
type FormDataProvider struct {
	Files, Fields Provider
}

func (f FormDataProvider) Stream(headers *kv.Storage) (Stream, error) {
	disposition, err := mime.Disposition(headers.Value("Content-Disposition"))
	if err != nil || !disposition.IsFile() {
		return f.Fields.Stream(headers)
	}

	return f.Files.Stream(headers)
}
