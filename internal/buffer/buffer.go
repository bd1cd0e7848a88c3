package buffer

// Buffer accumulates token bytes that arrive split across several reads. It hosts
// consecutive, non-interrelated segments in a single slice and refuses to grow past
// the limit it was created with.
type Buffer struct {
	memory  []byte
	begin   int
	maxSize int
}

func New(initialSize, maxSize int) Buffer {
	if initialSize > maxSize {
		initialSize = maxSize
	}

	return Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data unless the total amount of stored bytes would exceed the limit,
// in which case nothing is written and false is returned.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if len(b.memory)+len(elements) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, elements...)
	return true
}

// AppendByte writes a single byte, checking whether it won't exceed the limit.
func (b *Buffer) AppendByte(c byte) (ok bool) {
	if len(b.memory)+1 > b.maxSize {
		return false
	}

	b.memory = append(b.memory, c)
	return true
}

// SegmentLength returns the number of bytes in the current segment.
func (b *Buffer) SegmentLength() int {
	return len(b.memory) - b.begin
}

// Trunc cuts the last n bytes of the current segment. Previous segments stay intact.
func (b *Buffer) Trunc(n int) {
	if seglen := b.SegmentLength(); n > seglen {
		n = seglen
	}

	b.memory = b.memory[:len(b.memory)-n]
}

// Preview returns the current segment without completing it.
func (b *Buffer) Preview() []byte {
	return b.memory[b.begin:]
}

// Finish completes the current segment and returns it. The returned slice stays valid
// until Clear is called.
func (b *Buffer) Finish() []byte {
	segment := b.memory[b.begin:]
	b.begin = len(b.memory)

	return segment
}

// Clear resets the buffer, keeping the allocated memory for later reuse.
func (b *Buffer) Clear() {
	b.begin = 0
	b.memory = b.memory[:0]
}
