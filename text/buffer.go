package text

// Buffer is a growable mutable line buffer. The assembler runs each source
// file (main or PUT/USE'd) through one to normalize CR/CRLF/LF line endings
// before splitting it into lines.
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty Buffer with room for size bytes before its
// first reallocation.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, 0, size)}
}

// Write appends p to the buffer and always succeeds, satisfying io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) {
	b.data = append(b.data, s...)
}

// WriteByte appends a single byte to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	b.data = append(b.data, c)
	return nil
}

// Bytes returns the buffer's current contents. The slice is only valid until
// the next mutating call.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// String returns a copy of the buffer's contents.
func (b *Buffer) String() string {
	return string(b.data)
}

// Len returns the number of bytes currently in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Reset empties the buffer without releasing its backing array.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}
