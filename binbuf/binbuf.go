// Package binbuf implements the growable byte arena that backs assembled
// output, and the ".SAV" object-file format it is read from and written to.
package binbuf

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/adamgreen/snapcrackle/errs"
)

// savSignature is the literal 4-byte ".SAV" object file signature.
var savSignature = [4]byte{'S', 'A', 'V', 0}

// Buffer is a contiguous byte vector with a load address. Allocate grows it
// from the write cursor; WriteAt patches bytes already emitted, which is how
// forward-reference fixup overwrites a placeholder once the referenced
// symbol becomes defined.
type Buffer struct {
	origin uint16
	data   []byte
	cursor int
}

// New returns an empty Buffer with its load address set to origin.
func New(origin uint16) *Buffer {
	return &Buffer{origin: origin}
}

// SetOrigin sets the load address of subsequent allocations. If the new
// origin is ahead of the buffer's current extent, the gap between them is
// zero-filled so the cursor invariant (base <= cursor <= base+len) holds.
func (b *Buffer) SetOrigin(addr uint16) {
	if len(b.data) == 0 {
		b.origin = addr
		return
	}
	currentEnd := int(b.origin) + len(b.data)
	if int(addr) > currentEnd {
		gap := int(addr) - currentEnd
		b.data = append(b.data, make([]byte, gap)...)
	}
	b.cursor = int(addr) - int(b.origin)
}

// Origin returns the buffer's base load address.
func (b *Buffer) Origin() uint16 {
	return b.origin
}

// Cursor returns the address the next Allocate will write at.
func (b *Buffer) Cursor() uint16 {
	return b.origin + uint16(b.cursor)
}

// Allocate reserves n bytes at the cursor, growing the backing array if
// needed, and returns the address those bytes were reserved at. The caller
// fills the returned slice (aliasing the buffer's storage) and then advances
// past it automatically.
func (b *Buffer) Allocate(n int) (addr uint16, slice []byte) {
	addr = b.Cursor()
	needed := b.cursor + n
	if needed > len(b.data) {
		b.data = append(b.data, make([]byte, needed-len(b.data))...)
	}
	slice = b.data[b.cursor:needed]
	b.cursor = needed
	return addr, slice
}

// WriteAt patches bytes previously emitted, addressed by load address rather
// than buffer offset. It is an error (KindBufferOverrun) to patch outside the
// buffer's current extent.
func (b *Buffer) WriteAt(addr uint16, bytes []byte) error {
	offset := int(addr) - int(b.origin)
	if offset < 0 || offset+len(bytes) > len(b.data) {
		return errs.New(errs.Position{}, errs.KindBufferOverrun, "WriteAt(%#x, %d bytes) exceeds buffer extent [%#x,%#x)", addr, len(bytes), b.origin, int(b.origin)+len(b.data))
	}
	copy(b.data[offset:], bytes)
	return nil
}

// Bytes returns the buffer's contents from its origin through the cursor.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.cursor]
}

// Len reports how many bytes have been emitted.
func (b *Buffer) Len() int {
	return b.cursor
}

// WriteObjectFile writes the buffer to path as a .SAV object file: the
// literal signature "SAV\0", a little-endian load address, a little-endian
// length, then the raw bytes.
func (b *Buffer) WriteObjectFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.New(errs.Position{}, errs.KindFileIO, "creating %s: %v", path, err)
	}
	defer f.Close()

	var header [8]byte
	copy(header[0:4], savSignature[:])
	binary.LittleEndian.PutUint16(header[4:6], b.origin)
	binary.LittleEndian.PutUint16(header[6:8], uint16(b.cursor))

	if _, err := f.Write(header[:]); err != nil {
		return errs.New(errs.Position{}, errs.KindFileIO, "writing %s header: %v", path, err)
	}
	if _, err := f.Write(b.Bytes()); err != nil {
		return errs.New(errs.Position{}, errs.KindFileIO, "writing %s body: %v", path, err)
	}
	return nil
}

// ReadObjectFile reads a .SAV file, validating its signature, and returns a
// Buffer whose origin and contents match what WriteObjectFile wrote.
func ReadObjectFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.Position{}, errs.KindFileNotFound, "%s: %v", path, err)
		}
		return nil, errs.New(errs.Position{}, errs.KindFileIO, "reading %s: %v", path, err)
	}
	if len(data) < 8 {
		return nil, errs.New(errs.Position{}, errs.KindFileIO, "%s: truncated header", path)
	}
	var sig [4]byte
	copy(sig[:], data[0:4])
	if sig != savSignature {
		return nil, errs.New(errs.Position{}, errs.KindFileIO, "%s: bad signature %v", path, sig)
	}
	origin := binary.LittleEndian.Uint16(data[4:6])
	length := binary.LittleEndian.Uint16(data[6:8])
	if len(data) < 8+int(length) {
		return nil, errs.New(errs.Position{}, errs.KindFileIO, "%s: truncated body, want %d bytes", path, length)
	}

	buf := New(origin)
	buf.data = make([]byte, length)
	copy(buf.data, data[8:8+int(length)])
	buf.cursor = int(length)
	return buf, nil
}

// String is a debugging aid describing the buffer's current extent.
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer{origin=%#x, len=%d}", b.origin, b.cursor)
}
