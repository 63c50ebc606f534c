package binbuf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adamgreen/snapcrackle/binbuf"
)

func TestAllocateAdvancesCursor(t *testing.T) {
	b := binbuf.New(0x0800)
	addr, slice := b.Allocate(3)
	if addr != 0x0800 {
		t.Errorf("addr = %#x, want 0x0800", addr)
	}
	copy(slice, []byte{0xAD, 0xC0, 0x08})
	if b.Cursor() != 0x0803 {
		t.Errorf("cursor = %#x, want 0x0803", b.Cursor())
	}
	if got := b.Bytes(); len(got) != 3 || got[0] != 0xAD {
		t.Errorf("bytes = %v", got)
	}
}

func TestWriteAtPatchesForwardReference(t *testing.T) {
	b := binbuf.New(0x0800)
	addr, slice := b.Allocate(3)
	copy(slice, []byte{0x4C, 0x00, 0x00}) // JMP placeholder
	if err := b.WriteAt(addr+1, []byte{0x34, 0x12}); err != nil {
		t.Fatal(err)
	}
	got := b.Bytes()
	if got[1] != 0x34 || got[2] != 0x12 {
		t.Errorf("got %v, want patched operand 34 12", got)
	}
}

func TestWriteAtOutOfRangeFails(t *testing.T) {
	b := binbuf.New(0x0800)
	b.Allocate(3)
	if err := b.WriteAt(0x1000, []byte{1}); err == nil {
		t.Error("expected out-of-range WriteAt to fail")
	}
}

func TestSetOriginZeroFillsGap(t *testing.T) {
	b := binbuf.New(0x0800)
	b.Allocate(2)
	b.SetOrigin(0x0810)
	_, slice := b.Allocate(1)
	slice[0] = 0xEA
	if b.Len() != 0x0810-0x0800+1 {
		t.Errorf("len = %d, want %d", b.Len(), 0x0810-0x0800+1)
	}
}

func TestObjectFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sav")

	b := binbuf.New(0x2000)
	_, slice := b.Allocate(4)
	copy(slice, []byte{0xCA, 0xEA, 0xEA, 0x60})

	if err := b.WriteObjectFile(path); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw[0:4]) != "SAV\x00" {
		t.Errorf("signature = %q", raw[0:4])
	}

	readBack, err := binbuf.ReadObjectFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if readBack.Origin() != 0x2000 {
		t.Errorf("origin = %#x, want 0x2000", readBack.Origin())
	}
	if string(readBack.Bytes()) != string(slice) {
		t.Errorf("bytes = %v, want %v", readBack.Bytes(), slice)
	}
}

func TestReadObjectFileMissingFails(t *testing.T) {
	if _, err := binbuf.ReadObjectFile("/nonexistent/path.sav"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadObjectFileBadSignatureFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.sav")
	if err := os.WriteFile(path, []byte("NOPE0000"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := binbuf.ReadObjectFile(path); err == nil {
		t.Error("expected bad signature to fail")
	}
}
