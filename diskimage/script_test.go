package diskimage_test

import (
	"strings"
	"testing"

	"github.com/adamgreen/snapcrackle/diskimage"
)

func TestParseScriptSkipsCommentsAndBlanks(t *testing.T) {
	script := "# a comment\n\nRWTS16,0,256,0,0\n  # trailing comment\nRWTS16,256,256,0,1\n"
	inserts, err := diskimage.ParseScript(strings.NewReader(script))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if len(inserts) != 2 {
		t.Fatalf("got %d inserts, want 2", len(inserts))
	}
	if inserts[0].Track != 0 || inserts[0].Sector != 0 {
		t.Errorf("first insert: got track=%d sector=%d", inserts[0].Track, inserts[0].Sector)
	}
	if inserts[1].SourceOffset != 256 {
		t.Errorf("second insert: got source offset %d, want 256", inserts[1].SourceOffset)
	}
}

func TestApplyRWTS16ZeroSectorProducesAllSameNibble(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	object := make([]byte, 256)
	err := diskimage.ApplyRWTS16(img, object, diskimage.Insert{
		Encoding: diskimage.EncodingRWTS16, SourceOffset: 0, Length: 256, Track: 0, Sector: 0,
	})
	if err != nil {
		t.Fatalf("ApplyRWTS16: %v", err)
	}

	// Per spec.md scenario 5: the data field's 343 nibbles start at offset
	// 528 (gap1) + 3 (addr prolog) + 8 (addr field) + 3 (addr epilog) +
	// 5 (gap2) + 3 (data prolog) = 550 within track 0.
	const dataStart = 528 + 3 + 8 + 3 + 5 + 3
	data := img.Bytes()
	for i := 0; i < 343; i++ {
		if data[dataStart+i] != 0x96 {
			t.Fatalf("nibble %d at offset %d: got %#x, want 0x96", i, dataStart+i, data[dataStart+i])
		}
	}
}

func TestApplyRWTS16TrackOutOfRangeFails(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	object := make([]byte, 256)
	err := diskimage.ApplyRWTS16(img, object, diskimage.Insert{
		Encoding: diskimage.EncodingRWTS16, SourceOffset: 0, Length: 256, Track: 35, Sector: 0,
	})
	if err == nil {
		t.Fatal("expected an error for track 35, got nil")
	}
}

func TestApplyRWTS16SectorOutOfRangeFails(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	object := make([]byte, 256)
	err := diskimage.ApplyRWTS16(img, object, diskimage.Insert{
		Encoding: diskimage.EncodingRWTS16, SourceOffset: 0, Length: 256, Track: 0, Sector: 16,
	})
	if err == nil {
		t.Fatal("expected an error for sector 16, got nil")
	}
}

func TestApplyRWTS16LastLegalPositionSucceeds(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	object := make([]byte, 256)
	err := diskimage.ApplyRWTS16(img, object, diskimage.Insert{
		Encoding: diskimage.EncodingRWTS16, SourceOffset: 0, Length: 256, Track: 34, Sector: 15,
	})
	if err != nil {
		t.Fatalf("expected track 34 sector 15 to succeed, got %v", err)
	}
}

func TestApplyRWTS16CrossesTrackBoundary(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	object := make([]byte, 512)
	for i := range object {
		object[i] = byte(i)
	}
	err := diskimage.ApplyRWTS16(img, object, diskimage.Insert{
		Encoding: diskimage.EncodingRWTS16, SourceOffset: 0, Length: 512, Track: 0, Sector: 15,
	})
	if err != nil {
		t.Fatalf("ApplyRWTS16: %v", err)
	}
	// sector 15 of track 0 and sector 0 of track 1 are now written; sectors
	// 0-14 of track 0 and 1-15 of track 1 remain at their pristine sync fill.
}

func TestApplyRWTS16RunningOffEndOfDiskFails(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	object := make([]byte, 512)
	err := diskimage.ApplyRWTS16(img, object, diskimage.Insert{
		Encoding: diskimage.EncodingRWTS16, SourceOffset: 0, Length: 512, Track: 34, Sector: 15,
	})
	if err == nil {
		t.Fatal("expected placement running off the end of the disk to fail")
	}
}

func TestApplyRWTS16RejectsNonMultipleOf256(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	object := make([]byte, 300)
	err := diskimage.ApplyRWTS16(img, object, diskimage.Insert{
		Encoding: diskimage.EncodingRWTS16, SourceOffset: 0, Length: 300, Track: 0, Sector: 0,
	})
	if err == nil {
		t.Fatal("expected a non-multiple-of-256 length to fail")
	}
}

func TestRunRejectsRW18Records(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	object := make([]byte, 256)
	err := diskimage.Run(img, object, strings.NewReader("RW18,0,256,0,0,0\n"))
	if err == nil {
		t.Fatal("expected Run to reject an RW18 record")
	}
}
