package diskimage_test

import (
	"testing"

	"github.com/adamgreen/snapcrackle/diskimage"
)

// TestAddressPrologAtEveryFrameOffset pins the raw layout: every sector frame
// begins with D5 AA 96 at track offset 528 + physical*374.
func TestAddressPrologAtEveryFrameOffset(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	data := img.Bytes()
	for track := 0; track < diskimage.TracksPerSide; track++ {
		for phys := 0; phys < diskimage.SectorsPerTrack; phys++ {
			offset := track*diskimage.NibblesPerTrack + 528 + phys*374
			if data[offset] != 0xD5 || data[offset+1] != 0xAA || data[offset+2] != 0x96 {
				t.Fatalf("track %d physical sector %d: got % #x at offset %d, want D5 AA 96",
					track, phys, data[offset:offset+3], offset)
			}
		}
	}
}

func TestImageSizeIsExactly140KBNibbleFormat(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	if len(img.Bytes()) != 232960 {
		t.Fatalf("image size = %d, want 232960", len(img.Bytes()))
	}
}

// TestInterleaveRoutesLogicalToPhysical writes logical sector 1 and verifies
// the data lands in physical sector 7's frame, per the DOS 3.3 skew table.
func TestInterleaveRoutesLogicalToPhysical(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	var sector [256]byte
	for i := range sector {
		sector[i] = byte(i)
	}
	if err := img.WriteSector(0, 1, sector); err != nil {
		t.Fatal(err)
	}

	want := diskimage.Encode6and2(sector)
	const dataStart = 528 + 7*374 + 3 + 8 + 3 + 5 + 3
	data := img.Bytes()
	for i := range want {
		if data[dataStart+i] != want[i] {
			t.Fatalf("nibble %d: got %#x, want %#x", i, data[dataStart+i], want[i])
		}
	}
}

// TestAddressFieldEncodesVolumeTrackSectorChecksum decodes the 4-and-4 pairs
// stamped for track 2, physical sector 3 and checks all four values.
func TestAddressFieldEncodesVolumeTrackSectorChecksum(t *testing.T) {
	img := diskimage.New(0xFE, diskimage.DefaultInterleave)
	base := 2*diskimage.NibblesPerTrack + 528 + 3*374 + 3
	data := img.Bytes()

	vol := diskimage.Decode4and4(data[base], data[base+1])
	trk := diskimage.Decode4and4(data[base+2], data[base+3])
	sec := diskimage.Decode4and4(data[base+4], data[base+5])
	sum := diskimage.Decode4and4(data[base+6], data[base+7])

	if vol != 0xFE || trk != 2 || sec != 3 {
		t.Errorf("address field = vol %#x trk %d sec %d, want vol 0xFE trk 2 sec 3", vol, trk, sec)
	}
	if sum != vol^trk^sec {
		t.Errorf("checksum = %#x, want %#x", sum, vol^trk^sec)
	}
}
