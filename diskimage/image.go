package diskimage

import (
	"os"

	"github.com/adamgreen/snapcrackle/errs"
)

// Image is a fully laid-out Apple II 5.25" nibble disk image: one flat byte
// stream of ImageSize bytes, tracks concatenated in order, each track holding
// its sectors' encoded nibble frames at fixed offsets.
type Image struct {
	data       [ImageSize]byte
	volume     byte
	written    [TracksPerSide][SectorsPerTrack]bool
	interleave [SectorsPerTrack]int
}

// New creates an image with every track pre-filled with 0xFF sync bytes and
// every sector's address field already stamped in, matching how a freshly
// formatted DOS 3.3 disk looks before any data is written.
func New(volume byte, interleave [SectorsPerTrack]int) *Image {
	img := &Image{volume: volume, interleave: interleave}
	for i := range img.data {
		img.data[i] = 0xFF
	}
	for track := 0; track < TracksPerSide; track++ {
		for logical := 0; logical < SectorsPerTrack; logical++ {
			physical := interleave[logical]
			img.stampAddressField(track, physical)
		}
	}
	return img
}

func (img *Image) trackOffset(track int) int {
	return track * NibblesPerTrack
}

// sectorFrameOffset returns the byte offset of physical sector's frame
// within its track, including the one-time gap-1 sync that precedes sector
// 0 on every track.
func sectorFrameOffset(physicalSector int) int {
	return gap1SyncBytes + physicalSector*sectorFrameLen
}

func (img *Image) stampAddressField(track, physicalSector int) {
	base := img.trackOffset(track) + sectorFrameOffset(physicalSector)
	copy(img.data[base:], addressProlog[:])
	base += addressPrologLen

	vOdd, vEven := Encode4and4(img.volume)
	tOdd, tEven := Encode4and4(byte(track))
	sOdd, sEven := Encode4and4(byte(physicalSector))
	cOdd, cEven := checksum4and4(img.volume, byte(track), byte(physicalSector))
	for _, pair := range [][2]byte{{vOdd, vEven}, {tOdd, tEven}, {sOdd, sEven}, {cOdd, cEven}} {
		img.data[base] = pair[0]
		img.data[base+1] = pair[1]
		base += 2
	}
	copy(img.data[base:], fieldEpilog[:])
}

// WriteSector 6-and-2 encodes the given 256 bytes and writes them into the
// data field of track/logicalSector, translating through the interleave
// table to find the physical sector position.
func (img *Image) WriteSector(track, logicalSector int, sector [256]byte) error {
	if track < 0 || track >= TracksPerSide {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "track %d out of range (0-%d)", track, TracksPerSide-1)
	}
	if logicalSector < 0 || logicalSector >= SectorsPerTrack {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "sector %d out of range (0-%d)", logicalSector, SectorsPerTrack-1)
	}
	physical := img.interleave[logicalSector]
	base := img.trackOffset(track) + sectorFrameOffset(physical)
	base += addressPrologLen + addressFieldLen + addressEpilogLen + gap2SyncBytes

	copy(img.data[base:], dataProlog[:])
	base += dataPrologLen

	nibbles := Encode6and2(sector)
	copy(img.data[base:], nibbles[:])
	base += dataFieldLen

	copy(img.data[base:], fieldEpilog[:])

	img.written[track][logicalSector] = true
	return nil
}

// Bytes returns the full linear image.
func (img *Image) Bytes() []byte {
	return img.data[:]
}

// WriteImage writes the full image to path.
func (img *Image) WriteImage(path string) error {
	if err := os.WriteFile(path, img.data[:], 0644); err != nil {
		return errs.New(errs.Position{Filename: path}, errs.KindFileIO, "writing disk image: %v", err)
	}
	return nil
}
