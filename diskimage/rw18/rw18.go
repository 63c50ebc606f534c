// Package rw18 implements the documented alternative to RWTS16: an
// 18-sectors-per-track layout that frames sector data with the same
// self-synchronizing 4-and-4 odd/even split the RWTS16 address field uses,
// rather than 6-and-2 group coding. It shares the base diskimage package's
// 4-and-4 primitives and script-record parsing; only the per-sector data
// framing and geometry differ.
package rw18

import (
	"os"

	"github.com/adamgreen/snapcrackle/diskimage"
	"github.com/adamgreen/snapcrackle/errs"
)

// Geometry constants for the RW18 variant: more sectors per track than
// RWTS16, each still 256 bytes, with shorter gap-1 and gap-2 sync runs. The
// track length follows from the frame layout rather than being fixed.
const (
	SectorsPerTrack = 18
	TracksPerSide   = 35
	BytesPerSector  = 256

	addressPrologLen = 3
	addressFieldLen  = 6 // track, sector, checksum, each 4-and-4 encoded
	addressEpilogLen = 3
	gap2SyncBytes    = 4
	dataPrologLen    = 3
	dataFieldLen     = BytesPerSector * 2 // self-sync: two on-disk bytes per source byte
	dataEpilogLen    = 3
	gap3SyncBytes    = 6

	sectorFrameLen  = addressPrologLen + addressFieldLen + addressEpilogLen + gap2SyncBytes + dataPrologLen + dataFieldLen + dataEpilogLen + gap3SyncBytes
	gap1SyncBytes   = 40
	NibblesPerTrack = gap1SyncBytes + SectorsPerTrack*sectorFrameLen
	ImageSize       = TracksPerSide * NibblesPerTrack
)

var (
	addressProlog = [addressPrologLen]byte{0xD5, 0xAA, 0xB5}
	fieldEpilog   = [3]byte{0xDE, 0xAA, 0xEB}
	dataProlog    = [dataPrologLen]byte{0xD5, 0xAA, 0xAD}
)

// Image is an RW18-encoded disk image sharing the same flat-byte-stream
// shape as diskimage.Image.
type Image struct {
	data [ImageSize]byte
}

// New creates an Image with every track sync-filled and every sector's
// address field stamped in, in physical (unskewed) order — RW18 has no
// documented interleave requirement in the source material, so sectors
// are placed in logical order.
func New() *Image {
	img := &Image{}
	for i := range img.data {
		img.data[i] = 0xFF
	}
	for track := 0; track < TracksPerSide; track++ {
		for sector := 0; sector < SectorsPerTrack; sector++ {
			img.stampAddressField(track, sector)
		}
	}
	return img
}

func (img *Image) sectorFrameOffset(track, sector int) int {
	return track*NibblesPerTrack + gap1SyncBytes + sector*sectorFrameLen
}

func (img *Image) stampAddressField(track, sector int) {
	base := img.sectorFrameOffset(track, sector)
	copy(img.data[base:], addressProlog[:])
	base += addressPrologLen

	tOdd, tEven := diskimage.Encode4and4(byte(track))
	sOdd, sEven := diskimage.Encode4and4(byte(sector))
	cOdd, cEven := diskimage.Encode4and4(byte(track) ^ byte(sector))
	for _, pair := range [][2]byte{{tOdd, tEven}, {sOdd, sEven}, {cOdd, cEven}} {
		img.data[base] = pair[0]
		img.data[base+1] = pair[1]
		base += 2
	}
	copy(img.data[base:], fieldEpilog[:])
}

// EncodeSelfSync 4-and-4 encodes a 256-byte sector into 512 on-disk bytes:
// no group coding, no XOR checksum chain, just the same odd/even split the
// address field uses, one pair per source byte.
func EncodeSelfSync(sector [BytesPerSector]byte) [dataFieldLen]byte {
	var out [dataFieldLen]byte
	for i, b := range sector {
		odd, even := diskimage.Encode4and4(b)
		out[i*2] = odd
		out[i*2+1] = even
	}
	return out
}

// DecodeSelfSync inverts EncodeSelfSync.
func DecodeSelfSync(nibbles [dataFieldLen]byte) [BytesPerSector]byte {
	var sector [BytesPerSector]byte
	for i := range sector {
		sector[i] = diskimage.Decode4and4(nibbles[i*2], nibbles[i*2+1])
	}
	return sector
}

// WriteSector encodes and places one 256-byte sector at track/sector.
func (img *Image) WriteSector(track, sector int, data [BytesPerSector]byte) error {
	if track < 0 || track >= TracksPerSide {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "track %d out of range (0-%d)", track, TracksPerSide-1)
	}
	if sector < 0 || sector >= SectorsPerTrack {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "sector %d out of range (0-%d)", sector, SectorsPerTrack-1)
	}
	base := img.sectorFrameOffset(track, sector) + addressPrologLen + addressFieldLen + addressEpilogLen + gap2SyncBytes

	copy(img.data[base:], dataProlog[:])
	base += dataPrologLen

	nibbles := EncodeSelfSync(data)
	copy(img.data[base:], nibbles[:])
	base += dataFieldLen

	copy(img.data[base:], fieldEpilog[:])
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

// ApplyInsert runs a single RW18 script record: side is folded into the
// caller's choice of image (this package models one side per Image, as the
// source material's RW18 support never documents interleaved sides), track
// and an object-file offset select where sectors land.
func ApplyInsert(img *Image, object []byte, ins diskimage.Insert) error {
	if ins.Length%BytesPerSector != 0 {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "length %d is not a multiple of %d", ins.Length, BytesPerSector)
	}
	if ins.SourceOffset < 0 || ins.SourceOffset+ins.Length > len(object) {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "source range [%d,%d) exceeds object file length %d", ins.SourceOffset, ins.SourceOffset+ins.Length, len(object))
	}
	track, sector := ins.Track, ins.Sector
	numSectors := ins.Length / BytesPerSector
	for i := 0; i < numSectors; i++ {
		if track >= TracksPerSide {
			return errs.New(errs.Position{}, errs.KindInvalidArgument, "insert runs past the end of the disk (track %d)", track)
		}
		var sec [BytesPerSector]byte
		copy(sec[:], object[ins.SourceOffset+i*BytesPerSector:ins.SourceOffset+(i+1)*BytesPerSector])
		if err := img.WriteSector(track, sector, sec); err != nil {
			return err
		}
		sector++
		if sector >= SectorsPerTrack {
			sector = 0
			track++
		}
	}
	return nil
}

// Run applies every RW18 record in inserts (as returned by
// diskimage.ParseScript) to img; records of any other encoding are skipped.
func Run(img *Image, object []byte, inserts []diskimage.Insert) error {
	for _, ins := range inserts {
		if ins.Encoding != diskimage.EncodingRW18 {
			continue
		}
		if err := ApplyInsert(img, object, ins); err != nil {
			return err
		}
	}
	return nil
}
