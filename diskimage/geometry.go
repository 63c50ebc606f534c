package diskimage

// RWTS16 geometry constants for a standard Apple II DOS 3.3 floppy: 16
// sectors per track, 35 tracks, no flip side.
const (
	SectorsPerTrack = 16
	TracksPerSide   = 35
	NibblesPerTrack = 6656
	ImageSize       = TracksPerSide * NibblesPerTrack // 232960

	gap1SyncBytes = 528 // only written once per track, before sector 0

	addressPrologLen = 3
	addressFieldLen  = 8 // volume, track, sector, checksum, each 4-and-4 encoded
	addressEpilogLen = 3
	gap2SyncBytes    = 5
	dataPrologLen    = 3
	dataFieldLen     = 343
	dataEpilogLen    = 3

	// sectorFrameLen is the fixed advance from one sector's address prolog
	// to the next: 374 bytes, the value the write position advances by
	// after each frame. gap3SyncBytes is what's left over after every other
	// field in the frame is accounted for (6, not the rounder 16 one might
	// expect). Gap 1 plus the 16 frames span 528 + 16*374 = 6512 bytes; the
	// remaining 144 bytes of each 6656-byte track stay sync fill.
	sectorFrameLen = 374
	gap3SyncBytes  = sectorFrameLen - (addressPrologLen + addressFieldLen + addressEpilogLen + gap2SyncBytes + dataPrologLen + dataFieldLen + dataEpilogLen)
)

var (
	addressProlog = [addressPrologLen]byte{0xD5, 0xAA, 0x96}
	fieldEpilog   = [3]byte{0xDE, 0xAA, 0xEB}
	dataProlog    = [dataPrologLen]byte{0xD5, 0xAA, 0xAD}
)

// DefaultInterleave is the DOS 3.3 physical sector interleave table: logical
// sector i is physically written at DefaultInterleave[i] within the track.
// This resolves Open Question (b); see DESIGN.md.
var DefaultInterleave = [SectorsPerTrack]int{0, 7, 14, 6, 13, 5, 12, 4, 11, 3, 10, 2, 9, 1, 8, 15}
