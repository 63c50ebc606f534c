package diskimage

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/adamgreen/snapcrackle/errs"
)

// Encoding names the sector encoding a placement record asks for. RWTS16 is
// the only variant this package places; RW18 records are parsed here, but
// their placement and data framing (self-sync 4-and-4, not 6-and-2) are
// carried by the rw18 package, which has its own Image type and shares this
// package's script parsing and 4-and-4 primitives.
type Encoding int

const (
	EncodingRWTS16 Encoding = iota
	EncodingRW18
)

func (e Encoding) String() string {
	if e == EncodingRW18 {
		return "RW18"
	}
	return "RWTS16"
}

// Insert is one placement record parsed from a disk script: place Length
// bytes of the object file starting at SourceOffset onto the image starting
// at Track/Sector, using Encoding.
type Insert struct {
	Encoding     Encoding
	SourceOffset int
	Length       int
	Track        int
	Sector       int
}

// ParseScript reads a disk placement script: newline-separated CSV records,
// blank lines ignored, '#' starting a line comment to end of line. Each
// record is "RWTS16,source-offset,length,track,sector" or
// "RW18,source-offset,length,side,track,sector" (side selects which
// rw18.Image a caller places the record onto and is not carried in Insert).
func ParseScript(r io.Reader) ([]Insert, error) {
	var inserts []Insert
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rdr := csv.NewReader(strings.NewReader(line))
		rdr.TrimLeadingSpace = true
		fields, err := rdr.Read()
		if err != nil {
			return nil, errs.New(errs.Position{Line: lineNo}, errs.KindInvalidArgument, "malformed script record: %v", err)
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		ins, err := parseRecord(fields)
		if err != nil {
			return nil, errs.New(errs.Position{Line: lineNo}, errs.KindInvalidArgument, "%v", err)
		}
		inserts = append(inserts, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.Position{}, errs.KindFileIO, "reading script: %v", err)
	}
	return inserts, nil
}

func parseRecord(fields []string) (Insert, error) {
	if len(fields) == 0 {
		return Insert{}, errs.New(errs.Position{}, errs.KindInvalidArgument, "empty script record")
	}
	switch strings.ToUpper(fields[0]) {
	case "RWTS16":
		if len(fields) != 5 {
			return Insert{}, errs.New(errs.Position{}, errs.KindInvalidArgument, "RWTS16 record wants 5 fields, got %d", len(fields))
		}
		vals, err := parseInts(fields[1:])
		if err != nil {
			return Insert{}, err
		}
		return Insert{Encoding: EncodingRWTS16, SourceOffset: vals[0], Length: vals[1], Track: vals[2], Sector: vals[3]}, nil
	case "RW18":
		if len(fields) != 6 {
			return Insert{}, errs.New(errs.Position{}, errs.KindInvalidArgument, "RW18 record wants 6 fields, got %d", len(fields))
		}
		vals, err := parseInts(fields[1:])
		if err != nil {
			return Insert{}, err
		}
		// Side selects which rw18.Image the caller places this record onto
		// (this package models one side per Image, same as RWTS16's single
		// side) and is not carried in Insert; the record's final field is
		// read as a sector index within the track, consistent with every
		// other insert here being sector-addressed rather than byte-addressed.
		return Insert{Encoding: EncodingRW18, SourceOffset: vals[0], Length: vals[1], Track: vals[3], Sector: vals[4]}, nil
	default:
		return Insert{}, errs.New(errs.Position{}, errs.KindInvalidArgument, "unknown script record kind %q", fields[0])
	}
}

// parseInts converts each field to an integer, in order.
func parseInts(fields []string) ([]int, error) {
	vals := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errs.New(errs.Position{}, errs.KindInvalidArgument, "field %q is not an integer", f)
		}
		vals[i] = v
	}
	return vals, nil
}

// ApplyRWTS16 runs every RWTS16 record in inserts against object, writing
// 256-byte sectors into img starting at each record's track/sector and
// advancing sector-then-track across a multi-sector insert. It fails with
// KindInvalidArgument if Length is not a multiple of 256, or if placement
// would touch a track >= TracksPerSide, a sector >= SectorsPerTrack, or run
// past the end of the object data or the end of the disk.
func ApplyRWTS16(img *Image, object []byte, ins Insert) error {
	if ins.Length%256 != 0 {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "length %d is not a multiple of 256", ins.Length)
	}
	if ins.SourceOffset < 0 || ins.SourceOffset+ins.Length > len(object) {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "source range [%d,%d) exceeds object file length %d", ins.SourceOffset, ins.SourceOffset+ins.Length, len(object))
	}
	if ins.Track < 0 || ins.Track >= TracksPerSide {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "track %d out of range (0-%d)", ins.Track, TracksPerSide-1)
	}
	if ins.Sector < 0 || ins.Sector >= SectorsPerTrack {
		return errs.New(errs.Position{}, errs.KindInvalidArgument, "sector %d out of range (0-%d)", ins.Sector, SectorsPerTrack-1)
	}

	track, sector := ins.Track, ins.Sector
	numSectors := ins.Length / 256
	for i := 0; i < numSectors; i++ {
		if track >= TracksPerSide {
			return errs.New(errs.Position{}, errs.KindInvalidArgument, "insert runs past the end of the disk (track %d)", track)
		}
		var sec [256]byte
		copy(sec[:], object[ins.SourceOffset+i*256:ins.SourceOffset+(i+1)*256])
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

// Run parses a script from r and applies every record to img against
// object. RW18 records are rejected here; callers targeting the RW18
// variant use the rw18 package's own Run.
func Run(img *Image, object []byte, r io.Reader) error {
	inserts, err := ParseScript(r)
	if err != nil {
		return err
	}
	for _, ins := range inserts {
		if ins.Encoding != EncodingRWTS16 {
			return errs.New(errs.Position{}, errs.KindInvalidArgument, "script contains a %s record; use the rw18 package's Run for RW18 images", ins.Encoding)
		}
		if err := ApplyRWTS16(img, object, ins); err != nil {
			return err
		}
	}
	return nil
}
