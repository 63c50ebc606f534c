// Package errs defines the error kinds shared by the assembler and the disk
// imager, and the position-carrying diagnostic type used to report them.
package errs

import "fmt"

// Kind categorizes an error the way the original C implementation's
// exception codes did, before long-jump exceptions were replaced with
// ordinary Go error values.
type Kind int

const (
	KindOutOfMemory Kind = iota
	KindFileNotFound
	KindFileIO
	KindInvalidArgument
	KindParse
	KindBufferOverrun
)

func (k Kind) String() string {
	switch k {
	case KindOutOfMemory:
		return "out of memory"
	case KindFileNotFound:
		return "file not found"
	case KindFileIO:
		return "file I/O error"
	case KindInvalidArgument:
		return "invalid argument"
	case KindParse:
		return "parse error"
	case KindBufferOverrun:
		return "buffer overrun"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Position identifies a location in a source file.
type Position struct {
	Filename string
	Line     int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// Diagnostic is a single reported problem, formatted the way the original
// assembler's LOG_ERROR macro did: "file:line: error: message".
type Diagnostic struct {
	Pos  Position
	Kind Kind
	Msg  string
}

// New creates a Diagnostic.
func New(pos Position, kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Pos: pos, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: error: %s", d.Pos, d.Msg)
}

// List aggregates diagnostics produced while assembling a file. Per
// spec.md's error propagation policy, per-line errors are caught at the line
// boundary, appended here, and assembly continues with the next line.
type List struct {
	Diagnostics []*Diagnostic
}

// Add appends a diagnostic to the list.
func (l *List) Add(d *Diagnostic) {
	l.Diagnostics = append(l.Diagnostics, d)
}

// HasErrors reports whether any diagnostics were recorded.
func (l *List) HasErrors() bool {
	return len(l.Diagnostics) > 0
}

// Count returns the number of diagnostics recorded.
func (l *List) Count() int {
	return len(l.Diagnostics)
}

func (l *List) Error() string {
	if len(l.Diagnostics) == 0 {
		return ""
	}
	msg := ""
	for _, d := range l.Diagnostics {
		msg += d.Error() + "\n"
	}
	return msg
}
