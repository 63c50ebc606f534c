// Package listing formats one text record per assembled source line, in the
// fixed-width column layout Merlin-style assemblers print: address, a run of
// hex bytes per row (with overflow bytes wrapping to continuation rows), the
// 1-based line number, and the source text.
package listing

import (
	"fmt"
	"strings"
)

// Record is the subset of an assembled line the formatter needs. It is
// deliberately small and copy-friendly; the assembler builds one per line
// without retaining a pointer into its own internal state.
type Record struct {
	HasAddress  bool
	Address     uint16
	Bytes       []byte
	LineNumber  int
	SourceText  string
	Indentation int
	IsEqu       bool
	EquValue    uint16
}

// Formatter carries the listing layout settings, fed from config.Listing.
type Formatter struct {
	// BytesPerRow is how many emitted bytes print on one row before the rest
	// wrap to continuation rows. Values below 1 fall back to the default.
	BytesPerRow int
	// ShowComments controls whether source comments appear in the output;
	// when false, ';' comments are stripped and '*' full-line comments print
	// as blank source.
	ShowComments bool
}

// DefaultFormatter matches the classic layout: three bytes per row, comments
// shown.
func DefaultFormatter() Formatter {
	return Formatter{BytesPerRow: 3, ShowComments: true}
}

// Format renders rec with the default settings.
func Format(rec Record) []string {
	return DefaultFormatter().Format(rec)
}

// Format renders rec as one or more listing lines (more than one only when
// more bytes were emitted than fit one row).
func (f Formatter) Format(rec Record) []string {
	if rec.IsEqu {
		return []string{fmt.Sprintf("    :    =%04X", rec.EquValue)}
	}

	perRow := f.BytesPerRow
	if perRow < 1 {
		perRow = 3
	}
	width := perRow*3 - 1

	source := rec.SourceText
	if !f.ShowComments {
		source = stripComment(source)
	}

	if len(rec.Bytes) == 0 {
		addr := addrColumn(rec)
		return []string{fmt.Sprintf("%s: %-*s  %4d  %s", addr, width, "", rec.LineNumber, source)}
	}

	var lines []string
	for i := 0; i < len(rec.Bytes); i += perRow {
		end := i + perRow
		if end > len(rec.Bytes) {
			end = len(rec.Bytes)
		}
		bytesCol := hexBytes(rec.Bytes[i:end])
		if i == 0 {
			addr := addrColumn(rec)
			lines = append(lines, fmt.Sprintf("%s: %-*s  %4d  %s", addr, width, bytesCol, rec.LineNumber, source))
		} else {
			lines = append(lines, fmt.Sprintf("    : %-*s", width, bytesCol))
		}
	}
	return lines
}

func addrColumn(rec Record) string {
	if !rec.HasAddress {
		return "    "
	}
	return fmt.Sprintf("%04X", rec.Address)
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}

// stripComment drops a trailing ';' comment (quote-aware, so string literals
// containing ';' survive) and blanks full-line comments.
func stripComment(src string) string {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, ";") {
		return ""
	}
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ';':
			return strings.TrimRight(src[:i], " \t")
		}
	}
	return src
}
