// Package text provides the non-owning string view and growable line buffer
// that the rest of the assembler builds on top of. A Span never copies the
// bytes it describes; it borrows from whatever string created it.
package text

import "strings"

// Span is a pointer+length view into text owned elsewhere. Source holds the
// backing string and Start/End delimit the slice within it.
type Span struct {
	Source string
	Start  int
	End    int
}

// NewSpan returns a Span covering the entire string.
func NewSpan(s string) Span {
	return Span{Source: s, Start: 0, End: len(s)}
}

// String materializes the span's text. This is the only place a Span copies
// bytes, and only because Go strings can't alias a byte range without it.
func (s Span) String() string {
	if s.Start >= s.End {
		return ""
	}
	return s.Source[s.Start:s.End]
}

// Len returns the number of bytes in the span.
func (s Span) Len() int {
	if s.Start >= s.End {
		return 0
	}
	return s.End - s.Start
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Len() == 0
}

// Slice returns the sub-span [from, to) relative to this span, without
// copying.
func (s Span) Slice(from, to int) Span {
	return Span{Source: s.Source, Start: s.Start + from, End: s.Start + to}
}

// TrimSpace returns a span with leading and trailing ASCII whitespace
// removed, still referencing the original backing string.
func (s Span) TrimSpace() Span {
	str := s.String()
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		return Span{Source: s.Source, Start: s.End, End: s.End}
	}
	lead := strings.Index(str, trimmed)
	return Span{Source: s.Source, Start: s.Start + lead, End: s.Start + lead + len(trimmed)}
}

// Equal compares two spans by content.
func (s Span) Equal(o Span) bool {
	return s.String() == o.String()
}

// EqualString compares a span's content against a plain string.
func (s Span) EqualString(str string) bool {
	return s.String() == str
}

// EqualFold is a case-insensitive comparison against a plain string, used
// throughout the assembler since mnemonics and directive names are
// case-insensitive.
func (s Span) EqualFold(str string) bool {
	return strings.EqualFold(s.String(), str)
}

// HasPrefix reports whether the span's content starts with prefix.
func (s Span) HasPrefix(prefix string) bool {
	return strings.HasPrefix(s.String(), prefix)
}

// At returns the byte at position i within the span.
func (s Span) At(i int) byte {
	return s.Source[s.Start+i]
}
