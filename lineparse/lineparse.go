// Package lineparse tokenizes one logical assembler source line into its
// label, opcode, operand, and comment columns, preserving the column
// positions Merlin source relies on.
package lineparse

import "github.com/adamgreen/snapcrackle/text"

// ParsedLine holds the four columns of one source line. Operand retains its
// text verbatim; further structure (addressing mode, expression) is the
// opcode handler's job, not the tokenizer's.
type ParsedLine struct {
	Label           text.Span
	Opcode          text.Span
	Operand         text.Span
	Comment         text.Span
	Indentation     int
	FullLineComment bool
}

// Parse splits src, one line of source text with its trailing newline
// already stripped, into its columns.
func Parse(src string) ParsedLine {
	span := text.NewSpan(src)
	pos := 0
	n := len(src)

	if n == 0 {
		return ParsedLine{}
	}

	// A line whose first non-whitespace character is '*' or ';' is a
	// full-line comment: opcode and operand stay empty.
	firstNonSpace := pos
	for firstNonSpace < n && isSpace(src[firstNonSpace]) {
		firstNonSpace++
	}
	if firstNonSpace < n && (src[firstNonSpace] == '*' || src[firstNonSpace] == ';') {
		return ParsedLine{Comment: span.Slice(firstNonSpace, n), FullLineComment: true}
	}

	var parsed ParsedLine

	// Column 1 occupied and not a comment marker: leading identifier is the
	// label (including a leading ':' for a local label).
	if !isSpace(src[0]) {
		start := 0
		end := 0
		if src[0] == ':' {
			end = 1
		}
		for end < n && isIdentChar(src[end]) {
			end++
		}
		parsed.Label = span.Slice(start, end)
		pos = end
	}

	pos = skipSpace(src, pos)
	opcodeStart := pos
	for pos < n && !isSpace(src[pos]) {
		pos++
	}
	parsed.Opcode = span.Slice(opcodeStart, pos)

	pos = skipSpace(src, pos)
	parsed.Indentation = pos

	operandStart := pos
	commentStart := -1
	inQuote := false
	for pos < n {
		c := src[pos]
		if c == '\'' || c == '"' {
			inQuote = !inQuote
		}
		if c == ';' && !inQuote {
			commentStart = pos
			break
		}
		pos++
	}
	operandEnd := pos
	if commentStart >= 0 {
		operandEnd = commentStart
	}
	parsed.Operand = span.Slice(operandStart, operandEnd).TrimSpace()

	if commentStart >= 0 {
		parsed.Comment = span.Slice(commentStart, n)
	}

	return parsed
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func skipSpace(src string, pos int) int {
	for pos < len(src) && isSpace(src[pos]) {
		pos++
	}
	return pos
}
