// Package symtab implements the assembler's symbol table: a hashed mapping
// from identifier to Symbol, with a per-symbol list of referring source
// lines so forward references can be patched once the symbol is defined.
package symtab

import "github.com/adamgreen/snapcrackle/errs"

// ExprKind tags how an Expression's value should be interpreted.
type ExprKind int

const (
	// KindAbsolute is a resolved absolute (or PC-relative-already-applied) value.
	KindAbsolute ExprKind = iota
	// KindImmediate marks a value introduced by a leading '#'.
	KindImmediate
	// KindForwardReferenced marks a value that could not be resolved yet;
	// the numeric Value is meaningless (always 0) until the referenced
	// symbol is defined and the line is reassembled.
	KindForwardReferenced
)

// Expression is an evaluated operand: a value plus a type tag and a flag
// recording whether any unresolved forward reference contributed to it.
// It is not an AST — operator trees are evaluated immediately by the
// expr package and never retained.
type Expression struct {
	Value      uint32
	Kind       ExprKind
	ForwardRef bool
}

// Symbol is identified by its name and carries the Expression that is its
// value once defined. Every line that referenced the symbol before it was
// defined is recorded in References so the assembler can revisit and patch
// those lines.
type Symbol struct {
	Name       string
	Value      Expression
	Defined    bool
	DefinedAt  errs.Position
	References []errs.Position

	refCursor int
}

// Table is a hashed mapping from identifier to Symbol. Go's native map
// already provides the hashed-bucket behavior the original C symbol table
// hand-rolled with chaining; Table layers on top of it the enumeration and
// idempotent-reference-list semantics the assembler depends on, plus a
// stable insertion order so listings and symbol dumps don't vary between
// runs of the same source file.
type Table struct {
	symbols map[string]*Symbol
	order   []string
	cursor  int
}

// New creates an empty symbol table. bucketCount is accepted for parity with
// the original hash table's tunable bucket count (and surfaced through
// config.Config); on a map-backed table it only serves as the map's initial
// size hint.
func New(bucketCount int) *Table {
	return &Table{symbols: make(map[string]*Symbol, bucketCount)}
}

// Add allocates a new Symbol and inserts it unconditionally. It does not
// check for duplicates; callers that require uniqueness must Find first.
func (t *Table) Add(name string) *Symbol {
	sym := &Symbol{Name: name}
	t.symbols[name] = sym
	t.order = append(t.order, name)
	return sym
}

// Find returns the symbol with the given name, or nil if none exists.
func (t *Table) Find(name string) *Symbol {
	return t.symbols[name]
}

// FindSized returns the symbol whose name matches the first length bytes of
// name — the Go equivalent of the original table's strncmp-style prefix
// comparison, kept because local-label callers sometimes hold a source span
// longer than the symbol's stored key.
func (t *Table) FindSized(name string, length int) *Symbol {
	if length > len(name) {
		return nil
	}
	prefix := name[:length]
	if sym, ok := t.symbols[prefix]; ok {
		return sym
	}
	for _, key := range t.order {
		if len(key) >= length && key[:length] == prefix {
			return t.symbols[key]
		}
	}
	return nil
}

// Count returns the number of symbols ever added.
func (t *Table) Count() int {
	return len(t.order)
}

// EnumStart resets the enumeration cursor. EnumNext then yields symbols in
// the order they were first added.
func (t *Table) EnumStart() {
	t.cursor = 0
}

// EnumNext returns the next symbol in insertion order, or nil when
// enumeration is exhausted.
func (t *Table) EnumNext() *Symbol {
	for t.cursor < len(t.order) {
		name := t.order[t.cursor]
		t.cursor++
		if sym, ok := t.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// All returns every symbol in insertion order. Used by symbol-dump tooling.
func (t *Table) All() []*Symbol {
	result := make([]*Symbol, 0, len(t.order))
	for _, name := range t.order {
		if sym, ok := t.symbols[name]; ok {
			result = append(result, sym)
		}
	}
	return result
}

// LineReferenceAdd records that pos referenced sym, unless that exact
// position was already recorded. This mirrors the original assembler's
// idempotent Symbol_LineReferenceAdd: the same line can evaluate an
// expression containing the same forward reference more than once (e.g.
// during a retry after another symbol resolves) and must not accumulate
// duplicate fixup entries.
func (s *Symbol) LineReferenceAdd(pos errs.Position) {
	for _, p := range s.References {
		if p == pos {
			return
		}
	}
	s.References = append(s.References, pos)
}

// LineReferenceRemove unlinks pos from the reference list. Removing a
// position that was never recorded is a no-op.
func (s *Symbol) LineReferenceRemove(pos errs.Position) {
	for i, p := range s.References {
		if p == pos {
			s.References = append(s.References[:i], s.References[i+1:]...)
			return
		}
	}
}

// LineReferenceEnumStart resets the reference cursor for a single-pass walk
// with LineReferenceEnumNext, the shape the forward-reference fixup uses.
func (s *Symbol) LineReferenceEnumStart() {
	s.refCursor = 0
}

// LineReferenceEnumNext yields the next recorded reference, reporting false
// once the list is exhausted.
func (s *Symbol) LineReferenceEnumNext() (errs.Position, bool) {
	if s.refCursor >= len(s.References) {
		return errs.Position{}, false
	}
	pos := s.References[s.refCursor]
	s.refCursor++
	return pos, true
}
