package symtab

// LocalLabelScope rewrites Merlin's ':'-prefixed local labels into globally
// unique keys before they ever reach a Table. A local label is only visible
// between the global label that precedes it and the next global label, so
// the scope remembers just the one most recently defined global name.
type LocalLabelScope struct {
	currentGlobal string
}

// SetGlobal records name as the enclosing global label. Called whenever the
// assembler processes a label column that does not start with ':'.
func (s *LocalLabelScope) SetGlobal(name string) {
	s.currentGlobal = name
}

// Qualify returns the table key for a local label name (which still carries
// its leading ':'). Labels referenced before any global label has been seen
// are qualified against an empty scope, matching Merlin's behavior of
// treating them as local to the file's start.
func (s *LocalLabelScope) Qualify(localName string) string {
	return s.currentGlobal + localName
}

// IsLocal reports whether name uses Merlin's local-label syntax.
func IsLocal(name string) bool {
	return len(name) > 0 && name[0] == ':'
}
