// Package asm implements the two-pass-collapsed-into-one assembler core:
// directive dispatch, the three overlapping 6502/65C02/65816 opcode tables,
// addressing-mode disambiguation, and forward-reference fixup.
package asm

import (
	"os"
	"strconv"
	"strings"

	"github.com/adamgreen/snapcrackle/binbuf"
	"github.com/adamgreen/snapcrackle/errs"
	"github.com/adamgreen/snapcrackle/expr"
	"github.com/adamgreen/snapcrackle/lineparse"
	"github.com/adamgreen/snapcrackle/listing"
	"github.com/adamgreen/snapcrackle/symtab"
	"github.com/adamgreen/snapcrackle/text"
)

// LineFlag mirrors the original assembler's per-line flag bits.
type LineFlag int

const (
	FlagConditionalSkip LineFlag = 1 << iota
	FlagConditionalInheritedSkip
	FlagWasEqu
	FlagForwardReference
	FlagDisallowForward
)

// Line is the listing-facing record of one assembled source line: the
// original text, where it landed, what it emitted, and enough addressing
// context to re-assemble it if a forward reference it used is later
// defined.
type Line struct {
	Pos         errs.Position
	Source      string
	Indentation int
	Address     uint16
	HasAddress  bool
	Bytes       []byte
	Flags       LineFlag
	IsEqu       bool
	EquValue    uint16

	mnemonic string
	operand  string
	set      InstructionSet

	// mode is the addressing mode chosen at initial emission. Fixup re-encodes
	// with this mode unchanged: the instruction's size was already committed
	// (and the PC advanced past it), so a forward reference that turns out to
	// fit zero page must still be encoded at its original width.
	mode  Mode
	sized bool
}

func (l *Line) has(f LineFlag) bool { return l.Flags&f != 0 }
func (l *Line) setFlag(f LineFlag)  { l.Flags |= f }

// Assembler drives assembly of one program: source text in, a BinaryBuffer
// and a Line-per-source-line listing stream out.
type Assembler struct {
	Symbols *symtab.Table
	Buffer  *binbuf.Buffer
	Lines   []*Line
	Errors  errs.List

	set    InstructionSet
	scope  symtab.LocalLabelScope
	pc     uint16
	lineNo int

	condSkip    []bool // one entry per nested DO level: true if this level's body is being skipped
	byPos       map[errs.Position]*Line
	includeSeen map[string]bool

	// MaxLineLength is the longest source line accepted, in bytes. Lines
	// longer than this are reported and otherwise assembled unchanged.
	// Zero means unlimited.
	MaxLineLength int

	// ReadFile loads a PUT/USE'd source file. Defaults to os.ReadFile;
	// overridable so tests don't need real files on disk.
	ReadFile func(name string) ([]byte, error)
}

// New creates an Assembler with program output starting at origin.
func New(origin uint16, bucketHint int) *Assembler {
	return &Assembler{
		Symbols:       symtab.New(bucketHint),
		Buffer:        binbuf.New(origin),
		pc:            origin,
		byPos:         make(map[errs.Position]*Line),
		includeSeen:   make(map[string]bool),
		MaxLineLength: 255,
		ReadFile:      os.ReadFile,
	}
}

// SetInstructionSet selects the instruction set assembly starts in, normally
// Set6502. XC still upgrades from whatever the starting point is.
func (a *Assembler) SetInstructionSet(s InstructionSet) {
	a.set = s
}

// evaluator builds an expression evaluator for the given line position and
// program counter, wired to the symbol table and the local-label scope so
// ':'-prefixed references resolve against the enclosing global label.
func (a *Assembler) evaluator(pos errs.Position, pc uint16) *expr.Evaluator {
	return &expr.Evaluator{Symbols: a.Symbols, PC: uint32(pc), Pos: pos, Qualify: a.scope.Qualify}
}

// skipping reports whether the current conditional-assembly nesting level
// suppresses source.
func (a *Assembler) skipping() bool {
	for _, s := range a.condSkip {
		if s {
			return true
		}
	}
	return false
}

// AssembleFile reads filename via a.ReadFile and assembles it.
func (a *Assembler) AssembleFile(filename string) error {
	data, err := a.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return errs.New(errs.Position{Filename: filename}, errs.KindFileNotFound, "%v", err)
		}
		return errs.New(errs.Position{Filename: filename}, errs.KindFileIO, "%v", err)
	}
	return a.AssembleSource(filename, string(data))
}

// AssembleSource assembles the lines of src, attributed to filename for
// diagnostics. It may be called recursively by PUT/USE.
func (a *Assembler) AssembleSource(filename, src string) error {
	lines := splitLines(src)
	for _, raw := range lines {
		a.lineNo++
		pos := errs.Position{Filename: filename, Line: a.lineNo}
		if err := a.assembleLine(pos, raw); err != nil {
			return err
		}
	}
	return nil
}

// splitLines normalizes CR/CRLF/LF line endings through a text.Buffer and
// splits the result into lines, dropping the empty tail a trailing newline
// leaves behind.
func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	buf := text.NewBuffer(len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\r' {
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			c = '\n'
		}
		buf.WriteByte(c)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (a *Assembler) assembleLine(pos errs.Position, raw string) error {
	if a.MaxLineLength > 0 && len(raw) > a.MaxLineLength {
		a.Errors.Add(errs.New(pos, errs.KindParse, "line length %d exceeds maximum of %d", len(raw), a.MaxLineLength))
	}

	parsed := lineparse.Parse(raw)

	line := &Line{Pos: pos, Source: raw, Indentation: parsed.Indentation, set: a.set}
	if n := len(a.condSkip); n > 0 {
		if a.condSkip[n-1] {
			line.setFlag(FlagConditionalSkip)
		}
		for _, s := range a.condSkip[:n-1] {
			if s {
				line.setFlag(FlagConditionalInheritedSkip)
				break
			}
		}
	}

	opcode := strings.ToUpper(parsed.Opcode.String())

	// Conditional-assembly directives are recognized even while skipping, so
	// DO/ELSE/FIN nesting stays balanced.
	switch opcode {
	case "DO":
		a.doConditional(parsed, pos)
		a.Lines = append(a.Lines, line)
		return nil
	case "ELSE":
		a.elseConditional(pos)
		a.Lines = append(a.Lines, line)
		return nil
	case "FIN":
		a.finConditional(pos)
		a.Lines = append(a.Lines, line)
		return nil
	}

	if a.skipping() || parsed.FullLineComment {
		a.Lines = append(a.Lines, line)
		return nil
	}

	label := strings.ToUpper(parsed.Label.String())
	if label != "" && opcode != "EQU" && opcode != "=" {
		a.defineLabel(label, pos)
	}

	switch opcode {
	case "":
		// label-only or blank line
	case "EQU", "=":
		a.handleEqu(label, parsed, line, pos)
	case "ORG":
		a.handleOrg(parsed, pos)
	case "DS":
		a.handleDS(parsed, line, pos)
	case "DA", "DW", "DFB", "DB":
		a.handleData(opcode, parsed, line, pos)
	case "ASC":
		a.handleAsc(parsed, line, pos, false)
	case "DCI":
		a.handleAsc(parsed, line, pos, true)
	case "HEX":
		a.handleHex(parsed, line, pos)
	case "XC":
		a.handleXC()
	case "PUT", "USE":
		// List the PUT line before the lines it pulls in.
		a.Lines = append(a.Lines, line)
		a.byPos[pos] = line
		return a.handleInclude(parsed, pos)
	default:
		a.assembleOpcode(opcode, parsed, line, pos)
	}

	a.Lines = append(a.Lines, line)
	a.byPos[pos] = line
	return nil
}

// defineLabel processes the label column of a non-EQU line: it names the
// current program counter. A ':'-prefixed name is qualified against the
// most recent global label first.
func (a *Assembler) defineLabel(label string, pos errs.Position) {
	key := label
	if symtab.IsLocal(label) {
		key = a.scope.Qualify(label)
	} else {
		a.scope.SetGlobal(label)
	}

	sym := a.Symbols.Find(key)
	if sym == nil {
		sym = a.Symbols.Add(key)
	}
	if sym.Defined {
		a.Errors.Add(errs.New(pos, errs.KindParse, "duplicate label %s", label))
		return
	}
	sym.Defined = true
	sym.DefinedAt = pos
	sym.Value = symtab.Expression{Value: uint32(a.pc), Kind: symtab.KindAbsolute}
	a.resolveForwardReferences(sym)
}

// resolveForwardReferences revisits every line that referenced sym before
// it was defined, re-assembling each from its cached mnemonic/operand text
// and patching the result into the BinaryBuffer.
func (a *Assembler) resolveForwardReferences(sym *symtab.Symbol) {
	sym.LineReferenceEnumStart()
	for {
		refPos, more := sym.LineReferenceEnumNext()
		if !more {
			break
		}
		line, ok := a.byPos[refPos]
		if !ok || line.mnemonic == "" {
			continue
		}
		switch line.mnemonic {
		case "DA", "DW", "DFB", "DB":
			a.patchDataDirective(line, refPos)
			continue
		}
		if !line.sized {
			continue
		}
		form, exprText, _ := classifyOperand(line.operand)
		val, diag := evalOperandExpr(a.evaluator(refPos, line.Address), form, exprText)
		if diag != nil {
			a.Errors.Add(diag)
			continue
		}
		bytes, diag := encodeInstruction(line.mnemonic, resolvedOperand{mode: line.mode, value: val}, line.set, line.Address, refPos)
		if diag != nil {
			a.Errors.Add(diag)
			continue
		}
		line.Bytes = bytes
		if err := a.Buffer.WriteAt(line.Address, bytes); err != nil {
			a.Errors.Add(errs.New(refPos, errs.KindBufferOverrun, "%v", err))
		}
	}
}

// patchDataDirective re-evaluates a DA/DW/DFB/DB operand list whose original
// emission contained forward-referenced fields and overwrites the placeholder
// bytes. If another field is still unresolved the patch is left for that
// symbol's own fixup walk.
func (a *Assembler) patchDataDirective(line *Line, pos errs.Position) {
	wide := line.mnemonic == "DA" || line.mnemonic == "DW"
	var out []byte
	for _, field := range splitOperandList(line.operand) {
		val, diag := a.evaluator(pos, line.Address).Eval(field)
		if diag != nil {
			a.Errors.Add(diag)
			return
		}
		if val.ForwardRef {
			return
		}
		if wide {
			out = append(out, byte(val.Value), byte(val.Value>>8))
		} else {
			out = append(out, byte(val.Value))
		}
	}
	line.Bytes = out
	if err := a.Buffer.WriteAt(line.Address, out); err != nil {
		a.Errors.Add(errs.New(pos, errs.KindBufferOverrun, "%v", err))
	}
}

func evalOperandExpr(e *expr.Evaluator, form operandForm, exprText string) (symtab.Expression, *errs.Diagnostic) {
	if form == formNone || form == formAccumulator {
		return symtab.Expression{}, nil
	}
	return e.Eval(exprText)
}

func (a *Assembler) handleXC() {
	if a.set < Set65816 {
		a.set++
	}
}

func (a *Assembler) doConditional(parsed lineparse.ParsedLine, pos errs.Position) {
	// Inside a skipped region the operand is not evaluated; evaluating it
	// would register symbols from source that is not being assembled.
	if a.skipping() {
		a.condSkip = append(a.condSkip, true)
		return
	}
	val, diag := a.evaluator(pos, a.pc).Eval(parsed.Operand.String())
	skip := diag != nil || val.Value == 0
	a.condSkip = append(a.condSkip, skip)
}

func (a *Assembler) elseConditional(pos errs.Position) {
	if len(a.condSkip) == 0 {
		a.Errors.Add(errs.New(pos, errs.KindParse, "ELSE without matching DO"))
		return
	}
	top := len(a.condSkip) - 1
	a.condSkip[top] = !a.condSkip[top]
}

func (a *Assembler) finConditional(pos errs.Position) {
	if len(a.condSkip) == 0 {
		a.Errors.Add(errs.New(pos, errs.KindParse, "FIN without matching DO"))
		return
	}
	a.condSkip = a.condSkip[:len(a.condSkip)-1]
}

func (a *Assembler) handleInclude(parsed lineparse.ParsedLine, pos errs.Position) error {
	name := strings.Trim(parsed.Operand.String(), `"`)
	if a.includeSeen[name] {
		a.Errors.Add(errs.New(pos, errs.KindParse, "circular include of %s", name))
		return nil
	}
	a.includeSeen[name] = true
	defer delete(a.includeSeen, name)

	data, err := a.ReadFile(name)
	if err != nil {
		a.Errors.Add(errs.New(pos, errs.KindFileNotFound, "%s: %v", name, err))
		return nil
	}

	savedLineNo := a.lineNo
	a.lineNo = 0
	err2 := a.AssembleSource(name, string(data))
	a.lineNo = savedLineNo
	return err2
}

func (a *Assembler) emit(line *Line, bytes []byte) {
	line.HasAddress = true
	line.Address = a.pc
	_, slice := a.Buffer.Allocate(len(bytes))
	copy(slice, bytes)
	line.Bytes = bytes
	a.pc += uint16(len(bytes))
}

func parseNumericOperand(text string) (uint64, bool) {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "$"):
		v, err := strconv.ParseUint(text[1:], 16, 32)
		return v, err == nil
	case strings.HasPrefix(text, "%"):
		v, err := strconv.ParseUint(text[1:], 2, 32)
		return v, err == nil
	default:
		v, err := strconv.ParseUint(text, 10, 32)
		return v, err == nil
	}
}

// CheckUndefinedSymbols reports a Parse diagnostic for every symbol that is
// still undefined once assembly has finished — the "undefined symbol at
// close-of-assembly" case from the error-kind taxonomy. Call this once, after
// the outermost AssembleSource/AssembleFile call returns.
func (a *Assembler) CheckUndefinedSymbols() {
	for _, sym := range a.Symbols.All() {
		if sym.Defined {
			continue
		}
		pos := errs.Position{}
		if len(sym.References) > 0 {
			pos = sym.References[0]
		}
		a.Errors.Add(errs.New(pos, errs.KindParse, "undefined symbol %s", sym.Name))
	}
}

// ListingRecords converts the assembler's internal Line records into
// listing.Record values ready for formatting.
func (a *Assembler) ListingRecords() []listing.Record {
	records := make([]listing.Record, 0, len(a.Lines))
	for i, line := range a.Lines {
		records = append(records, listing.Record{
			HasAddress:  line.HasAddress,
			Address:     line.Address,
			Bytes:       line.Bytes,
			LineNumber:  i + 1,
			SourceText:  line.Source,
			Indentation: line.Indentation,
			IsEqu:       line.IsEqu,
			EquValue:    line.EquValue,
		})
	}
	return records
}
