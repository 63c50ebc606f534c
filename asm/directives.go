package asm

import (
	"strings"

	"github.com/adamgreen/snapcrackle/errs"
	"github.com/adamgreen/snapcrackle/lineparse"
	"github.com/adamgreen/snapcrackle/symtab"
)

func (a *Assembler) handleEqu(label string, parsed lineparse.ParsedLine, line *Line, pos errs.Position) {
	if label == "" {
		a.Errors.Add(errs.New(pos, errs.KindParse, "EQU requires a label"))
		return
	}
	val, diag := a.evaluator(pos, a.pc).Eval(parsed.Operand.String())
	if diag != nil {
		a.Errors.Add(diag)
		return
	}
	if val.ForwardRef {
		a.Errors.Add(errs.New(pos, errs.KindParse, "EQU value may not use a forward reference"))
		return
	}

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
	sym.Value = val

	line.setFlag(FlagWasEqu)
	line.IsEqu = true
	line.EquValue = uint16(val.Value)
	a.resolveForwardReferences(sym)
}

func (a *Assembler) handleOrg(parsed lineparse.ParsedLine, pos errs.Position) {
	val, diag := a.evaluator(pos, a.pc).Eval(parsed.Operand.String())
	if diag != nil {
		a.Errors.Add(diag)
		return
	}
	if val.ForwardRef {
		a.Errors.Add(errs.New(pos, errs.KindParse, "ORG may not use a forward reference"))
		return
	}
	a.pc = uint16(val.Value)
	a.Buffer.SetOrigin(a.pc)
}

func (a *Assembler) handleDS(parsed lineparse.ParsedLine, line *Line, pos errs.Position) {
	val, diag := a.evaluator(pos, a.pc).Eval(parsed.Operand.String())
	if diag != nil {
		a.Errors.Add(diag)
		return
	}
	if val.ForwardRef {
		a.Errors.Add(errs.New(pos, errs.KindParse, "DS size may not use a forward reference"))
		return
	}
	a.emit(line, make([]byte, val.Value))
}

// handleData emits DA/DW (16-bit little-endian words) or DFB/DB (bytes). A
// field containing a forward reference emits placeholder zeros; the line
// records enough context for resolveForwardReferences to re-evaluate the
// operand list and patch the placeholders once the symbol is defined.
func (a *Assembler) handleData(opcode string, parsed lineparse.ParsedLine, line *Line, pos errs.Position) {
	wide := opcode == "DA" || opcode == "DW"
	line.Address = a.pc
	line.HasAddress = true

	var out []byte
	for _, field := range splitOperandList(parsed.Operand.String()) {
		val, diag := a.evaluator(pos, a.pc).Eval(field)
		if diag != nil {
			a.Errors.Add(diag)
			return
		}
		if val.ForwardRef {
			line.setFlag(FlagForwardReference)
			line.mnemonic = opcode
			line.operand = parsed.Operand.String()
		}
		if wide {
			out = append(out, byte(val.Value), byte(val.Value>>8))
		} else {
			out = append(out, byte(val.Value))
		}
	}
	a.emit(line, out)
}

// handleAsc emits an ASCII string literal delimited by matching quotes. DCI
// ("Dextral Character Inverted") flips the high bit of the final byte only.
func (a *Assembler) handleAsc(parsed lineparse.ParsedLine, line *Line, pos errs.Position, dci bool) {
	text := strings.TrimSpace(parsed.Operand.String())
	if len(text) < 2 {
		a.Errors.Add(errs.New(pos, errs.KindParse, "ASC/DCI requires a quoted string"))
		return
	}
	delim := text[0]
	body := text[1 : len(text)-1]
	highBit := byte(0x00)
	if delim == '"' {
		highBit = 0x80
	}

	out := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		out[i] = body[i] | highBit
	}
	if dci && len(out) > 0 {
		out[len(out)-1] ^= 0x80
	}
	a.emit(line, out)
}

func (a *Assembler) handleHex(parsed lineparse.ParsedLine, line *Line, pos errs.Position) {
	digits := strings.ReplaceAll(strings.TrimSpace(parsed.Operand.String()), ",", "")
	if len(digits)%2 != 0 {
		a.Errors.Add(errs.New(pos, errs.KindParse, "HEX requires an even number of hex digits"))
		return
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		v, ok := parseNumericOperand("$" + digits[i*2:i*2+2])
		if !ok {
			a.Errors.Add(errs.New(pos, errs.KindParse, "malformed HEX digit pair %q", digits[i*2:i*2+2]))
			return
		}
		out[i] = byte(v)
	}
	a.emit(line, out)
}

func splitOperandList(operand string) []string {
	fields := strings.Split(operand, ",")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// assembleOpcode handles a real mnemonic line (as opposed to a directive):
// classify the operand, evaluate its expression, resolve the addressing
// mode, and emit.
func (a *Assembler) assembleOpcode(mnemonic string, parsed lineparse.ParsedLine, line *Line, pos errs.Position) {
	line.mnemonic = mnemonic
	line.operand = parsed.Operand.String()
	line.Address = a.pc
	line.HasAddress = true

	form, exprText, forcedZP := classifyOperand(line.operand)
	val, diag := evalOperandExpr(a.evaluator(pos, a.pc), form, exprText)
	if diag != nil {
		a.Errors.Add(diag)
		return
	}
	if val.ForwardRef {
		line.setFlag(FlagForwardReference)
	}

	resolved, diag := resolveMode(mnemonic, form, forcedZP, val)
	if diag != nil {
		a.Errors.Add(diag)
		return
	}
	if resolved.disallowed {
		line.setFlag(FlagDisallowForward)
	}
	line.mode = resolved.mode
	line.sized = true

	bytes, diag := encodeInstruction(mnemonic, resolved, a.set, a.pc, pos)
	if diag != nil {
		a.Errors.Add(diag)
		return
	}
	a.emit(line, bytes)
}
