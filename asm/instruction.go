package asm

import (
	"github.com/adamgreen/snapcrackle/errs"
	"github.com/adamgreen/snapcrackle/symtab"
)

// resolvedOperand is what classifyOperand plus expression evaluation
// settles on: a concrete addressing mode, the evaluated expression, and
// whether the line must be revisited once a forward reference resolves.
type resolvedOperand struct {
	mode       Mode
	value      symtab.Expression
	disallowed bool // DISALLOW_FORWARD: forward ref forced into zero page by '<'
}

// resolveMode combines an operand's lexical form with its evaluated
// expression to choose a concrete addressing mode for mnemonic. Per the
// ambiguity rule: an in-range value prefers zero page when available; a
// forward reference defaults to the wider (absolute) encoding unless the
// source explicitly forced zero page with '<', in which case the line is
// flagged DISALLOW_FORWARD instead of silently risking the wrong size.
func resolveMode(mnemonic string, form operandForm, forcedZP bool, val symtab.Expression) (resolvedOperand, *errs.Diagnostic) {
	switch form {
	case formNone:
		return resolvedOperand{mode: ModeImplicit}, nil
	case formAccumulator:
		return resolvedOperand{mode: ModeAccumulator}, nil
	case formImmediate:
		return resolvedOperand{mode: ModeImmediate, value: val}, nil
	case formIndirectY:
		return resolvedOperand{mode: ModeIndirectIndexed, value: val}, nil
	case formIndirectX:
		if mnemonic == "JMP" {
			return resolvedOperand{mode: ModeIndirectAbsoluteX, value: val}, nil
		}
		return resolvedOperand{mode: ModeIndexedIndirect, value: val}, nil
	case formIndirect:
		if supportsMode(mnemonic, ModeIndirect) {
			return resolvedOperand{mode: ModeIndirect, value: val}, nil
		}
		return resolvedOperand{mode: ModeZeroPageIndirect, value: val}, nil
	case formValue:
		if isBranchMnemonic(mnemonic) {
			return resolvedOperand{mode: ModeRelative, value: val}, nil
		}
		return sizedMode(mnemonic, ModeZeroPage, ModeAbsolute, forcedZP, val)
	case formValueX:
		return sizedMode(mnemonic, ModeZeroPageX, ModeAbsoluteX, forcedZP, val)
	case formValueY:
		return sizedMode(mnemonic, ModeZeroPageY, ModeAbsoluteY, forcedZP, val)
	}
	return resolvedOperand{}, errs.New(errs.Position{}, errs.KindParse, "unrecognized operand form for %s", mnemonic)
}

func sizedMode(mnemonic string, narrow, wide Mode, forcedZP bool, val symtab.Expression) (resolvedOperand, *errs.Diagnostic) {
	hasNarrow := supportsMode(mnemonic, narrow)
	hasWide := supportsMode(mnemonic, wide)

	if val.ForwardRef {
		if forcedZP && hasNarrow {
			return resolvedOperand{mode: narrow, value: val, disallowed: true}, nil
		}
		if hasWide {
			return resolvedOperand{mode: wide, value: val}, nil
		}
		if hasNarrow {
			return resolvedOperand{mode: narrow, value: val}, nil
		}
		return resolvedOperand{}, errs.New(errs.Position{}, errs.KindParse, "%s has no matching addressing mode", mnemonic)
	}

	if hasNarrow && fitsZeroPage(val.Value) {
		return resolvedOperand{mode: narrow, value: val}, nil
	}
	if hasWide {
		return resolvedOperand{mode: wide, value: val}, nil
	}
	if hasNarrow {
		return resolvedOperand{mode: narrow, value: val}, nil
	}
	return resolvedOperand{}, errs.New(errs.Position{}, errs.KindParse, "%s has no matching addressing mode", mnemonic)
}

// encodeInstruction resolves mnemonic+operand against the active instruction
// set and returns the machine code bytes. pc is the address the first byte
// will be emitted at, needed for relative-branch range checks.
func encodeInstruction(mnemonic string, operand resolvedOperand, active InstructionSet, pc uint16, pos errs.Position) ([]byte, *errs.Diagnostic) {
	opcodeByte, ok := lookup(mnemonic, operand.mode, active)
	if !ok {
		if _, existsAtAll := opcodeTable[mnemonic]; !existsAtAll {
			return nil, errs.New(pos, errs.KindParse, "unknown mnemonic %s", mnemonic)
		}
		return nil, errs.New(pos, errs.KindParse, "%s does not support this addressing mode under the active %s instruction set", mnemonic, active)
	}

	size := operandSize(operand.mode)
	bytes := make([]byte, 1+size)
	bytes[0] = opcodeByte

	switch operand.mode {
	case ModeRelative:
		if operand.value.ForwardRef {
			// Target not yet known; emit a placeholder. The real offset (and
			// its range check) happens when the symbol resolves and this
			// line is revisited.
			bytes[1] = 0
			break
		}
		target := int32(operand.value.Value)
		offset := target - (int32(pc) + 2)
		if offset < -128 || offset > 127 {
			return nil, errs.New(pos, errs.KindParse, "branch target out of range (%d bytes)", offset)
		}
		bytes[1] = byte(int8(offset))
	case ModeImplicit, ModeAccumulator:
		// no operand bytes
	default:
		if size == 1 {
			bytes[1] = byte(operand.value.Value)
		} else if size == 2 {
			bytes[1] = byte(operand.value.Value)
			bytes[2] = byte(operand.value.Value >> 8)
		}
	}
	return bytes, nil
}
