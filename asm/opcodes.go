package asm

import (
	"fmt"
	"strings"
)

// InstructionSet gates which opcodes are legal at a given point in the
// source. XC upgrades the active set; it never downgrades.
type InstructionSet int

const (
	Set6502 InstructionSet = iota
	Set65C02
	Set65816
)

func (s InstructionSet) String() string {
	switch s {
	case Set6502:
		return "6502"
	case Set65C02:
		return "65C02"
	case Set65816:
		return "65816"
	default:
		return "invalid"
	}
}

// ParseInstructionSet maps a configuration name to its InstructionSet. An
// empty name selects the 6502 baseline.
func ParseInstructionSet(name string) (InstructionSet, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "6502":
		return Set6502, nil
	case "65C02":
		return Set65C02, nil
	case "65816":
		return Set65816, nil
	default:
		return Set6502, fmt.Errorf("unknown instruction set %q (want 6502, 65c02, or 65816)", name)
	}
}

// Mode is an addressing mode. The zero value, ModeImplicit, also covers
// instructions that take no operand at all.
type Mode int

const (
	ModeImplicit Mode = iota
	ModeAccumulator
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirect
	ModeZeroPageIndirect // 65C02/65816 (zp)
	ModeIndexedIndirect  // (zp,X)
	ModeIndirectIndexed  // (zp),Y
	ModeIndirectAbsoluteX // 65C02 (abs,X), used only by JMP
	ModeRelative
)

// operandSize returns how many bytes the operand contributes, beyond the
// one opcode byte, for a given mode.
func operandSize(m Mode) int {
	switch m {
	case ModeImplicit, ModeAccumulator:
		return 0
	case ModeImmediate, ModeZeroPage, ModeZeroPageX, ModeZeroPageY,
		ModeZeroPageIndirect, ModeIndexedIndirect, ModeIndirectIndexed, ModeRelative:
		return 1
	case ModeAbsolute, ModeAbsoluteX, ModeAbsoluteY, ModeIndirect, ModeIndirectAbsoluteX:
		return 2
	default:
		return 0
	}
}

// opcodeEntry is one legal (mnemonic, mode) combination.
type opcodeEntry struct {
	byte byte
	set  InstructionSet
}

// opcodeTable maps mnemonic -> mode -> entry. It is built once at package
// init by layering 65C02 and 65816 additions on top of the base 6502 table,
// mirroring how a second `XC` only ever adds opcodes, never removes them.
var opcodeTable map[string]map[Mode]opcodeEntry

func init() {
	opcodeTable = make(map[string]map[Mode]opcodeEntry)
	for mnemonic, modes := range base6502 {
		entry := make(map[Mode]opcodeEntry, len(modes))
		for mode, b := range modes {
			entry[mode] = opcodeEntry{byte: b, set: Set6502}
		}
		opcodeTable[mnemonic] = entry
	}
	for mnemonic, modes := range additions65C02 {
		entry := opcodeTable[mnemonic]
		if entry == nil {
			entry = make(map[Mode]opcodeEntry, len(modes))
			opcodeTable[mnemonic] = entry
		}
		for mode, b := range modes {
			entry[mode] = opcodeEntry{byte: b, set: Set65C02}
		}
	}
	for mnemonic, modes := range additions65816 {
		entry := opcodeTable[mnemonic]
		if entry == nil {
			entry = make(map[Mode]opcodeEntry, len(modes))
			opcodeTable[mnemonic] = entry
		}
		for mode, b := range modes {
			entry[mode] = opcodeEntry{byte: b, set: Set65816}
		}
	}
}

// lookup returns the opcode byte for mnemonic in mode, and whether it is
// legal under the active instruction set.
func lookup(mnemonic string, mode Mode, active InstructionSet) (byte, bool) {
	modes, ok := opcodeTable[mnemonic]
	if !ok {
		return 0, false
	}
	entry, ok := modes[mode]
	if !ok || entry.set > active {
		return 0, false
	}
	return entry.byte, true
}

// supportsMode reports whether mnemonic has any encoding (under any
// instruction set) for mode, used by operand-form disambiguation before an
// instruction-set check is meaningful.
func supportsMode(mnemonic string, mode Mode) bool {
	modes, ok := opcodeTable[mnemonic]
	if !ok {
		return false
	}
	_, ok = modes[mode]
	return ok
}

// isBranchMnemonic reports whether mnemonic is a relative branch, which
// changes how its lone operand is interpreted (a target address, not a
// zero-page/absolute value).
func isBranchMnemonic(mnemonic string) bool {
	modes, ok := opcodeTable[mnemonic]
	if !ok {
		return false
	}
	_, ok = modes[ModeRelative]
	return ok
}

var base6502 = map[string]map[Mode]byte{
	"ADC": {ModeImmediate: 0x69, ModeZeroPage: 0x65, ModeZeroPageX: 0x75, ModeAbsolute: 0x6D, ModeAbsoluteX: 0x7D, ModeAbsoluteY: 0x79, ModeIndexedIndirect: 0x61, ModeIndirectIndexed: 0x71},
	"AND": {ModeImmediate: 0x29, ModeZeroPage: 0x25, ModeZeroPageX: 0x35, ModeAbsolute: 0x2D, ModeAbsoluteX: 0x3D, ModeAbsoluteY: 0x39, ModeIndexedIndirect: 0x21, ModeIndirectIndexed: 0x31},
	"ASL": {ModeAccumulator: 0x0A, ModeZeroPage: 0x06, ModeZeroPageX: 0x16, ModeAbsolute: 0x0E, ModeAbsoluteX: 0x1E},
	"BCC": {ModeRelative: 0x90},
	"BCS": {ModeRelative: 0xB0},
	"BEQ": {ModeRelative: 0xF0},
	"BIT": {ModeZeroPage: 0x24, ModeAbsolute: 0x2C},
	"BMI": {ModeRelative: 0x30},
	"BNE": {ModeRelative: 0xD0},
	"BPL": {ModeRelative: 0x10},
	"BRK": {ModeImplicit: 0x00},
	"BVC": {ModeRelative: 0x50},
	"BVS": {ModeRelative: 0x70},
	"CLC": {ModeImplicit: 0x18},
	"CLD": {ModeImplicit: 0xD8},
	"CLI": {ModeImplicit: 0x58},
	"CLV": {ModeImplicit: 0xB8},
	"CMP": {ModeImmediate: 0xC9, ModeZeroPage: 0xC5, ModeZeroPageX: 0xD5, ModeAbsolute: 0xCD, ModeAbsoluteX: 0xDD, ModeAbsoluteY: 0xD9, ModeIndexedIndirect: 0xC1, ModeIndirectIndexed: 0xD1},
	"CPX": {ModeImmediate: 0xE0, ModeZeroPage: 0xE4, ModeAbsolute: 0xEC},
	"CPY": {ModeImmediate: 0xC0, ModeZeroPage: 0xC4, ModeAbsolute: 0xCC},
	"DEC": {ModeZeroPage: 0xC6, ModeZeroPageX: 0xD6, ModeAbsolute: 0xCE, ModeAbsoluteX: 0xDE},
	"DEX": {ModeImplicit: 0xCA},
	"DEY": {ModeImplicit: 0x88},
	"EOR": {ModeImmediate: 0x49, ModeZeroPage: 0x45, ModeZeroPageX: 0x55, ModeAbsolute: 0x4D, ModeAbsoluteX: 0x5D, ModeAbsoluteY: 0x59, ModeIndexedIndirect: 0x41, ModeIndirectIndexed: 0x51},
	"INC": {ModeZeroPage: 0xE6, ModeZeroPageX: 0xF6, ModeAbsolute: 0xEE, ModeAbsoluteX: 0xFE},
	"INX": {ModeImplicit: 0xE8},
	"INY": {ModeImplicit: 0xC8},
	"JMP": {ModeAbsolute: 0x4C, ModeIndirect: 0x6C},
	"JSR": {ModeAbsolute: 0x20},
	"LDA": {ModeImmediate: 0xA9, ModeZeroPage: 0xA5, ModeZeroPageX: 0xB5, ModeAbsolute: 0xAD, ModeAbsoluteX: 0xBD, ModeAbsoluteY: 0xB9, ModeIndexedIndirect: 0xA1, ModeIndirectIndexed: 0xB1},
	"LDX": {ModeImmediate: 0xA2, ModeZeroPage: 0xA6, ModeZeroPageY: 0xB6, ModeAbsolute: 0xAE, ModeAbsoluteY: 0xBE},
	"LDY": {ModeImmediate: 0xA0, ModeZeroPage: 0xA4, ModeZeroPageX: 0xB4, ModeAbsolute: 0xAC, ModeAbsoluteX: 0xBC},
	"LSR": {ModeAccumulator: 0x4A, ModeZeroPage: 0x46, ModeZeroPageX: 0x56, ModeAbsolute: 0x4E, ModeAbsoluteX: 0x5E},
	"NOP": {ModeImplicit: 0xEA},
	"ORA": {ModeImmediate: 0x09, ModeZeroPage: 0x05, ModeZeroPageX: 0x15, ModeAbsolute: 0x0D, ModeAbsoluteX: 0x1D, ModeAbsoluteY: 0x19, ModeIndexedIndirect: 0x01, ModeIndirectIndexed: 0x11},
	"PHA": {ModeImplicit: 0x48},
	"PHP": {ModeImplicit: 0x08},
	"PLA": {ModeImplicit: 0x68},
	"PLP": {ModeImplicit: 0x28},
	"ROL": {ModeAccumulator: 0x2A, ModeZeroPage: 0x26, ModeZeroPageX: 0x36, ModeAbsolute: 0x2E, ModeAbsoluteX: 0x3E},
	"ROR": {ModeAccumulator: 0x6A, ModeZeroPage: 0x66, ModeZeroPageX: 0x76, ModeAbsolute: 0x6E, ModeAbsoluteX: 0x7E},
	"RTI": {ModeImplicit: 0x40},
	"RTS": {ModeImplicit: 0x60},
	"SBC": {ModeImmediate: 0xE9, ModeZeroPage: 0xE5, ModeZeroPageX: 0xF5, ModeAbsolute: 0xED, ModeAbsoluteX: 0xFD, ModeAbsoluteY: 0xF9, ModeIndexedIndirect: 0xE1, ModeIndirectIndexed: 0xF1},
	"SEC": {ModeImplicit: 0x38},
	"SED": {ModeImplicit: 0xF8},
	"SEI": {ModeImplicit: 0x78},
	"STA": {ModeZeroPage: 0x85, ModeZeroPageX: 0x95, ModeAbsolute: 0x8D, ModeAbsoluteX: 0x9D, ModeAbsoluteY: 0x99, ModeIndexedIndirect: 0x81, ModeIndirectIndexed: 0x91},
	"STX": {ModeZeroPage: 0x86, ModeZeroPageY: 0x96, ModeAbsolute: 0x8E},
	"STY": {ModeZeroPage: 0x84, ModeZeroPageX: 0x94, ModeAbsolute: 0x8C},
	"TAX": {ModeImplicit: 0xAA},
	"TAY": {ModeImplicit: 0xA8},
	"TSX": {ModeImplicit: 0xBA},
	"TXA": {ModeImplicit: 0x8A},
	"TXS": {ModeImplicit: 0x9A},
	"TYA": {ModeImplicit: 0x98},
}

// additions65C02 layers the Rockwell/WDC 65C02 extensions: new mnemonics
// (PHX/PHY/PLX/PLY/STZ/TRB/TSB/BRA) plus new addressing modes on existing
// ones ((zp) for the accumulator group, accumulator mode for INC/DEC, and
// wider BIT forms).
var additions65C02 = map[string]map[Mode]byte{
	"ADC": {ModeZeroPageIndirect: 0x72},
	"AND": {ModeZeroPageIndirect: 0x32},
	"CMP": {ModeZeroPageIndirect: 0xD2},
	"EOR": {ModeZeroPageIndirect: 0x52},
	"LDA": {ModeZeroPageIndirect: 0xB2},
	"ORA": {ModeZeroPageIndirect: 0x12},
	"SBC": {ModeZeroPageIndirect: 0xF2},
	"STA": {ModeZeroPageIndirect: 0x92},
	"BIT": {ModeImmediate: 0x89, ModeZeroPageX: 0x34, ModeAbsoluteX: 0x3C},
	"INC": {ModeAccumulator: 0x1A},
	"DEC": {ModeAccumulator: 0x3A},
	"JMP": {ModeIndirectAbsoluteX: 0x7C},
	"PHX": {ModeImplicit: 0xDA},
	"PHY": {ModeImplicit: 0x5A},
	"PLX": {ModeImplicit: 0xFA},
	"PLY": {ModeImplicit: 0x7A},
	"STZ": {ModeZeroPage: 0x64, ModeZeroPageX: 0x74, ModeAbsolute: 0x9C, ModeAbsoluteX: 0x9E},
	"TRB": {ModeZeroPage: 0x14, ModeAbsolute: 0x1C},
	"TSB": {ModeZeroPage: 0x04, ModeAbsolute: 0x0C},
	"BRA": {ModeRelative: 0x80},
}

// additions65816 covers the subset of the 65816's native-mode-only
// mnemonics that don't require 24-bit long addressing or the block-move
// operand form. Long (24-bit) addressing modes and block-move operands are
// not encoded.
var additions65816 = map[string]map[Mode]byte{
	"REP": {ModeImmediate: 0xC2},
	"SEP": {ModeImmediate: 0xE2},
	"XCE": {ModeImplicit: 0xFB},
	"PHB": {ModeImplicit: 0x8B},
	"PHD": {ModeImplicit: 0x0B},
	"PHK": {ModeImplicit: 0x4B},
	"PLB": {ModeImplicit: 0xAB},
	"PLD": {ModeImplicit: 0x2B},
	"TCD": {ModeImplicit: 0x5B},
	"TDC": {ModeImplicit: 0x7B},
	"TCS": {ModeImplicit: 0x1B},
	"TSC": {ModeImplicit: 0x3B},
	"RTL": {ModeImplicit: 0x6B},
}
