package lineparse_test

import (
	"testing"

	"github.com/adamgreen/snapcrackle/lineparse"
)

func TestLabelOpcodeOperand(t *testing.T) {
	p := lineparse.Parse("LOOP  LDA $C008 ; read keyboard")
	if p.Label.String() != "LOOP" {
		t.Errorf("label = %q, want LOOP", p.Label.String())
	}
	if p.Opcode.String() != "LDA" {
		t.Errorf("opcode = %q, want LDA", p.Opcode.String())
	}
	if p.Operand.String() != "$C008" {
		t.Errorf("operand = %q, want $C008", p.Operand.String())
	}
	if p.Comment.String() != "; read keyboard" {
		t.Errorf("comment = %q", p.Comment.String())
	}
}

func TestNoLabel(t *testing.T) {
	p := lineparse.Parse("        DEX")
	if !p.Label.Empty() {
		t.Errorf("expected no label, got %q", p.Label.String())
	}
	if p.Opcode.String() != "DEX" {
		t.Errorf("opcode = %q, want DEX", p.Opcode.String())
	}
}

func TestLocalLabel(t *testing.T) {
	p := lineparse.Parse(":AGAIN DEY")
	if p.Label.String() != ":AGAIN" {
		t.Errorf("label = %q, want :AGAIN", p.Label.String())
	}
}

func TestFullLineCommentStar(t *testing.T) {
	p := lineparse.Parse("* this is a comment")
	if !p.FullLineComment {
		t.Error("expected full line comment")
	}
	if !p.Opcode.Empty() || !p.Operand.Empty() {
		t.Error("expected empty opcode/operand on comment line")
	}
}

func TestFullLineCommentSemicolon(t *testing.T) {
	p := lineparse.Parse("; just a note")
	if !p.FullLineComment {
		t.Error("expected full line comment")
	}
}

func TestEquDirective(t *testing.T) {
	p := lineparse.Parse("LABEL EQU $FFFF")
	if p.Label.String() != "LABEL" {
		t.Errorf("label = %q", p.Label.String())
	}
	if p.Opcode.String() != "EQU" {
		t.Errorf("opcode = %q", p.Opcode.String())
	}
	if p.Operand.String() != "$FFFF" {
		t.Errorf("operand = %q", p.Operand.String())
	}
}

func TestIndentationRecordsOperandColumn(t *testing.T) {
	p := lineparse.Parse("LOOP  LDA $C008")
	if p.Indentation != 10 {
		t.Errorf("indentation = %d, want 10", p.Indentation)
	}
}

func TestEmptyLine(t *testing.T) {
	p := lineparse.Parse("")
	if !p.Label.Empty() || !p.Opcode.Empty() || !p.Operand.Empty() {
		t.Error("expected all columns empty for blank line")
	}
}
