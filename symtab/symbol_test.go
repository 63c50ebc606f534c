package symtab_test

import (
	"testing"

	"github.com/adamgreen/snapcrackle/errs"
	"github.com/adamgreen/snapcrackle/symtab"
)

func TestAddAndFind(t *testing.T) {
	table := symtab.New(511)
	sym := table.Add("COUNT")
	sym.Value = symtab.Expression{Value: 42, Kind: symtab.KindAbsolute}
	sym.Defined = true

	found := table.Find("COUNT")
	if found == nil {
		t.Fatal("expected to find COUNT")
	}
	if found.Value.Value != 42 {
		t.Errorf("got %d, want 42", found.Value.Value)
	}
}

func TestFindMissingReturnsNil(t *testing.T) {
	table := symtab.New(511)
	if table.Find("NOPE") != nil {
		t.Error("expected nil for undefined symbol")
	}
}

func TestEnumerationIsInsertionOrdered(t *testing.T) {
	table := symtab.New(511)
	names := []string{"ZETA", "ALPHA", "MIDDLE"}
	for _, n := range names {
		table.Add(n)
	}

	table.EnumStart()
	for i := 0; i < len(names); i++ {
		sym := table.EnumNext()
		if sym == nil {
			t.Fatalf("enumeration ended early at index %d", i)
		}
		if sym.Name != names[i] {
			t.Errorf("position %d: got %s, want %s", i, sym.Name, names[i])
		}
	}
	if table.EnumNext() != nil {
		t.Error("expected enumeration to end")
	}
}

func TestLineReferenceAddIsIdempotent(t *testing.T) {
	sym := &symtab.Symbol{Name: "LOOP"}
	pos := errs.Position{Filename: "game.s", Line: 10}
	sym.LineReferenceAdd(pos)
	sym.LineReferenceAdd(pos)
	if len(sym.References) != 1 {
		t.Errorf("got %d references, want 1", len(sym.References))
	}
}

func TestLineReferenceRemove(t *testing.T) {
	sym := &symtab.Symbol{Name: "LOOP"}
	a := errs.Position{Filename: "game.s", Line: 10}
	b := errs.Position{Filename: "game.s", Line: 20}
	sym.LineReferenceAdd(a)
	sym.LineReferenceAdd(b)

	sym.LineReferenceRemove(a)
	if len(sym.References) != 1 || sym.References[0] != b {
		t.Errorf("got %v, want only %v", sym.References, b)
	}
	sym.LineReferenceRemove(a) // absent: no-op
	if len(sym.References) != 1 {
		t.Errorf("removing an absent reference changed the list: %v", sym.References)
	}
}

func TestLineReferenceEnumeration(t *testing.T) {
	sym := &symtab.Symbol{Name: "LOOP"}
	want := []errs.Position{
		{Filename: "game.s", Line: 10},
		{Filename: "game.s", Line: 20},
	}
	for _, p := range want {
		sym.LineReferenceAdd(p)
	}

	sym.LineReferenceEnumStart()
	for i, p := range want {
		got, ok := sym.LineReferenceEnumNext()
		if !ok || got != p {
			t.Fatalf("reference %d: got %v ok=%v, want %v", i, got, ok, p)
		}
	}
	if _, ok := sym.LineReferenceEnumNext(); ok {
		t.Error("expected enumeration to end")
	}
}

func TestLocalLabelScopeQualification(t *testing.T) {
	var scope symtab.LocalLabelScope
	scope.SetGlobal("LOOP")
	if got := scope.Qualify(":AGAIN"); got != "LOOP:AGAIN" {
		t.Errorf("got %q, want LOOP:AGAIN", got)
	}

	scope.SetGlobal("NEXTLOOP")
	if got := scope.Qualify(":AGAIN"); got != "NEXTLOOP:AGAIN" {
		t.Errorf("got %q, want NEXTLOOP:AGAIN", got)
	}
}

func TestIsLocal(t *testing.T) {
	if !symtab.IsLocal(":AGAIN") {
		t.Error("expected :AGAIN to be local")
	}
	if symtab.IsLocal("AGAIN") {
		t.Error("expected AGAIN to not be local")
	}
}
