package ir

import (
	"strings"
	"testing"
)

func TestBlockAssignTmpRoundTrips(t *testing.T) {
	b := NewBlock()
	c := Const{Typ: TypeI64, Bits: 7}
	r := b.AssignTmp(c)

	if len(b.Stmts) != 1 {
		t.Fatalf("want 1 stmt, got %d", len(b.Stmts))
	}
	wr, ok := b.Stmts[0].(WrTmp)
	if !ok {
		t.Fatalf("want WrTmp, got %T", b.Stmts[0])
	}
	if wr.Tmp != r.Tmp {
		t.Fatalf("AssignTmp returned a RdTmp for a different Tmp")
	}
	if b.TypeOf(r.Tmp) != TypeI64 {
		t.Fatalf("want TypeI64, got %s", b.TypeOf(r.Tmp))
	}
}

func TestBlockResetClearsState(t *testing.T) {
	b := NewBlock()
	b.AssignTmp(Const{Typ: TypeI32, Bits: 1})
	b.Append(Exit{Target: 0x1000, Kind: JumpBoring})
	b.Reset()

	if len(b.Stmts) != 0 {
		t.Fatalf("want empty Stmts after Reset, got %d", len(b.Stmts))
	}
	// A fresh NewTmp after Reset must start again from t0.
	tmp := b.NewTmp(TypeI64)
	if tmp != 0 {
		t.Fatalf("want tmp 0 after reset, got %d", tmp)
	}
}

func TestFormatIncludesEveryStatement(t *testing.T) {
	b := NewBlock()
	b.Append(Put{Offset: 8, Val: Const{Typ: TypeI64, Bits: 1}})
	b.Append(MemFence{})
	b.Append(Exit{Target: 0x2000, Kind: JumpYield})

	out := b.Format()
	for _, want := range []string{"PUT(8)", "MFENCE", "0x2000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() output missing %q:\n%s", want, out)
		}
	}
}
