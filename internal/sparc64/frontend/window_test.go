package frontend

import (
	"testing"

	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/helpers"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// tinyInterp executes the narrow slice of IR that SAVE/RESTORE ever
// produce (Const, Get, RdTmp, Binop(Add), WrTmp, Put, Store, Load,
// MemFence) against flat register/memory maps, so TestSaveRestoreRoundTrip
// can check the actual round-trip values the invariant demands
// rather than only the IR's shape.
type tinyInterp struct {
	regs map[int32]uint64
	tmps map[ir.Tmp]uint64
	mem  map[uint64]uint64
}

func newTinyInterp(regs map[int32]uint64) *tinyInterp {
	return &tinyInterp{regs: regs, tmps: map[ir.Tmp]uint64{}, mem: map[uint64]uint64{}}
}

func (in *tinyInterp) eval(e ir.Expr) uint64 {
	switch v := e.(type) {
	case ir.Const:
		return v.Bits
	case ir.Get:
		return in.regs[v.Offset]
	case ir.RdTmp:
		return in.tmps[v.Tmp]
	case ir.Load:
		return in.mem[in.eval(v.Addr)]
	case ir.Binop:
		if v.Op != ir.OpAdd {
			panic("tinyInterp: unsupported op")
		}
		return in.eval(v.L) + in.eval(v.R)
	default:
		panic("tinyInterp: unsupported expr")
	}
}

func (in *tinyInterp) run(stmts []ir.Stmt) {
	for _, s := range stmts {
		switch v := s.(type) {
		case ir.WrTmp:
			in.tmps[v.Tmp] = in.eval(v.Val)
		case ir.Put:
			in.regs[v.Offset] = in.eval(v.Val)
		case ir.Store:
			in.mem[in.eval(v.Addr)] = in.eval(v.Val)
		case ir.MemFence:
			// no-op for this interpreter
		default:
			panic("tinyInterp: unsupported stmt")
		}
	}
}

// TestSaveRestoreRoundTrip covers the concrete scenario: SAVE then
// RESTORE with no intervening stack mutation must restore all 24
// windowed register slots (O0-7, L0-7, I0-7) to their pre-SAVE values.
func TestSaveRestoreRoundTrip(t *testing.T) {
	regs := map[int32]uint64{}
	const sp = 0x2000
	regs[guest.StateOffsets.R[14]] = sp // %sp
	want := map[int]uint64{}
	for i := 16; i < 32; i++ {
		v := uint64(0xE000_0000_0000_0000) | uint64(i)
		regs[guest.StateOffsets.R[i]] = v
		want[i] = v
	}
	for i := 8; i < 16; i++ {
		v := uint64(0xC000_0000_0000_0000) | uint64(i)
		regs[guest.StateOffsets.R[i]] = v
		want[i] = v
	}

	const saveWord = 0x9DE3BF50  // save %sp,-176,%sp (real V9 encoding)
	const restoreWord = 0x81E80000 // restore

	dec := newFakeDecoder().
		add(saveWord, DecodedInsn{Mnemonic: OpSAVE, Rs1: 14, HasImm: true, Imm: -176, Rd: 14}).
		add(restoreWord, DecodedInsn{Mnemonic: OpRESTORE, Rs1: 0, Rs2: 0, Rd: 0})

	c := NewCompiler(dec, helpers.Capabilities(0), 0x4000)
	if _, err := c.Lower(saveWord, 0); err != nil {
		t.Fatalf("SAVE Lower: %v", err)
	}
	saveStmts := append([]ir.Stmt(nil), c.Block.Stmts...)

	c.Reset(0x4004)
	if _, err := c.Lower(restoreWord, 0); err != nil {
		t.Fatalf("RESTORE Lower: %v", err)
	}
	restoreStmts := c.Block.Stmts

	interp := newTinyInterp(regs)
	interp.run(saveStmts)
	interp.run(restoreStmts)

	for i := 8; i < 32; i++ {
		got := interp.regs[guest.StateOffsets.R[i]]
		if got != want[i] {
			t.Fatalf("R%d after save/restore = %#x, want %#x (pre-SAVE value)", i, got, want[i])
		}
	}
}
