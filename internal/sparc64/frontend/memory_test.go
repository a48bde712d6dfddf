package frontend

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

func TestLDSBSignExtends(t *testing.T) {
	c := lowerOne(t, DecodedInsn{Mnemonic: OpLDSB, Rs1: 8, HasImm: true, Imm: 16, Rd: 10})
	val := resolveTmp(t, c.Block.Stmts, findPut(t, c.Block.Stmts, guest.StateOffsets.R[10]))
	un, ok := val.(ir.Unop)
	if !ok || un.Op != ir.OpSignExtend {
		t.Fatalf("R10 write = %#v, want sign-extension", val)
	}
}

func TestLDUWZeroExtends(t *testing.T) {
	c := lowerOne(t, DecodedInsn{Mnemonic: OpLDUW, Rs1: 8, Rs2: 9, Rd: 10})
	val := resolveTmp(t, c.Block.Stmts, findPut(t, c.Block.Stmts, guest.StateOffsets.R[10]))
	un, ok := val.(ir.Unop)
	if !ok || un.Op != ir.OpZeroExtend {
		t.Fatalf("R10 write = %#v, want zero-extension", val)
	}
}

func TestCASALowersToCASNode(t *testing.T) {
	c := lowerOne(t, DecodedInsn{Mnemonic: OpCASXA, Rs1: 8, Rs2: 9, Rd: 10, ASI: 0x80})
	var cas *ir.CAS
	for _, s := range c.Block.Stmts {
		if v, ok := s.(ir.CAS); ok {
			cas = &v
		}
	}
	if cas == nil {
		t.Fatalf("no CAS statement emitted:\n%s", c.Block.Format())
	}
	// CASXA compares [addr] against rs2 and stores rd's value on a match.
	if g, ok := cas.Expected.(ir.Get); !ok || g.Offset != guest.StateOffsets.R[9] {
		t.Fatalf("CAS expected = %#v, want Get(R9)", cas.Expected)
	}
	if g, ok := cas.New.(ir.Get); !ok || g.Offset != guest.StateOffsets.R[10] {
		t.Fatalf("CAS new = %#v, want Get(R10)", cas.New)
	}
	got := findPut(t, c.Block.Stmts, guest.StateOffsets.R[10])
	if rd, ok := got.(ir.RdTmp); !ok || rd.Tmp != cas.Old {
		t.Fatalf("R10 write = %#v, want the CAS old value", got)
	}
}

func TestCASRejectsNonPrimaryASI(t *testing.T) {
	err := lowerOneErr(t, DecodedInsn{Mnemonic: OpCASA, Rs1: 8, Rs2: 9, Rd: 10, ASI: 0x88})
	if !errors.Is(err, ErrUnsupportedVariant) {
		t.Fatalf("err = %v, want ErrUnsupportedVariant", err)
	}
}

func TestLDSTUBExpectedIsPlainLoad(t *testing.T) {
	c := lowerOne(t, DecodedInsn{Mnemonic: OpLDSTUB, Rs1: 8, Rs2: 9, Rd: 10})
	for _, s := range c.Block.Stmts {
		if cas, ok := s.(ir.CAS); ok {
			exp := resolveTmp(t, c.Block.Stmts, cas.Expected)
			if _, ok := exp.(ir.Load); !ok {
				t.Fatalf("LDSTUB expected slot = %#v, want a plain Load", exp)
			}
			if cst, ok := cas.New.(ir.Const); !ok || cst.Bits != 0xff {
				t.Fatalf("LDSTUB new value = %#v, want Const(0xff)", cas.New)
			}
			return
		}
	}
	t.Fatalf("no CAS statement emitted:\n%s", c.Block.Format())
}

func TestLDBLOCKFRejectsWrongASI(t *testing.T) {
	err := lowerOneErr(t, DecodedInsn{Mnemonic: OpLDBLOCKF, Rs1: 8, Rd: 0, ASI: 0x80})
	if !errors.Is(err, ErrUnsupportedVariant) {
		t.Fatalf("err = %v, want ErrUnsupportedVariant", err)
	}
}

func TestLDBLOCKFEmitsEightDoubleLoads(t *testing.T) {
	c := lowerOne(t, DecodedInsn{Mnemonic: OpLDBLOCKF, Rs1: 8, Rd: 0, ASI: asiBlockPrimary})
	loads := 0
	for _, s := range c.Block.Stmts {
		if w, ok := s.(ir.WrTmp); ok {
			if l, ok := w.Val.(ir.Load); ok && l.Typ == ir.F64 {
				loads++
			}
		}
		if p, ok := s.(ir.Put); ok {
			if l, ok := p.Val.(ir.Load); ok && l.Typ == ir.F64 {
				loads++
			}
		}
	}
	if loads != 8 {
		t.Fatalf("found %d F64 loads, want 8:\n%s", loads, c.Block.Format())
	}
}

// TestLDXFSRWithTEMSet covers the concrete scenario: ldxfsr must route the
// loaded word through the FSR sanity helper, record the note in EMNOTE,
// and emit a conditional side-exit ahead of the FSR field updates.
func TestLDXFSRWithTEMSet(t *testing.T) {
	c := lowerOne(t, DecodedInsn{Mnemonic: OpLDXFSR, Rs1: 8, Rd: 0})

	sawCheck := false
	for _, s := range c.Block.Stmts {
		if w, ok := s.(ir.WrTmp); ok {
			if call, ok := w.Val.(ir.CleanCall); ok && call.Helper == "helpers.CheckFSR" {
				sawCheck = true
			}
		}
	}
	if !sawCheck {
		t.Fatalf("no helpers.CheckFSR call emitted:\n%s", c.Block.Format())
	}

	findPut(t, c.Block.Stmts, guest.StateOffsets.EMNote)

	exitIdx, rdIdx := -1, -1
	for i, s := range c.Block.Stmts {
		if e, ok := s.(ir.Exit); ok && e.Cond != nil {
			exitIdx = i
		}
		if p, ok := s.(ir.Put); ok && p.Offset == guest.StateOffsets.FSRRd {
			rdIdx = i
		}
	}
	if exitIdx == -1 {
		t.Fatalf("no conditional side-exit emitted:\n%s", c.Block.Format())
	}
	if rdIdx != -1 && exitIdx > rdIdx {
		t.Fatalf("side-exit (stmt %d) must precede the FSR.rd update (stmt %d)", exitIdx, rdIdx)
	}

	// The cexc bits land as a COPY thunk with every DEP slot written.
	op := findPut(t, c.Block.Stmts, guest.StateOffsets.FSRCexcOp)
	if cst, ok := op.(ir.Const); !ok || cst.Bits != 0 {
		t.Fatalf("FSRCexcOp = %#v, want the COPY tag", op)
	}
	for _, off := range []int32{
		guest.StateOffsets.FSRCexcDep1H, guest.StateOffsets.FSRCexcDep1L,
		guest.StateOffsets.FSRCexcDep2H, guest.StateOffsets.FSRCexcDep2L,
	} {
		findPut(t, c.Block.Stmts, off)
	}
}

func TestShortFloatLoadWidensIntoDouble(t *testing.T) {
	c := lowerOne(t, DecodedInsn{Mnemonic: OpLDDF, Rs1: 8, Rd: 4, ASI: asiFL8Primary})
	// The byte lands zero-extended in the destination double's two
	// constituent singles; both halves must be written.
	findPut(t, c.Block.Stmts, guest.StateOffsets.F[4])
	findPut(t, c.Block.Stmts, guest.StateOffsets.F[5])
	for _, s := range c.Block.Stmts {
		if w, ok := s.(ir.WrTmp); ok {
			val := w.Val
			if u, isUnop := val.(ir.Unop); isUnop {
				val = u.Arg
			}
			if l, ok := val.(ir.Load); ok {
				if l.Typ != ir.I8 {
					t.Fatalf("short-float load type = %s, want I8", l.Typ)
				}
				return
			}
		}
	}
	t.Fatalf("no load emitted:\n%s", c.Block.Format())
}

func TestSTFSRStoresAssembledWord(t *testing.T) {
	c := lowerOne(t, DecodedInsn{Mnemonic: OpSTXFSR, Rs1: 8, Rd: 0})
	sawEval := false
	for _, s := range c.Block.Stmts {
		if w, ok := s.(ir.WrTmp); ok {
			if call, ok := w.Val.(ir.CleanCall); ok && call.Helper == "fpexc.Evaluate" {
				sawEval = true
			}
		}
	}
	if !sawEval {
		t.Fatalf("stxfsr must evaluate the cexc thunk:\n%s", c.Block.Format())
	}
	for _, s := range c.Block.Stmts {
		if _, ok := s.(ir.Store); ok {
			return
		}
	}
	t.Fatalf("stxfsr emitted no store:\n%s", c.Block.Format())
}
