package frontend

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/sparc64dbt/lift/internal/sparc64/condcode"
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/helpers"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// TestConditionalBranchDelaySlotOrdering checks the non-annulling
// pattern: the delay-slot instruction's side effects must precede the
// branch's Exit in the emitted statement order.
func TestConditionalBranchDelaySlotOrdering(t *testing.T) {
	const beWord = 0x02800004  // be 0x10
	const addWord = 0x96022001 // add %o0,1,%o3

	dec := newFakeDecoder().
		add(beWord, DecodedInsn{Mnemonic: OpBicc, Cond: uint64(condcode.CondEIcc), Imm: 0x10}).
		add(addWord, DecodedInsn{Mnemonic: OpADD, Rs1: 8, HasImm: true, Imm: 1, Rd: 11})

	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)

	res1, err := c.Lower(beWord, 0)
	if err != nil {
		t.Fatalf("branch Lower: %v", err)
	}
	if res1.NextAction != ActionContinue {
		t.Fatalf("branch NextAction = %v, want ActionContinue", res1.NextAction)
	}
	if countExits(c.Block.Stmts) != 0 {
		t.Fatalf("the branch's exit must be stashed, not emitted:\n%s", c.Block.Format())
	}

	res2, err := c.Lower(addWord, 0)
	if err != nil {
		t.Fatalf("delay-slot Lower: %v", err)
	}
	if res2.NextAction != ActionStopHere {
		t.Fatalf("delay-slot NextAction = %v, want ActionStopHere", res2.NextAction)
	}

	exitIdx, putIdx := -1, -1
	for i, s := range c.Block.Stmts {
		if _, ok := s.(ir.Exit); ok {
			exitIdx = i
		}
		if p, ok := s.(ir.Put); ok && p.Offset == guest.StateOffsets.R[11] {
			putIdx = i
		}
	}
	if putIdx == -1 || exitIdx == -1 {
		t.Fatalf("missing delay-slot write or exit:\n%s", c.Block.Format())
	}
	if putIdx > exitIdx {
		t.Fatalf("delay-slot write (stmt %d) must precede the branch exit (stmt %d)", putIdx, exitIdx)
	}
	exit := c.Block.Stmts[exitIdx].(ir.Exit)
	if exit.Cond == nil || exit.Target != 0x1010 {
		t.Fatalf("exit = %#v, want conditional to 0x1010", exit)
	}
}

// TestAnnulledConditionalBranch checks the annul=1 conditional pattern:
// an in-place Exit on the inverted condition to curPC+8 ahead of the
// delay slot, then an unconditional exit to the target after it.
func TestAnnulledConditionalBranch(t *testing.T) {
	const bneWord = 0x32800004 // bne,a +0x10
	const addWord = 0x96022001

	dec := newFakeDecoder().
		add(bneWord, DecodedInsn{Mnemonic: OpBicc, Cond: uint64(condcode.CondNEIcc), Annul: true, Imm: 0x10}).
		add(addWord, DecodedInsn{Mnemonic: OpADD, Rs1: 8, HasImm: true, Imm: 1, Rd: 11})

	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	if _, err := c.Lower(bneWord, 0); err != nil {
		t.Fatalf("branch Lower: %v", err)
	}

	skipExit := -1
	for i, s := range c.Block.Stmts {
		if e, ok := s.(ir.Exit); ok && e.Cond != nil && e.Target == 0x1008 {
			skipExit = i
		}
	}
	if skipExit == -1 {
		t.Fatalf("no in-place skip exit to curPC+8:\n%s", c.Block.Format())
	}

	res, err := c.Lower(addWord, 0)
	if err != nil {
		t.Fatalf("delay-slot Lower: %v", err)
	}
	if res.NextAction != ActionStopHere {
		t.Fatalf("NextAction = %v, want ActionStopHere", res.NextAction)
	}
	if !res.HasContinueAt || res.ContinueAt != 0x1010 {
		t.Fatalf("ContinueAt = (%v,%#x), want (true,0x1010)", res.HasContinueAt, res.ContinueAt)
	}
	last := c.Block.Stmts[len(c.Block.Stmts)-1].(ir.Exit)
	if last.Cond != nil || last.Target != 0x1010 {
		t.Fatalf("trailing exit = %#v, want unconditional to 0x1010", last)
	}
}

// TestBranchNeverPlain checks that bn with annul=0 is a prefetch hint:
// nothing emitted, the delay slot runs as a normal instruction.
func TestBranchNeverPlain(t *testing.T) {
	const bnWord = 0x00800004
	dec := newFakeDecoder().
		add(bnWord, DecodedInsn{Mnemonic: OpBicc, Cond: uint64(condcode.CondNIcc), Imm: 0x10})
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	res, err := c.Lower(bnWord, 0)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.NextAction != ActionContinue || len(c.Block.Stmts) != 0 || c.hasPendingDelaySlot() {
		t.Fatalf("bn must emit nothing and leave no pending state")
	}
}

// TestBranchNeverAnnulled checks that bn,a executes neither the branch
// nor the delay slot: the block resumes two instructions on.
func TestBranchNeverAnnulled(t *testing.T) {
	const bnaWord = 0x20800004
	dec := newFakeDecoder().
		add(bnaWord, DecodedInsn{Mnemonic: OpBicc, Cond: uint64(condcode.CondNIcc), Annul: true, Imm: 0x10})
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	if _, err := c.Lower(bnaWord, 0); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	res, err := c.Lower(0xdeadbeef, 0) // the skipped slot is never decoded
	if err != nil {
		t.Fatalf("skip Lower: %v", err)
	}
	exit := c.Block.Stmts[len(c.Block.Stmts)-1].(ir.Exit)
	if exit.Target != 0x1008 {
		t.Fatalf("exit target = %#x, want 0x1008 (fall past the annulled slot)", exit.Target)
	}
	if !res.HasContinueAt || res.ContinueAt != 0x1008 {
		t.Fatalf("ContinueAt = (%v,%#x), want (true,0x1008)", res.HasContinueAt, res.ContinueAt)
	}
}

// TestCBcondHasNoDelaySlot: the comparison and conditional exit are
// emitted in-line and the block stops at once.
func TestCBcondHasNoDelaySlot(t *testing.T) {
	const word = 0x12c02004
	dec := newFakeDecoder().
		add(word, DecodedInsn{Mnemonic: OpCBcond, Cond: uint64(condcode.CondEIcc), Rs1: 8, Rs2: 9, Imm: 0x10})
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	res, err := c.Lower(word, 0)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.NextAction != ActionStopHere {
		t.Fatalf("NextAction = %v, want ActionStopHere", res.NextAction)
	}
	if c.hasPendingDelaySlot() {
		t.Fatal("CBcond must leave no pending delay-slot state")
	}
	if countExits(c.Block.Stmts) != 1 {
		t.Fatalf("want exactly one in-line exit:\n%s", c.Block.Format())
	}
}

// TestCallWritesReturnAddress: CALL stores its own PC into %o7 and then
// behaves like a non-annulling unconditional branch.
func TestCallWritesReturnAddress(t *testing.T) {
	const callWord = 0x40000004
	const nopWord = 0x01000000
	dec := newFakeDecoder().
		add(callWord, DecodedInsn{Mnemonic: OpCALL, Imm: 0x10}).
		add(nopWord, DecodedInsn{Mnemonic: OpNOP})
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	if _, err := c.Lower(callWord, 0); err != nil {
		t.Fatalf("call Lower: %v", err)
	}
	o7 := findPut(t, c.Block.Stmts, guest.StateOffsets.R[15])
	if cst, ok := o7.(ir.Const); !ok || cst.Bits != 0x1000 {
		t.Fatalf("%%o7 = %#v, want Const(0x1000)", o7)
	}
	res, err := c.Lower(nopWord, 0)
	if err != nil {
		t.Fatalf("delay Lower: %v", err)
	}
	if res.NextAction != ActionStopHere {
		t.Fatalf("NextAction = %v, want ActionStopHere", res.NextAction)
	}
	exit := c.Block.Stmts[len(c.Block.Stmts)-1].(ir.Exit)
	if exit.Kind != ir.JumpCall || exit.Target != 0x1010 {
		t.Fatalf("exit = %#v, want call-kind to 0x1010", exit)
	}
}

// TestJMPLDynamicTarget: the register target is written to NPC during the
// jmpl itself and the block stops after its delay slot.
func TestJMPLDynamicTarget(t *testing.T) {
	const jmplWord = 0x81c3e008
	const nopWord = 0x01000000
	dec := newFakeDecoder().
		add(jmplWord, DecodedInsn{Mnemonic: OpJMPL, Rs1: 15, HasImm: true, Imm: 8, Rd: 0}).
		add(nopWord, DecodedInsn{Mnemonic: OpNOP})
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	if _, err := c.Lower(jmplWord, 0); err != nil {
		t.Fatalf("jmpl Lower: %v", err)
	}
	npc := resolveTmp(t, c.Block.Stmts, findPut(t, c.Block.Stmts, guest.StateOffsets.NPC))
	bin, ok := npc.(ir.Binop)
	if !ok || bin.Op != ir.OpAdd {
		t.Fatalf("NPC write = %#v, want rs1+imm", npc)
	}
	res, err := c.Lower(nopWord, 0)
	if err != nil {
		t.Fatalf("delay Lower: %v", err)
	}
	if res.NextAction != ActionStopHere {
		t.Fatalf("NextAction = %v, want ActionStopHere", res.NextAction)
	}
}

// TestTrapAlwaysStopsWithSyscallKind: TA maps to the dispatcher-visible
// syscall stop kinds; other Tcc variants never reach this path (the
// decoder rejects them).
func TestTrapAlwaysStopsWithSyscallKind(t *testing.T) {
	const taWord = 0x91d02010
	dec := newFakeDecoder().
		add(taWord, DecodedInsn{Mnemonic: OpTA, Imm: 0x10})
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	res, err := c.Lower(taWord, 0)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.NextAction != ActionStopHere || res.Kind != StopSyscall {
		t.Fatalf("got (%v,%v), want (ActionStopHere,StopSyscall)", res.NextAction, res.Kind)
	}
}

// TestUnrecognizedBacksUp: a decoder-flagged recognized-but-unimplemented
// instruction emits the Unrecognized marker and backs up to the
// instruction boundary for the native-escape path.
func TestUnrecognizedBacksUp(t *testing.T) {
	const word = 0xaabbccdd
	dec := newFakeDecoder().
		add(word, DecodedInsn{Mnemonic: MnemonicInvalid, RecognizedButUnimplemented: true})
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	res, err := c.Lower(word, 0)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.Length != 0 || res.NextAction != ActionBackUp {
		t.Fatalf("got (len=%d,%v), want (0,ActionBackUp)", res.Length, res.NextAction)
	}
	un, ok := c.Block.Stmts[len(c.Block.Stmts)-1].(ir.Unrecognized)
	if !ok || un.RawWord != word {
		t.Fatalf("trailing stmt = %#v, want Unrecognized(%#x)", c.Block.Stmts[len(c.Block.Stmts)-1], uint32(word))
	}
}

// TestNoDecodeFails: an unknown word produces the no-decode stop result
// and a matchable sentinel.
func TestNoDecodeFails(t *testing.T) {
	c := NewCompiler(newFakeDecoder(), helpers.Capabilities(0), 0x1000)
	res, err := c.Lower(0x12345678, 0)
	if !errors.Is(err, ErrNoDecode) {
		t.Fatalf("err = %v, want ErrNoDecode", err)
	}
	if res.Length != 0 || res.NextAction != ActionStopHere || res.Kind != StopNoDecode {
		t.Fatalf("got %+v, want a no-decode stop result", res)
	}
}
