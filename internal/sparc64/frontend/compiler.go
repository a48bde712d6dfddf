package frontend

import (
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/helpers"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// NextAction is the dispatcher's continuation instruction, carried on
// DisResult.
type NextAction int

const (
	ActionContinue NextAction = iota
	ActionStopHere
	ActionBackUp
)

// StopKind further describes an ActionStopHere/ActionBackUp result.
type StopKind int

const (
	StopNone StopKind = iota
	StopNoDecode
	StopClientRequest
	StopNoRedir
	StopInvalidateICache
	StopSyscall
	StopSyscallGetContext
	StopSyscallSetContext
	StopFastTrap
	StopYield
)

// DisResult is the lifter's per-instruction result.
type DisResult struct {
	Length     int // 4 or 8, or 0 on no-decode
	NextAction NextAction
	Kind       StopKind
	ContinueAt uint64
	HasContinueAt bool
}

// Compiler is the per-block lowering session: the IR sink, the current
// guest PC, and the two cross-instruction stashed slots (pending_exit_stmt,
// pending_next_pc). One struct threads cursor state through the lowering
// of a single basic block, generalized to this package's flat per-block
// IR instead of an SSA builder.
type Compiler struct {
	Block *ir.Block
	Dec   Decoder
	Caps  helpers.Capabilities

	// InjectIR, when set, is the thread-local hook the inject-ir magic
	// sequence splices into the current block.
	InjectIR func(*ir.Block)

	// PC/NPC mirror the values the IR's Get(offPC)/Get(offNPC) would read
	// at block entry; the dispatcher advances them between Lower calls.
	PC  uint64
	NPC uint64

	pendingExit   ir.Stmt
	pendingNextPC *uint64

	// skipDelaySlot marks the unconditional-and-annulled case (e.g. BA,a):
	// the delay slot is never executed, so the dispatcher must not lift it
	// at all before jumping to pendingNextPC.
	skipDelaySlot bool

	// pendingDynamicJump marks JMPL: the target was already written to NPC
	// when the instruction was lowered, but its delay slot still needs to
	// be lifted before the block ends.
	pendingDynamicJump bool
}

// NewCompiler starts a fresh lowering session. The two cross-instruction
// slots must be clear on entry; NewCompiler always starts clear, so
// staleness can only arise from reusing a Compiler across blocks without
// calling Reset — callers check with CheckClean before starting a new
// block.
func NewCompiler(dec Decoder, caps helpers.Capabilities, pc uint64) *Compiler {
	return &Compiler{
		Block: ir.NewBlock(),
		Dec:   dec,
		Caps:  caps,
		PC:    pc,
		NPC:   pc + 4,
	}
}

// Reset clears the compiler for reuse on the next block, matching
// ir.Block's own Reset idiom.
func (c *Compiler) Reset(pc uint64) {
	c.Block.Reset()
	c.PC = pc
	c.NPC = pc + 4
	c.pendingExit = nil
	c.pendingNextPC = nil
	c.skipDelaySlot = false
	c.pendingDynamicJump = false
}

// CheckClean reports whether the cross-instruction slots are clear, the
// precondition for starting a new lift session. A prior block leaving
// them set is a defect in the caller, not a recoverable decode error.
func (c *Compiler) CheckClean() error {
	if c.pendingExit != nil || c.pendingNextPC != nil || c.skipDelaySlot || c.pendingDynamicJump {
		return ErrStalePendingState
	}
	return nil
}

// --- small conveniences over ir.Block, parameterized by guest.Offsets ---

func (c *Compiler) getR(n int) ir.Expr {
	if n == 0 {
		return ir.Const{Typ: ir.I64, Bits: 0}
	}
	return ir.Get{Offset: guest.StateOffsets.R[n], Typ: ir.I64}
}

func (c *Compiler) putR(n int, val ir.Expr) {
	if n == 0 {
		return // R0 writes are discarded, invariant 1
	}
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.R[n], Val: val})
}

func (c *Compiler) getF(n int) ir.Expr {
	return ir.Get{Offset: guest.StateOffsets.F[n], Typ: ir.F32}
}

func (c *Compiler) putF(n int, val ir.Expr) {
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.F[n], Val: val})
	c.setFPRSDirty()
}

// setFPRSDirty models the set_fprs_dirty side-effect for FP loads/writes:
// flip FPRS to mark the upper/lower FP register banks dirty while keeping
// the enable bit on.
func (c *Compiler) setFPRSDirty() {
	cur := ir.Get{Offset: guest.StateOffsets.FPRS, Typ: ir.I64}
	// FPRS.DL is 0x1 and FPRS.DU is 0x2.
	dirty := uint64(guest.FPRSFEF | 0x2 | 0x1)
	rd := c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, Typ: ir.I64, L: cur, R: ir.Const{Typ: ir.I64, Bits: dirty}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FPRS, Val: rd})
}

func (c *Compiler) getCCOp() ir.Expr   { return ir.Get{Offset: guest.StateOffsets.CCOp, Typ: ir.I64} }
func (c *Compiler) getCCDep1() ir.Expr { return ir.Get{Offset: guest.StateOffsets.CCDep1, Typ: ir.I64} }
func (c *Compiler) getCCDep2() ir.Expr { return ir.Get{Offset: guest.StateOffsets.CCDep2, Typ: ir.I64} }
func (c *Compiler) getCCNDep() ir.Expr { return ir.Get{Offset: guest.StateOffsets.CCNDep, Typ: ir.I64} }

func yOffset() int32 { return guest.StateOffsets.Y }

func (c *Compiler) putCC(op uint64, dep1, dep2, ndep ir.Expr) {
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.CCOp, Val: ir.Const{Typ: ir.I64, Bits: op}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.CCDep1, Val: dep1})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.CCDep2, Val: dep2})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.CCNDep, Val: ndep})
}

func (c *Compiler) putPC(pc, npc uint64) {
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.PC, Val: ir.Const{Typ: ir.I64, Bits: pc}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.NPC, Val: ir.Const{Typ: ir.I64, Bits: npc}})
}
