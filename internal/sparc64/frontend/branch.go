package frontend

import (
	"github.com/sparc64dbt/lift/internal/sparc64/condcode"
	"github.com/sparc64dbt/lift/internal/sparc64/fpexc"
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// branchTarget computes curPC + disp, where disp is the sign-extended
// byte displacement the decoder supplies (already scaled from the word
// displacement), the common PC-relative addressing mode for
// Bicc/BPcc/FBfcc/FBPfcc/CBcond.
func branchTarget(curPC uint64, disp int64) uint64 {
	return uint64(int64(curPC) + disp)
}

// iCondExpr builds the IR boolean for an integer branch condition,
// applying the always/never lift-time shortcut from condcode.Specialize
// before falling back to a full clean-call evaluation.
func (c *Compiler) iCondExpr(cond condcode.ICond) ir.Expr {
	if result, ok := condcode.Specialize(cond); ok {
		return ir.Const{Typ: ir.I8, Bits: result}
	}
	call := ir.CleanCall{
		Helper: "condcode.EvaluateICond",
		Typ:    ir.I8,
		Args: []ir.Expr{
			ir.Const{Typ: ir.I64, Bits: uint64(cond)},
			c.getCCOp(), c.getCCDep1(), c.getCCDep2(), c.getCCNDep(),
		},
	}
	return c.Block.AssignTmp(call)
}

// fCondExpr builds the IR boolean for a floating-point branch condition
// against the selected fcc field.
func (c *Compiler) fCondExpr(cond fpexc.FCond, fccField int) ir.Expr {
	fcc := c.Block.AssignTmp(ir.Binop{
		Op: ir.OpAnd,
		L: c.Block.AssignTmp(ir.Binop{Op: ir.OpShrU, L: ir.Get{Offset: guest.StateOffsets.FSRFcc, Typ: ir.I64}, R: ir.Const{Typ: ir.I64, Bits: uint64(fccBitOffset(fccField))}, Typ: ir.I64}),
		R: ir.Const{Typ: ir.I64, Bits: 3}, Typ: ir.I64,
	})
	call := ir.CleanCall{Helper: "fpexc.EvaluateFCond", Typ: ir.I8, Args: []ir.Expr{
		ir.Const{Typ: ir.I64, Bits: uint64(cond)}, fcc,
	}}
	return c.Block.AssignTmp(call)
}

func fccBitOffset(field int) int {
	if field == 0 {
		return 10
	}
	return 32 + (field-1)*2
}

// lowerBicc/BPcc lower a conditional integer branch, choosing one of the
// three delay-slot patterns based on the annul bit. This
// function only produces the branch's own IR and the pending-state
// updates; the caller (lower.go's dispatcher) is responsible for lifting
// the delay-slot instruction on the next call and then flushing
// pendingExit.
func (c *Compiler) lowerBicc(in DecodedInsn, disp int64) error {
	target := branchTarget(c.PC, disp)
	cond := condcode.ICond(in.Cond)

	if cond&^1 == condcode.CondNIcc {
		if !in.Annul {
			// Branch-never, annul=0: an instruction-prefetch hint. Emit
			// nothing; the delay slot runs normally.
			return nil
		}
		// Branch-never, annul=1: neither the branch nor the delay slot
		// happens; execution resumes two instructions on.
		nextPC := c.PC + 8
		c.pendingNextPC = &nextPC
		c.skipDelaySlot = true
		return nil
	}

	if in.Annul && cond&^1 == condcode.CondAIcc {
		// Unconditional + annul: the delay slot is never executed at all,
		// so the dispatcher must skip lifting it entirely rather than
		// lifting-then-discarding it.
		nextPC := target
		c.pendingNextPC = &nextPC
		c.skipDelaySlot = true
		return nil
	}

	if !in.Annul {
		exit := ir.Exit{Cond: c.iCondExpr(cond), Target: target, Kind: ir.JumpBoring}
		c.pendingExit = exit
		return nil
	}

	// Annulling conditional branch: in-place Exit(not cond, curPC+8)
	// skips the delay slot on not-taken; pendingNextPC carries the taken
	// target for the dispatcher to apply once the delay instruction (or,
	// for unconditional+annul, nothing) has been lifted.
	notCond := c.Block.AssignTmp(ir.Binop{Op: ir.OpCmpEQ, L: c.iCondExpr(cond), R: ir.Const{Typ: ir.I8, Bits: 0}, Typ: ir.I8})
	c.Block.Append(ir.Exit{Cond: notCond, Target: c.PC + 8, Kind: ir.JumpBoring})
	nextPC := target
	c.pendingNextPC = &nextPC
	return nil
}

// lowerBPcc is BPcc's analogue of lowerBicc; the only difference in this
// model is that BPcc's displacement is wider, already folded into disp by
// the external decoder.
func (c *Compiler) lowerBPcc(in DecodedInsn, disp int64) error {
	return c.lowerBicc(in, disp)
}

// lowerFBfcc lowers a floating-point conditional branch using the same
// three delay-slot patterns, keyed on the FP condition table instead of
// the integer one.
func (c *Compiler) lowerFBfcc(in DecodedInsn, disp int64, fccField int) error {
	target := branchTarget(c.PC, disp)
	cond := fpexc.FCond(in.Cond)

	if cond == fpexc.FCondN {
		if !in.Annul {
			return nil
		}
		nextPC := c.PC + 8
		c.pendingNextPC = &nextPC
		c.skipDelaySlot = true
		return nil
	}

	if in.Annul && cond == fpexc.FCondA {
		nextPC := target
		c.pendingNextPC = &nextPC
		c.skipDelaySlot = true
		return nil
	}

	if !in.Annul {
		exit := ir.Exit{Cond: c.fCondExpr(cond, fccField), Target: target, Kind: ir.JumpBoring}
		c.pendingExit = exit
		return nil
	}

	notCond := c.Block.AssignTmp(ir.Binop{Op: ir.OpCmpEQ, L: c.fCondExpr(cond, fccField), R: ir.Const{Typ: ir.I8, Bits: 0}, Typ: ir.I8})
	c.Block.Append(ir.Exit{Cond: notCond, Target: c.PC + 8, Kind: ir.JumpBoring})
	nextPC := target
	c.pendingNextPC = &nextPC
	return nil
}

// lowerCBcond has no delay slot: the comparison and the conditional exit
// are emitted in-line.
func (c *Compiler) lowerCBcond(in DecodedInsn, disp int64) error {
	target := branchTarget(c.PC, disp)
	cond := condcode.ICond(in.Cond)
	left := c.getR(in.Rs1)
	right := c.operand2(in)
	result := c.Block.AssignTmp(ir.Binop{Op: ir.OpSub, L: left, R: right, Typ: ir.I64})
	taken := c.iCondExprFromDirectCompare(cond, left, right, result)
	c.Block.Append(ir.Exit{Cond: taken, Target: target, Kind: ir.JumpBoring})
	return nil
}

// iCondExprFromDirectCompare realizes the SUB-then-E/NE lift-time
// specialization for CBcond, which always compares two fresh operands
// rather than consulting a live thunk.
func (c *Compiler) iCondExprFromDirectCompare(cond condcode.ICond, left, right, sub ir.Expr) ir.Expr {
	switch cond &^ 1 {
	case condcode.CondEIcc:
		return c.Block.AssignTmp(ir.Binop{Op: ir.OpCmpEQ, L: left, R: right, Typ: ir.I8})
	case condcode.CondNEIcc:
		return c.Block.AssignTmp(ir.Binop{Op: ir.OpCmpNE, L: left, R: right, Typ: ir.I8})
	default:
		call := ir.CleanCall{Helper: "condcode.EvaluateICond", Typ: ir.I8, Args: []ir.Expr{
			ir.Const{Typ: ir.I64, Bits: uint64(cond)}, ir.Const{Typ: ir.I64, Bits: uint64(condcode.OpSub)},
			left, right, ir.Const{Typ: ir.I64, Bits: 0},
		}}
		return c.Block.AssignTmp(call)
	}
}

// lowerCall writes the return address to %o7 then behaves like an
// unconditional non-annulling branch.
func (c *Compiler) lowerCall(disp int64) error {
	target := branchTarget(c.PC, disp)
	c.putR(15, ir.Const{Typ: ir.I64, Bits: c.PC}) // %o7 == R15
	exit := ir.Exit{Target: target, Kind: ir.JumpCall}
	c.pendingExit = exit
	return nil
}

// lowerJMPL computes the jump target dynamically, writes the link
// register, and behaves like an unconditional non-annulling branch.
func (c *Compiler) lowerJMPL(in DecodedInsn) error {
	targetExpr := c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: c.getR(in.Rs1), R: c.operand2(in), Typ: ir.I64})
	c.putR(in.Rd, ir.Const{Typ: ir.I64, Bits: c.PC})
	// JMPL's target is dynamic; DisResult carries it via ContinueAt
	// (set by lower.go) rather than ir.Exit.Target, which is a static
	// uint64. A Put to NPC records the dynamic value for the dispatcher.
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.NPC, Val: targetExpr})
	return nil
}

// lowerTrapAlways maps TA imm to a dispatcher-visible stop kind encoding
// which host-OS syscall convention applies. Only TA is accepted; other
// Tcc variants are a lift failure.
func (c *Compiler) lowerTrapAlways(in DecodedInsn, kind StopKind) error {
	if kind == StopFastTrap {
		c.putR(8, ir.Const{Typ: ir.I64, Bits: uint64(in.Imm)}) // spill imm into %o0
	}
	jk := ir.JumpSyscall
	switch kind {
	case StopSyscallGetContext:
		jk = ir.JumpSyscallGetContext
	case StopSyscallSetContext:
		jk = ir.JumpSyscallSetContext
	case StopFastTrap:
		jk = ir.JumpFastTrap
	}
	c.Block.Append(ir.Exit{Target: c.PC + 4, Kind: jk})
	return nil
}
