package frontend

import (
	"github.com/sparc64dbt/lift/internal/sparc64/condcode"
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// flushLineLen is the cache-line granularity FLUSH invalidates, matching
// the original's sparc64 back-end treatment of FLUSH as a single
// instruction-cache-line invalidate rather than an arbitrary range.
const flushLineLen = 8

// lowerFlush sets the cache-maintenance window to the flushed address and
// stops the block with the invalidate-icache kind so the dispatcher can
// act on CMSTART/CMLEN.
func (c *Compiler) lowerFlush(in DecodedInsn) (DisResult, error) {
	addr := c.effectiveAddr(in)
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.CMStart, Val: addr})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.CMLen, Val: ir.Const{Typ: ir.I64, Bits: flushLineLen}})
	c.Block.Append(ir.Exit{Target: c.PC + 4, Kind: ir.JumpInvalidateICache})
	return DisResult{Length: 4, NextAction: ActionStopHere, Kind: StopInvalidateICache}, nil
}

// lowerMembar lowers MEMBAR to a single unconditional fence, deliberately
// not distinguishing the membar mask's individual ordering bits: a full
// memory-ordering model is out of scope.
func (c *Compiler) lowerMembar() error {
	c.Block.Append(ir.MemFence{})
	return nil
}

// lowerPause is an unconditional exit back to the scheduler.
func (c *Compiler) lowerPause() error {
	c.Block.Append(ir.Exit{Target: c.PC + 4, Kind: ir.JumpYield})
	return nil
}

// lowerNop and lowerFlushW are no-ops at this lift's level of fidelity:
// FLUSHW's window-spill behavior is only observable through traps this
// frontend doesn't model.
func (c *Compiler) lowerNop() error    { return nil }
func (c *Compiler) lowerFlushW() error { return nil }

// wrValue computes the value a WR-form ancillary move installs: rs1 XOR
// the second operand, per the V9 WRasr definition.
func (c *Compiler) wrValue(in DecodedInsn) ir.Expr {
	return c.Block.AssignTmp(ir.Binop{Op: ir.OpXor, L: c.getR(in.Rs1), R: c.operand2(in), Typ: ir.I64})
}

// lowerASR handles the user-visible ancillary-state-register moves. Reads
// of %ccr materialize the lazy thunk through the clean CCR helper; writes
// to %ccr collapse it back to a COPY tag. %fprs writes keep the enable
// bit forced on. %tick/%stick reads go through the clean clock helpers;
// privileged ancillary state beyond the read-clock registers is out of
// scope and never reaches this handler.
func (c *Compiler) lowerASR(in DecodedInsn) error {
	switch in.Mnemonic {
	case OpRDY:
		c.putR(in.Rd, ir.Get{Offset: guest.StateOffsets.Y, Typ: ir.I64})
		return nil
	case OpWRY:
		val := c.wrValue(in)
		low := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend,
			Arg: c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: val, Typ: ir.I32}), Typ: ir.I64})
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.Y, Val: low})
		return nil

	case OpRDCCR:
		ccr := c.Block.AssignTmp(ir.CleanCall{
			Helper: "condcode.EvaluateCCR",
			Typ:    ir.I64,
			Args:   []ir.Expr{c.getCCOp(), c.getCCDep1(), c.getCCDep2(), c.getCCNDep()},
		})
		c.putR(in.Rd, ccr)
		return nil
	case OpWRCCR:
		val := c.wrValue(in)
		masked := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: val, R: ir.Const{Typ: ir.I64, Bits: 0xff}, Typ: ir.I64})
		c.putCC(uint64(condcode.OpCopy), masked, ir.Const{Typ: ir.I64, Bits: 0}, ir.Const{Typ: ir.I64, Bits: 0})
		return nil

	case OpRDASI:
		c.putR(in.Rd, ir.Get{Offset: guest.StateOffsets.ASI, Typ: ir.I64})
		return nil
	case OpWRASI:
		val := c.wrValue(in)
		masked := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: val, R: ir.Const{Typ: ir.I64, Bits: 0xff}, Typ: ir.I64})
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.ASI, Val: masked})
		return nil

	case OpRDGSR:
		mask := c.Block.AssignTmp(ir.Binop{Op: ir.OpShl,
			L: ir.Get{Offset: guest.StateOffsets.GSRMask, Typ: ir.I64},
			R: ir.Const{Typ: ir.I64, Bits: 32}, Typ: ir.I64})
		gsr := c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: mask,
			R: ir.Get{Offset: guest.StateOffsets.GSRAlign, Typ: ir.I64}, Typ: ir.I64})
		c.putR(in.Rd, gsr)
		return nil
	case OpWRGSR:
		val := c.wrValue(in)
		align := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: val, R: ir.Const{Typ: ir.I64, Bits: 0x7}, Typ: ir.I64})
		mask := c.Block.AssignTmp(ir.Binop{Op: ir.OpShrU, L: val, R: ir.Const{Typ: ir.I64, Bits: 32}, Typ: ir.I64})
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.GSRAlign, Val: align})
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.GSRMask, Val: mask})
		return nil

	case OpRDFPRS:
		c.putR(in.Rd, ir.Get{Offset: guest.StateOffsets.FPRS, Typ: ir.I64})
		return nil
	case OpWRFPRS:
		val := c.wrValue(in)
		forced := c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: val, R: ir.Const{Typ: ir.I64, Bits: guest.FPRSFEF}, Typ: ir.I64})
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.FPRS, Val: forced})
		return nil

	case OpRDTICK:
		tick := c.Block.AssignTmp(ir.CleanCall{Helper: "helpers.ReadTick", Typ: ir.I64})
		c.putR(in.Rd, tick)
		return nil
	case OpRDSTICK:
		stick := c.Block.AssignTmp(ir.CleanCall{Helper: "helpers.ReadStick", Typ: ir.I64})
		c.putR(in.Rd, stick)
		return nil

	case OpRDPC:
		c.putR(in.Rd, ir.Const{Typ: ir.I64, Bits: c.PC})
		return nil

	default:
		return wrap(ErrNoDecode, "lowerASR: unhandled mnemonic %d", in.Mnemonic)
	}
}
