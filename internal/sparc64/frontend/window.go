package frontend

import (
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// oldWindowOperands snapshots rs1 and the second operand into temporaries
// before any window registers move: the rd write happens against the new
// window, but its inputs are defined to be read from the old one.
func (c *Compiler) oldWindowOperands(in DecodedInsn) (rs1, rs2 ir.Expr) {
	rs1 = c.Block.AssignTmp(c.getR(in.Rs1))
	if in.HasImm {
		return rs1, ir.Const{Typ: ir.I64, Bits: uint64(in.Imm)}
	}
	return rs1, c.Block.AssignTmp(c.getR(in.Rs2))
}

// lowerSave emulates the spill half of the windowed-register-file model:
// store %l0..%l7,%i0..%i7 to the stack frame, copy %o0..%o7 into
// %i0..%i7, then compute rd with the pre-spill rs1/rs2.
func (c *Compiler) lowerSave(in DecodedInsn) error {
	oldRs1, oldRs2 := c.oldWindowOperands(in)

	sp := c.Block.AssignTmp(c.getR(14)) // %o6 == %sp
	for i := 0; i < 8; i++ {
		addr := c.frameSlotAddr(sp, i)
		c.Block.Append(ir.Store{Addr: addr, Val: c.getR(16 + i)}) // %l0..%l7
	}
	for i := 0; i < 8; i++ {
		addr := c.frameSlotAddr(sp, 8+i)
		c.Block.Append(ir.Store{Addr: addr, Val: c.getR(24 + i)}) // %i0..%i7
	}

	for i := 0; i < 8; i++ {
		c.putR(24+i, c.getR(8+i)) // %i[i] = %o[i]
	}

	result := c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: oldRs1, R: oldRs2, Typ: ir.I64})
	c.putR(in.Rd, result)
	c.Block.Append(ir.MemFence{})
	return nil
}

// lowerRestore emulates the fill half: copy %i0..%i7 into %o0..%o7,
// reload %l0..%l7,%i0..%i7 from the save area addressed by the old %fp
// (snapshot before the fill so every slot address is computed against
// it), reloading %fp itself last, then compute rd in the now-active
// window.
func (c *Compiler) lowerRestore(in DecodedInsn) error {
	oldRs1, oldRs2 := c.oldWindowOperands(in)

	for i := 0; i < 8; i++ {
		c.putR(8+i, c.getR(24+i)) // %o[i] = %i[i]
	}

	fp := c.Block.AssignTmp(c.getR(30)) // %i6 == %fp
	for i := 0; i < 8; i++ {
		addr := c.frameSlotAddr(fp, i)
		c.putR(16+i, ir.Load{Addr: addr, Typ: ir.I64}) // %l0..%l7
	}
	for i := 0; i < 8; i++ {
		if 24+i == 30 {
			continue
		}
		addr := c.frameSlotAddr(fp, 8+i)
		c.putR(24+i, ir.Load{Addr: addr, Typ: ir.I64}) // %i0..%i7 except %fp
	}
	c.putR(30, ir.Load{Addr: c.frameSlotAddr(fp, 14), Typ: ir.I64}) // %fp last

	result := c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: oldRs1, R: oldRs2, Typ: ir.I64})
	c.putR(in.Rd, result)
	c.Block.Append(ir.MemFence{})
	return nil
}

// lowerReturn is RESTORE followed by a jump to rs1+rs2_or_imm, with the
// jump target computed against the pre-restore window.
func (c *Compiler) lowerReturn(in DecodedInsn) error {
	target := c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: c.getR(in.Rs1), R: c.operand2(in), Typ: ir.I64})
	if err := c.lowerRestore(DecodedInsn{Mnemonic: OpRESTORE, Rs1: 0, Rs2: 0, Rd: 0}); err != nil {
		return err
	}
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.NPC, Val: target})
	return nil
}

// frameSlotAddr computes base + slot*8 + StackBias, the stack-biased save
// area addressing required for every SAVE/RESTORE slot.
func (c *Compiler) frameSlotAddr(base ir.Expr, slot int) ir.Expr {
	off := ir.Const{Typ: ir.I64, Bits: uint64(slot*8 + guest.StackBias)}
	return c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: base, R: off, Typ: ir.I64})
}
