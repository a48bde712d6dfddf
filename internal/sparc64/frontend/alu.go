package frontend

import (
	"github.com/sparc64dbt/lift/internal/sparc64/condcode"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// operand2 materializes the immediate-or-rs2 second operand, the
// arithmetic family's standard parameter shape.
func (c *Compiler) operand2(in DecodedInsn) ir.Expr {
	if in.HasImm {
		return ir.Const{Typ: ir.I64, Bits: uint64(in.Imm)}
	}
	return c.getR(in.Rs2)
}

// lowerALU handles the add/sub/logic family: one IR binop, optional CC
// thunk write, optional carry consumption.
func (c *Compiler) lowerALU(in DecodedInsn) error {
	left := c.getR(in.Rs1)
	right := c.operand2(in)

	var op ir.Op
	var ccOp condcode.Op
	setsCC := false
	negateRight := false
	useCarry := false

	switch in.Mnemonic {
	case OpADD:
		op = ir.OpAdd
	case OpADDcc:
		op, ccOp, setsCC = ir.OpAdd, condcode.OpAdd, true
	case OpADDC:
		op, useCarry = ir.OpAdd, true
	case OpADDCcc:
		op, ccOp, setsCC, useCarry = ir.OpAdd, condcode.OpAddC, true, true
	case OpSUB:
		op = ir.OpSub
	case OpSUBcc:
		op, ccOp, setsCC = ir.OpSub, condcode.OpSub, true
	case OpSUBC:
		op, useCarry = ir.OpSub, true
	case OpSUBCcc:
		op, ccOp, setsCC, useCarry = ir.OpSub, condcode.OpSubC, true, true
	case OpAND:
		op = ir.OpAnd
	case OpANDcc:
		op, ccOp, setsCC = ir.OpAnd, condcode.OpLogic, true
	case OpANDN:
		op, negateRight = ir.OpAnd, true
	case OpANDNcc:
		op, ccOp, setsCC, negateRight = ir.OpAnd, condcode.OpLogic, true, true
	case OpOR:
		op = ir.OpOr
	case OpORcc:
		op, ccOp, setsCC = ir.OpOr, condcode.OpLogic, true
	case OpORN:
		op, negateRight = ir.OpOr, true
	case OpORNcc:
		op, ccOp, setsCC, negateRight = ir.OpOr, condcode.OpLogic, true, true
	case OpXOR:
		op = ir.OpXor
	case OpXORcc:
		op, ccOp, setsCC = ir.OpXor, condcode.OpLogic, true
	case OpXNOR:
		op, negateRight = ir.OpXor, true
	case OpXNORcc:
		op, ccOp, setsCC, negateRight = ir.OpXor, condcode.OpLogic, true, true
	default:
		return wrap(ErrNoDecode, "lowerALU: unhandled mnemonic %d", in.Mnemonic)
	}

	if negateRight {
		right = ir.Binop{Op: ir.OpXor, L: right, R: ir.Const{Typ: ir.I64, Bits: ^uint64(0)}, Typ: ir.I64}
	}

	var result ir.Expr
	dep2 := right
	ndep := ir.Expr(ir.Const{Typ: ir.I64, Bits: 0})

	if useCarry {
		carry := c.getCarryIn(in)
		sum := c.Block.AssignTmp(ir.Binop{Op: op, L: left, R: right, Typ: ir.I64})
		result = c.Block.AssignTmp(ir.Binop{Op: op, L: sum, R: carry, Typ: ir.I64})
		// DEP2 is stored XOR-ed with the carry: the evaluator recovers the
		// true right-hand operand by XOR-ing NDEP back in, so the checker
		// keeps seeing correct data flow through DEP2 alone.
		dep2 = c.Block.AssignTmp(ir.Binop{Op: ir.OpXor, L: right, R: carry, Typ: ir.I64})
		ndep = carry
	} else {
		result = c.Block.AssignTmp(ir.Binop{Op: op, L: left, R: right, Typ: ir.I64})
	}
	c.putR(in.Rd, result)

	if setsCC {
		if ccOp == condcode.OpLogic {
			// LOGIC thunk keys off the 64-bit result, not the operands.
			c.putCC(uint64(ccOp), result, ir.Const{Typ: ir.I64, Bits: 0}, ir.Const{Typ: ir.I64, Bits: 0})
		} else {
			c.putCC(uint64(ccOp), left, dep2, ndep)
		}
	}
	return nil
}

// getCarryIn reads the current icc.C as the ADDC/SUBC carry-in operand, by
// invoking the integer-CCR clean helper against the live thunk and masking
// out bit 0. ADDC/SUBC are uncommon enough that a helper call rather than
// inline re-derivation is an acceptable cost, matching how VEX itself
// routes this through sparc64_calculate_CCR at execution time.
func (c *Compiler) getCarryIn(in DecodedInsn) ir.Expr {
	ccr := c.Block.AssignTmp(ir.CleanCall{
		Helper: "condcode.EvaluateCCR",
		Typ:    ir.I64,
		Args:   []ir.Expr{c.getCCOp(), c.getCCDep1(), c.getCCDep2(), c.getCCNDep()},
	})
	return c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: ccr, R: ir.Const{Typ: ir.I64, Bits: 1}, Typ: ir.I64})
}

// lowerShift handles SLL/SRL/SRA (32-bit) and their X-suffixed 64-bit
// counterparts: mask the count to 5 or 6 bits; for 32-bit right shifts,
// widen the result back to 64 bits with sign- or zero-extension per
// opcode.
func (c *Compiler) lowerShift(in DecodedInsn) error {
	left := c.getR(in.Rs1)
	countMask := uint64(0x1f)
	is64 := false
	var op ir.Op
	switch in.Mnemonic {
	case OpSLL:
		op = ir.OpShl
	case OpSLLX:
		op, countMask, is64 = ir.OpShl, 0x3f, true
	case OpSRL:
		op = ir.OpShrU
	case OpSRLX:
		op, countMask, is64 = ir.OpShrU, 0x3f, true
	case OpSRA:
		op = ir.OpShrS
	case OpSRAX:
		op, countMask, is64 = ir.OpShrS, 0x3f, true
	default:
		return wrap(ErrNoDecode, "lowerShift: unhandled mnemonic %d", in.Mnemonic)
	}

	var count ir.Expr
	if in.HasImm {
		count = ir.Const{Typ: ir.I64, Bits: uint64(in.Imm) & countMask}
	} else {
		count = c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: c.getR(in.Rs2), R: ir.Const{Typ: ir.I64, Bits: countMask}, Typ: ir.I64})
	}

	operand := left
	if !is64 {
		operand = c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: left, Typ: ir.I32})
	}

	shifted := c.Block.AssignTmp(ir.Binop{Op: op, L: operand, R: count, Typ: operand.Type()})

	var result ir.Expr = shifted
	if !is64 {
		extOp := ir.OpZeroExtend
		if op == ir.OpShrS {
			extOp = ir.OpSignExtend
		}
		result = c.Block.AssignTmp(ir.Unop{Op: extOp, Arg: shifted, Typ: ir.I64})
	}
	c.putR(in.Rd, result)
	return nil
}

// lowerMulDiv handles MULX/SMUL(cc)/UMUL(cc)/SDIV(X)(cc)/UDIV(X)(cc):
// Y_OUT mnemonics shift the high 32 bits of the 64-bit product into Y;
// Y_IN mnemonics concatenate Y:rs1 as the 64-bit dividend.
func (c *Compiler) lowerMulDiv(in DecodedInsn) error {
	left := c.getR(in.Rs1)
	right := c.operand2(in)

	switch in.Mnemonic {
	case OpMULX:
		result := c.Block.AssignTmp(ir.Binop{Op: ir.OpMulS, L: left, R: right, Typ: ir.I64})
		c.putR(in.Rd, result)
		return nil

	case OpSMUL, OpSMULcc:
		l32 := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: left, Typ: ir.I32})
		r32 := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: right, Typ: ir.I32})
		product := c.Block.AssignTmp(ir.Binop{Op: ir.OpMulS, L: l32, R: r32, Typ: ir.I64})
		c.putR(in.Rd, product)
		c.writeY(product)
		if in.Mnemonic == OpSMULcc {
			c.putCC(uint64(condcode.OpSMul), l32, r32, ir.Const{Typ: ir.I64, Bits: 0})
		}
		return nil

	case OpUMUL, OpUMULcc:
		l32 := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: left, Typ: ir.I32})
		r32 := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: right, Typ: ir.I32})
		product := c.Block.AssignTmp(ir.Binop{Op: ir.OpMulU, L: l32, R: r32, Typ: ir.I64})
		c.putR(in.Rd, product)
		c.writeY(product)
		if in.Mnemonic == OpUMULcc {
			c.putCC(uint64(condcode.OpUMul), l32, r32, ir.Const{Typ: ir.I64, Bits: 0})
		}
		return nil

	case OpSDIVX:
		quot := c.Block.AssignTmp(ir.Binop{Op: ir.OpDivS, L: left, R: right, Typ: ir.I64})
		c.putR(in.Rd, quot)
		return nil

	case OpUDIVX:
		quot := c.Block.AssignTmp(ir.Binop{Op: ir.OpDivU, L: left, R: right, Typ: ir.I64})
		c.putR(in.Rd, quot)
		return nil

	case OpSDIV, OpSDIVcc:
		dividend := c.readYConcatRs1(in.Rs1)
		quot := c.Block.AssignTmp(ir.Binop{Op: ir.OpDivS, L: dividend, R: right, Typ: ir.I64})
		c.putR(in.Rd, quot)
		if in.Mnemonic == OpSDIVcc {
			c.putCC(uint64(condcode.OpSDiv), dividend, right, ir.Const{Typ: ir.I64, Bits: 0})
		}
		return nil

	case OpUDIV, OpUDIVcc:
		dividend := c.readYConcatRs1(in.Rs1)
		quot := c.Block.AssignTmp(ir.Binop{Op: ir.OpDivU, L: dividend, R: right, Typ: ir.I64})
		c.putR(in.Rd, quot)
		if in.Mnemonic == OpUDIVcc {
			c.putCC(uint64(condcode.OpUDiv), dividend, right, ir.Const{Typ: ir.I64, Bits: 0})
		}
		return nil

	case OpLZCNT:
		// LZCNT maps to count-leading-zeros with an explicit select for
		// the zero-input case, which OpClz otherwise leaves undefined.
		src := c.getR(in.Rs1)
		clz := c.Block.AssignTmp(ir.Unop{Op: ir.OpClz, Arg: src, Typ: ir.I64})
		isZero := c.Block.AssignTmp(ir.Binop{Op: ir.OpCmpEQ, L: src, R: ir.Const{Typ: ir.I64, Bits: 0}, Typ: ir.I8})
		result := c.Block.AssignTmp(ir.Mux0X{Cond: isZero, IfZero: clz, IfNonZero: ir.Const{Typ: ir.I64, Bits: 64}, Typ: ir.I64})
		c.putR(in.Rd, result)
		return nil

	default:
		return wrap(ErrNoDecode, "lowerMulDiv: unhandled mnemonic %d", in.Mnemonic)
	}
}

func (c *Compiler) writeY(product ir.Expr) {
	hi := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: c.Block.AssignTmp(ir.Binop{Op: ir.OpShrU, L: product, R: ir.Const{Typ: ir.I64, Bits: 32}, Typ: ir.I64}), Typ: ir.I32})
	hi64 := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: hi, Typ: ir.I64})
	c.putY(hi64)
}

func (c *Compiler) putY(val ir.Expr) {
	c.Block.Append(ir.Put{Offset: yOffset(), Val: val})
}

func (c *Compiler) readYConcatRs1(rs1 int) ir.Expr {
	y := c.Block.AssignTmp(ir.Binop{Op: ir.OpShl, L: ir.Get{Offset: yOffset(), Typ: ir.I64}, R: ir.Const{Typ: ir.I64, Bits: 32}, Typ: ir.I64})
	lo := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: c.getR(rs1), Typ: ir.I32})
	lo64 := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: lo, Typ: ir.I64})
	return c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: y, R: lo64, Typ: ir.I64})
}
