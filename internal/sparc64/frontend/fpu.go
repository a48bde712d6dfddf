package frontend

import (
	"github.com/sparc64dbt/lift/internal/sparc64/condcode"
	"github.com/sparc64dbt/lift/internal/sparc64/fpexc"
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// fpArithSpec is the per-mnemonic tuple the arithmetic family dispatches
// on: the IR op, the source and destination precisions (they differ only
// for the widening multiplies FsMULd/FdMULq), the matching cexc tag, and
// whether the operation is unary.
type fpArithSpec struct {
	op     ir.Op
	srcTyp ir.Type
	dstTyp ir.Type
	cexc   fpexc.Op
	unary  bool
}

func fpArithSpecOf(m Mnemonic) (fpArithSpec, bool) {
	switch m {
	case OpFADDs:
		return fpArithSpec{ir.OpFAdd, ir.F32, ir.F32, fpexc.OpFAdd32, false}, true
	case OpFADDd:
		return fpArithSpec{ir.OpFAdd, ir.F64, ir.F64, fpexc.OpFAdd64, false}, true
	case OpFADDq:
		return fpArithSpec{ir.OpFAdd, ir.F128, ir.F128, fpexc.OpFAdd128, false}, true
	case OpFSUBs:
		return fpArithSpec{ir.OpFSub, ir.F32, ir.F32, fpexc.OpFSub32, false}, true
	case OpFSUBd:
		return fpArithSpec{ir.OpFSub, ir.F64, ir.F64, fpexc.OpFSub64, false}, true
	case OpFSUBq:
		return fpArithSpec{ir.OpFSub, ir.F128, ir.F128, fpexc.OpFSub128, false}, true
	case OpFMULs:
		return fpArithSpec{ir.OpFMul, ir.F32, ir.F32, fpexc.OpFMul32, false}, true
	case OpFMULd:
		return fpArithSpec{ir.OpFMul, ir.F64, ir.F64, fpexc.OpFMul64, false}, true
	case OpFMULq:
		return fpArithSpec{ir.OpFMul, ir.F128, ir.F128, fpexc.OpFMul128, false}, true
	case OpFsMULd:
		return fpArithSpec{ir.OpFMul, ir.F32, ir.F64, fpexc.OpF32Mul64, false}, true
	case OpFdMULq:
		return fpArithSpec{ir.OpFMul, ir.F64, ir.F128, fpexc.OpF64Mul128, false}, true
	case OpFDIVs:
		return fpArithSpec{ir.OpFDiv, ir.F32, ir.F32, fpexc.OpFDiv32, false}, true
	case OpFDIVd:
		return fpArithSpec{ir.OpFDiv, ir.F64, ir.F64, fpexc.OpFDiv64, false}, true
	case OpFDIVq:
		return fpArithSpec{ir.OpFDiv, ir.F128, ir.F128, fpexc.OpFDiv128, false}, true
	case OpFSQRTs:
		return fpArithSpec{ir.OpFSqrt, ir.F32, ir.F32, fpexc.OpFSqrt32, true}, true
	case OpFSQRTd:
		return fpArithSpec{ir.OpFSqrt, ir.F64, ir.F64, fpexc.OpFSqrt64, true}, true
	case OpFSQRTq:
		return fpArithSpec{ir.OpFSqrt, ir.F128, ir.F128, fpexc.OpFSqrt128, true}, true
	default:
		return fpArithSpec{}, false
	}
}

// fRawBits reads the raw bit pattern of an FP register operand at the
// given precision: (hi, lo) 64-bit halves for F128, a single 64-bit LO
// for F64, and a zero-extended 32-bit LO for F32. The thunk DEP slots
// store bits, never values, so these never go through a value conversion.
func (c *Compiler) fRawBits(n int, typ ir.Type) (hi, lo ir.Expr) {
	zero := ir.Expr(ir.Const{Typ: ir.I64, Bits: 0})
	switch typ {
	case ir.F32:
		raw := ir.Get{Offset: guest.StateOffsets.F[n], Typ: ir.I32}
		return zero, c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: raw, Typ: ir.I64})
	case ir.F64:
		return zero, c.dAsBits(n)
	default:
		h, l := c.fOperandHiLo(n)
		return h, l
	}
}

// putCexcThunk records an FP operation's operand bits into the lazy cexc
// thunk. All four DEP slots are always written (zeroed when unused) so
// the definedness discipline is independent of the tag; NDEP is written
// only when the operation consults the rounding mode.
func (c *Compiler) putCexcThunk(op fpexc.Op, dep1Hi, dep1Lo, dep2Hi, dep2Lo ir.Expr, usesRM bool) {
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcOp, Val: ir.Const{Typ: ir.I64, Bits: uint64(op)}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep1H, Val: dep1Hi})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep1L, Val: dep1Lo})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep2H, Val: dep2Hi})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep2L, Val: dep2Lo})
	if usesRM {
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcNDep, Val: ir.Get{Offset: guest.StateOffsets.FSRRd, Typ: ir.I64}})
	}
}

func (c *Compiler) clearCexcThunk() {
	zero := ir.Expr(ir.Const{Typ: ir.I64, Bits: 0})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcOp, Val: ir.Const{Typ: ir.I64, Bits: uint64(fpexc.OpCopy)}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep1H, Val: zero})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep1L, Val: zero})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep2H, Val: zero})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep2L, Val: zero})
}

// lowerFPArith handles FADD/FSUB/FMUL/FDIV/FSQRT{s,d,q} plus the
// widening FsMULd/FdMULq, each a rounding-mode-consuming ternary IR op
// publishing its operand bits and rounding mode into the cexc thunk.
func (c *Compiler) lowerFPArith(in DecodedInsn) error {
	spec, ok := fpArithSpecOf(in.Mnemonic)
	if !ok {
		return wrap(ErrNoDecode, "lowerFPArith: unhandled mnemonic %d", in.Mnemonic)
	}
	rounding := ir.Get{Offset: guest.StateOffsets.FSRRd, Typ: ir.I32}

	if spec.unary {
		rs2 := c.fOperand(in.Rs2, spec.srcTyp)
		result := c.Block.AssignTmp(ir.Triop{Op: spec.op, Rounding: rounding, A: rs2, B: rs2, Typ: spec.dstTyp})
		c.putFOperand(in.Rd, spec.dstTyp, result)
		hi, lo := c.fRawBits(in.Rs2, spec.srcTyp)
		c.putCexcThunk(spec.cexc, hi, lo, ir.Const{Typ: ir.I64, Bits: 0}, ir.Const{Typ: ir.I64, Bits: 0}, true)
		return nil
	}

	rs1 := c.fOperand(in.Rs1, spec.srcTyp)
	rs2 := c.fOperand(in.Rs2, spec.srcTyp)
	result := c.Block.AssignTmp(ir.Triop{Op: spec.op, Rounding: rounding, A: rs1, B: rs2, Typ: spec.dstTyp})
	c.putFOperand(in.Rd, spec.dstTyp, result)
	d1Hi, d1Lo := c.fRawBits(in.Rs1, spec.srcTyp)
	d2Hi, d2Lo := c.fRawBits(in.Rs2, spec.srcTyp)
	c.putCexcThunk(spec.cexc, d1Hi, d1Lo, d2Hi, d2Lo, true)
	return nil
}

func fcmpCexcTag(m Mnemonic) fpexc.Op {
	switch m {
	case OpFCMPs:
		return fpexc.OpFCmp32
	case OpFCMPd:
		return fpexc.OpFCmp64
	case OpFCMPq:
		return fpexc.OpFCmp128
	case OpFCMPEs:
		return fpexc.OpFCmpE32
	case OpFCMPEd:
		return fpexc.OpFCmpE64
	default:
		return fpexc.OpFCmpE128
	}
}

func fcmpTypeOf(m Mnemonic) ir.Type {
	switch m {
	case OpFCMPs, OpFCMPEs:
		return ir.F32
	case OpFCMPd, OpFCMPEd:
		return ir.F64
	default:
		return ir.F128
	}
}

// lowerFPCompare evaluates the IR compare, reformats the result into the
// native fcc encoding via the branch-free recipe in fpexc, and splices it
// into the requested fcc field. The compare also refreshes the cexc
// thunk: comparing a signalling NaN (or, for the E forms, any NaN)
// raises an invalid-operation exception.
func (c *Compiler) lowerFPCompare(in DecodedInsn, fccField int) error {
	typ := fcmpTypeOf(in.Mnemonic)
	rs1 := c.fOperand(in.Rs1, typ)
	rs2 := c.fOperand(in.Rs2, typ)
	irResult := c.Block.AssignTmp(ir.Binop{Op: ir.OpFCmp, L: rs1, R: rs2, Typ: ir.I8})

	call := ir.CleanCall{Helper: "fpexc.ConvertIRCmpToFCC", Typ: ir.I64, Args: []ir.Expr{
		c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: irResult, Typ: ir.I64}),
	}}
	fcc := c.Block.AssignTmp(call)

	shift := uint64(fccBitOffset(fccField))
	mask := c.Block.AssignTmp(ir.Binop{Op: ir.OpShl, L: fcc, R: ir.Const{Typ: ir.I64, Bits: shift}, Typ: ir.I64})
	cur := ir.Get{Offset: guest.StateOffsets.FSRFcc, Typ: ir.I64}
	clearMask := ^(uint64(3) << shift)
	cleared := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: cur, R: ir.Const{Typ: ir.I64, Bits: clearMask}, Typ: ir.I64})
	updated := c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: cleared, R: mask, Typ: ir.I64})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRFcc, Val: updated})

	d1Hi, d1Lo := c.fRawBits(in.Rs1, typ)
	d2Hi, d2Lo := c.fRawBits(in.Rs2, typ)
	c.putCexcThunk(fcmpCexcTag(in.Mnemonic), d1Hi, d1Lo, d2Hi, d2Lo, false)
	return nil
}

// fccFieldFromMoveCond extracts the 2-bit fcc selector an FMOVfcc/MOVfcc
// packs above its 4-bit condition, the same convention FBPfcc uses.
func fccFieldFromMoveCond(in DecodedInsn) int {
	return int((in.Cond >> 4) & 0x3)
}

// lowerFPMove handles FMOVcc/FMOVfcc (FP destination, condition-guarded)
// and MOVcc/MOVfcc/MOVr (integer destination). MOVr uses a register-zero
// compare rather than a condition-code lookup.
func (c *Compiler) lowerFPMove(in DecodedInsn) error {
	switch in.Mnemonic {
	case OpFMOVcc:
		cond := c.iCondExpr(condcode.ICond(in.Cond))
		result := c.Block.AssignTmp(ir.Mux0X{Cond: cond, IfZero: c.getF(in.Rd), IfNonZero: c.getF(in.Rs2), Typ: ir.F32})
		c.putF(in.Rd, result)
		return nil
	case OpFMOVfcc:
		cond := c.fCondExpr(fpexc.FCond(in.Cond&0xf), fccFieldFromMoveCond(in))
		result := c.Block.AssignTmp(ir.Mux0X{Cond: cond, IfZero: c.getF(in.Rd), IfNonZero: c.getF(in.Rs2), Typ: ir.F32})
		c.putF(in.Rd, result)
		return nil
	case OpMOVcc:
		cond := c.iCondExpr(condcode.ICond(in.Cond))
		result := c.Block.AssignTmp(ir.Mux0X{Cond: cond, IfZero: c.getR(in.Rd), IfNonZero: c.operand2(in), Typ: ir.I64})
		c.putR(in.Rd, result)
		return nil
	case OpMOVfcc:
		cond := c.fCondExpr(fpexc.FCond(in.Cond&0xf), fccFieldFromMoveCond(in))
		result := c.Block.AssignTmp(ir.Mux0X{Cond: cond, IfZero: c.getR(in.Rd), IfNonZero: c.operand2(in), Typ: ir.I64})
		c.putR(in.Rd, result)
		return nil
	case OpMOVr:
		cond, err := c.rCondExpr(in.Cond, c.getR(in.Rs1))
		if err != nil {
			return err
		}
		result := c.Block.AssignTmp(ir.Mux0X{Cond: cond, IfZero: c.getR(in.Rd), IfNonZero: c.operand2(in), Typ: ir.I64})
		c.putR(in.Rd, result)
		return nil
	default:
		return wrap(ErrNoDecode, "lowerFPMove: unhandled mnemonic %d", in.Mnemonic)
	}
}

// rCondExpr builds the MOVr register-condition predicate from rs1 alone:
// rcond 1=Z, 2=LEZ, 3=LZ, 5=NZ, 6=GZ, 7=GEZ, all derived from the sign
// bit and a zero compare.
func (c *Compiler) rCondExpr(rcond uint64, rs1 ir.Expr) (ir.Expr, error) {
	one := ir.Const{Typ: ir.I64, Bits: 1}
	z := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend,
		Arg: c.Block.AssignTmp(ir.Binop{Op: ir.OpCmpEQ, L: rs1, R: ir.Const{Typ: ir.I64, Bits: 0}, Typ: ir.I8}), Typ: ir.I64})
	lz := c.Block.AssignTmp(ir.Binop{Op: ir.OpShrU, L: rs1, R: ir.Const{Typ: ir.I64, Bits: 63}, Typ: ir.I64})

	switch rcond {
	case 1: // Z
		return z, nil
	case 2: // LEZ
		return c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: lz, R: z, Typ: ir.I64}), nil
	case 3: // LZ
		return lz, nil
	case 5: // NZ
		return c.Block.AssignTmp(ir.Binop{Op: ir.OpXor, L: z, R: one, Typ: ir.I64}), nil
	case 6: // GZ
		lez := c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: lz, R: z, Typ: ir.I64})
		return c.Block.AssignTmp(ir.Binop{Op: ir.OpXor, L: lez, R: one, Typ: ir.I64}), nil
	case 7: // GEZ
		return c.Block.AssignTmp(ir.Binop{Op: ir.OpXor, L: lz, R: one, Typ: ir.I64}), nil
	default:
		return nil, wrap(ErrUnsupportedVariant, "MOVr: reserved rcond %d", rcond)
	}
}

// lowerFPAbsNeg clears the cexc thunk: FABS/FNEG never raise exceptions.
func (c *Compiler) lowerFPAbsNeg(in DecodedInsn) error {
	var op ir.Op
	var typ ir.Type
	switch in.Mnemonic {
	case OpFABSs:
		op, typ = ir.OpFAbs, ir.F32
	case OpFABSd:
		op, typ = ir.OpFAbs, ir.F64
	case OpFABSq:
		op, typ = ir.OpFAbs, ir.F128
	case OpFNEGs:
		op, typ = ir.OpFNeg, ir.F32
	case OpFNEGd:
		op, typ = ir.OpFNeg, ir.F64
	case OpFNEGq:
		op, typ = ir.OpFNeg, ir.F128
	default:
		return wrap(ErrNoDecode, "lowerFPAbsNeg: unhandled mnemonic %d", in.Mnemonic)
	}
	rs2 := c.fOperand(in.Rs2, typ)
	result := c.Block.AssignTmp(ir.Unop{Op: op, Arg: rs2, Typ: typ})
	c.putFOperand(in.Rd, typ, result)
	c.clearCexcThunk()
	return nil
}

// fpConvSpec describes one conversion mnemonic: the cexc tag, the source
// and destination types (I32/I64 name the integer view held in an F or D
// register), and whether FSR.rd is consumed. FP-to-int conversions
// always round toward zero regardless of FSR.rd and never consume it.
type fpConvSpec struct {
	cexc   fpexc.Op
	srcTyp ir.Type
	dstTyp ir.Type
	usesRM bool
}

func fpConvSpecOf(m Mnemonic) (fpConvSpec, bool) {
	switch m {
	// int -> float. Widening i32 to F64/F128 and i64 to F128 is exact;
	// everything else can round.
	case OpFITOs:
		return fpConvSpec{fpexc.OpI32ToF32, ir.I32, ir.F32, true}, true
	case OpFITOd:
		return fpConvSpec{fpexc.OpI32ToF64, ir.I32, ir.F64, false}, true
	case OpFITOq:
		return fpConvSpec{fpexc.OpI32ToF128, ir.I32, ir.F128, false}, true
	case OpFXTOs:
		return fpConvSpec{fpexc.OpI64ToF32, ir.I64, ir.F32, true}, true
	case OpFXTOd:
		return fpConvSpec{fpexc.OpI64ToF64, ir.I64, ir.F64, true}, true
	case OpFXTOq:
		return fpConvSpec{fpexc.OpI64ToF128, ir.I64, ir.F128, false}, true

	// float -> int, always round-to-zero.
	case OpFSTOi:
		return fpConvSpec{fpexc.OpF32ToI32, ir.F32, ir.I32, false}, true
	case OpFDTOi:
		return fpConvSpec{fpexc.OpF64ToI32, ir.F64, ir.I32, false}, true
	case OpFQTOi:
		return fpConvSpec{fpexc.OpF128ToI32, ir.F128, ir.I32, false}, true
	case OpFSTOx:
		return fpConvSpec{fpexc.OpF32ToI64, ir.F32, ir.I64, false}, true
	case OpFDTOx:
		return fpConvSpec{fpexc.OpF64ToI64, ir.F64, ir.I64, false}, true
	case OpFQTOx:
		return fpConvSpec{fpexc.OpF128ToI64, ir.F128, ir.I64, false}, true

	// float -> float. Narrowing rounds, widening is exact.
	case OpFSTOd:
		return fpConvSpec{fpexc.OpF32ToF64, ir.F32, ir.F64, false}, true
	case OpFSTOq:
		return fpConvSpec{fpexc.OpF32ToF128, ir.F32, ir.F128, false}, true
	case OpFDTOs:
		return fpConvSpec{fpexc.OpF64ToF32, ir.F64, ir.F32, true}, true
	case OpFDTOq:
		return fpConvSpec{fpexc.OpF64ToF128, ir.F64, ir.F128, false}, true
	case OpFQTOs:
		return fpConvSpec{fpexc.OpF128ToF32, ir.F128, ir.F32, true}, true
	case OpFQTOd:
		return fpConvSpec{fpexc.OpF128ToF64, ir.F128, ir.F64, true}, true
	default:
		return fpConvSpec{}, false
	}
}

// convSrcExpr reads a conversion source operand: an i32 from an F slot,
// an i64 from a D register, or a float at its own precision.
func (c *Compiler) convSrcExpr(n int, typ ir.Type) ir.Expr {
	switch typ {
	case ir.I32:
		return ir.Get{Offset: guest.StateOffsets.F[n], Typ: ir.I32}
	case ir.I64:
		return c.dAsBits(n)
	default:
		return c.fOperand(n, typ)
	}
}

// convPutResult writes a conversion result: an i32 into an F slot, an
// i64 into a D register, or a float at its own precision.
func (c *Compiler) convPutResult(n int, typ ir.Type, val ir.Expr) {
	switch typ {
	case ir.I32:
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.F[n], Val: val})
		c.setFPRSDirty()
	case ir.I64:
		c.putDFromBits(n, val)
	default:
		c.putFOperand(n, typ, val)
	}
}

// lowerFPConvert handles every conversion pair among F32/F64/F128/I32/I64.
func (c *Compiler) lowerFPConvert(in DecodedInsn) error {
	spec, ok := fpConvSpecOf(in.Mnemonic)
	if !ok {
		return wrap(ErrNoDecode, "lowerFPConvert: unhandled mnemonic %d", in.Mnemonic)
	}

	src := c.convSrcExpr(in.Rs2, spec.srcTyp)
	var result ir.Expr
	switch {
	case spec.dstTyp == ir.I32 || spec.dstTyp == ir.I64:
		result = c.Block.AssignTmp(ir.Unop{Op: ir.OpFloatToIntRTZ, Arg: src, Typ: spec.dstTyp})
	case spec.srcTyp == ir.I32 || spec.srcTyp == ir.I64:
		result = c.Block.AssignTmp(ir.Triop{Op: ir.OpIntToFloat,
			Rounding: ir.Get{Offset: guest.StateOffsets.FSRRd, Typ: ir.I32}, A: src, B: src, Typ: spec.dstTyp})
	default:
		result = c.Block.AssignTmp(ir.Triop{Op: ir.OpFloatConvert,
			Rounding: ir.Get{Offset: guest.StateOffsets.FSRRd, Typ: ir.I32}, A: src, B: src, Typ: spec.dstTyp})
	}
	c.convPutResult(in.Rd, spec.dstTyp, result)

	// Thunk DEP slots hold the source bits; an i32/i64 source occupies
	// the same register slots its F32/F64 view would.
	srcBitsTyp := spec.srcTyp
	if srcBitsTyp == ir.I32 {
		srcBitsTyp = ir.F32
	} else if srcBitsTyp == ir.I64 {
		srcBitsTyp = ir.F64
	}
	hi, lo := c.fRawBits(in.Rs2, srcBitsTyp)
	c.putCexcThunk(spec.cexc, hi, lo, ir.Const{Typ: ir.I64, Bits: 0}, ir.Const{Typ: ir.I64, Bits: 0}, spec.usesRM)
	return nil
}

func fmaCexcTag(m Mnemonic) fpexc.Op {
	switch m {
	case OpFMADDs:
		return fpexc.OpFMAdd32
	case OpFMADDd:
		return fpexc.OpFMAdd64
	case OpFMSUBs:
		return fpexc.OpFMSub32
	default:
		return fpexc.OpFMSub64
	}
}

// lowerFMA handles fused multiply-add FMADD/FMSUB, packing the three
// source operands' bits into DEP1_HI, DEP1_LO, DEP2_HI of the cexc thunk.
// FNMADD/FNMSUB are deliberately unsupported; per DESIGN.md's resolution
// they always fail the lift.
func (c *Compiler) lowerFMA(in DecodedInsn) error {
	switch in.Mnemonic {
	case OpFNMADDs, OpFNMADDd, OpFNMSUBs, OpFNMSUBd:
		return wrap(ErrUnsupportedVariant, "FNMADD/FNMSUB are not lifted (see DESIGN.md open-question resolution)")
	}

	var op ir.Op
	var typ ir.Type
	switch in.Mnemonic {
	case OpFMADDs:
		op, typ = ir.OpFMAdd, ir.F32
	case OpFMADDd:
		op, typ = ir.OpFMAdd, ir.F64
	case OpFMSUBs:
		op, typ = ir.OpFMSub, ir.F32
	case OpFMSUBd:
		op, typ = ir.OpFMSub, ir.F64
	default:
		return wrap(ErrNoDecode, "lowerFMA: unhandled mnemonic %d", in.Mnemonic)
	}

	rounding := ir.Get{Offset: guest.StateOffsets.FSRRd, Typ: ir.I32}
	a := c.fOperand(in.Rs1, typ)
	b := c.fOperand(in.Rs2, typ)
	cc := c.fOperand(in.Rd, typ) // third source aliases rd per SPARC's FMAf encoding
	result := c.Block.AssignTmp(ir.Qop{Op: op, Rounding: rounding, A: a, B: b, C: cc, Typ: typ})

	_, aBits := c.fRawBits(in.Rs1, typ)
	_, bBits := c.fRawBits(in.Rs2, typ)
	_, cBits := c.fRawBits(in.Rd, typ)
	c.putFOperand(in.Rd, typ, result)

	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcOp, Val: ir.Const{Typ: ir.I64, Bits: uint64(fmaCexcTag(in.Mnemonic))}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep1H, Val: aBits})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep1L, Val: bBits})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep2H, Val: cBits})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep2L, Val: ir.Const{Typ: ir.I64, Bits: 0}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcNDep, Val: ir.Get{Offset: guest.StateOffsets.FSRRd, Typ: ir.I64}})
	return nil
}

// fOperand/putFOperand read/write an F32/F64/F128-typed FP register value,
// routing through the D/Q aliasing rules of guest/regs.go for the wider
// types. Wider values are reassembled from (and scattered back to) the
// raw 32-bit slots with bit-level reinterpretation, so aliasing reads
// back bit-exactly.
func (c *Compiler) fOperand(n int, typ ir.Type) ir.Expr {
	switch typ {
	case ir.F32:
		return c.getF(n)
	case ir.F64:
		return c.Block.AssignTmp(ir.Unop{Op: ir.OpReinterpret, Arg: c.dAsBits(n), Typ: ir.F64})
	default:
		hi, lo := c.fOperandHiLo(n)
		hi128 := c.Block.AssignTmp(ir.Binop{Op: ir.OpShl,
			L: c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: hi, Typ: ir.I128}),
			R: ir.Const{Typ: ir.I64, Bits: 64}, Typ: ir.I128})
		lo128 := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: lo, Typ: ir.I128})
		packed := c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: hi128, R: lo128, Typ: ir.I128})
		return c.Block.AssignTmp(ir.Unop{Op: ir.OpReinterpret, Arg: packed, Typ: ir.F128})
	}
}

func (c *Compiler) putFOperand(n int, typ ir.Type, val ir.Expr) {
	switch typ {
	case ir.F32:
		c.putF(n, val)
	case ir.F64:
		bits := c.Block.AssignTmp(ir.Unop{Op: ir.OpReinterpret, Arg: val, Typ: ir.I64})
		c.putDFromBits(n, bits)
	default:
		bits := c.Block.AssignTmp(ir.Unop{Op: ir.OpReinterpret, Arg: val, Typ: ir.I128})
		hi := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow,
			Arg: c.Block.AssignTmp(ir.Binop{Op: ir.OpShrU, L: bits, R: ir.Const{Typ: ir.I64, Bits: 64}, Typ: ir.I128}), Typ: ir.I64})
		lo := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: bits, Typ: ir.I64})
		c.putFOperandHiLo(n, hi, lo)
	}
}
