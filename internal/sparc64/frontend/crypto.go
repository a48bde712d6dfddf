package frontend

import (
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// maxKeyExpandImm5 bounds the Rcon selector FAESKEYX1 accepts; the table
// has eleven entries and anything past it is a lift failure, not a
// silent zero.
const maxKeyExpandImm5 = 10

// lowerAES handles FAESENCX1/FAESDECX1/FAESKEYX1, gated on the AES
// capability bit. Each 64-bit output half is a clean function of three
// (round: state halves + key half) or two (key expand: prior-key half +
// selector) 64-bit inputs. Without the capability the lift fails
// outright rather than silently emitting wrong semantics; the
// dispatcher's caller decides whether to fall back to the native-escape
// path.
func (c *Compiler) lowerAES(in DecodedInsn) error {
	if !c.Caps.HasAES() {
		return wrap(ErrUnsupportedVariant, "AES instruction requires CapAES")
	}

	rs1Hi, rs1Lo := c.fOperandHiLo(in.Rs1)

	cleanPair := func(helperHi, helperLo string, extraHi, extraLo ir.Expr) {
		outHi := c.Block.AssignTmp(ir.CleanCall{Helper: helperHi, Typ: ir.I64,
			Args: []ir.Expr{rs1Hi, rs1Lo, extraHi}})
		outLo := c.Block.AssignTmp(ir.CleanCall{Helper: helperLo, Typ: ir.I64,
			Args: []ir.Expr{rs1Hi, rs1Lo, extraLo}})
		c.putFOperandHiLo(in.Rd, outHi, outLo)
	}

	switch in.Mnemonic {
	case OpFAESENCX1:
		rs2Hi, rs2Lo := c.fOperandHiLo(in.Rs2)
		cleanPair("helpers.AESEncRoundHi", "helpers.AESEncRoundLo", rs2Hi, rs2Lo)
		return nil
	case OpFAESDECX1:
		rs2Hi, rs2Lo := c.fOperandHiLo(in.Rs2)
		cleanPair("helpers.AESDecRoundHi", "helpers.AESDecRoundLo", rs2Hi, rs2Lo)
		return nil
	case OpFAESKEYX1:
		if in.Imm5 > maxKeyExpandImm5 {
			return wrap(ErrUnsupportedVariant, "FAESKEYX1: unsupported imm5 %d", in.Imm5)
		}
		imm5 := ir.Const{Typ: ir.I64, Bits: uint64(in.Imm5)}
		cleanPair("helpers.AESKeyExpandHi", "helpers.AESKeyExpandLo", imm5, imm5)
		return nil
	default:
		return wrap(ErrNoDecode, "lowerAES: unhandled mnemonic %d", in.Mnemonic)
	}
}

// lowerHash handles MD5/SHA1/SHA256/SHA512 as DirtyCalls taking the
// guest-state pointer, declaring the FP-register sub-ranges the helper
// reads (the block) and writes (the chaining value); the dispatcher
// declares these byte ranges itself so the optimizer preserves data flow
// through the opaque call.
func (c *Compiler) lowerHash(in DecodedInsn) error {
	ivFirst := in.Rd
	blockFirst := in.Rs2

	var helper string
	var ivWords, blockWords int32
	switch in.Mnemonic {
	case OpMD5:
		helper, ivWords, blockWords = "helpers.MD5Block", 4, 16
	case OpSHA1:
		helper, ivWords, blockWords = "helpers.SHA1Block", 5, 16
	case OpSHA256:
		helper, ivWords, blockWords = "helpers.SHA256Block", 8, 16
	case OpSHA512:
		helper, ivWords, blockWords = "helpers.SHA512Block", 16, 32
	default:
		return wrap(ErrNoDecode, "lowerHash: unhandled mnemonic %d", in.Mnemonic)
	}

	ivOff := guest.StateOffsets.F[ivFirst]
	blockOff := guest.StateOffsets.F[blockFirst]
	c.Block.Append(ir.DirtyCall{
		Helper: helper,
		Args: []ir.Expr{
			ir.Const{Typ: ir.I64, Bits: uint64(ivFirst)},
			ir.Const{Typ: ir.I64, Bits: uint64(blockFirst)},
		},
		Reads: []ir.RegRange{
			{Offset: ivOff, Length: ivWords * 4},
			{Offset: blockOff, Length: blockWords * 4},
		},
		Writes: []ir.RegRange{
			{Offset: ivOff, Length: ivWords * 4},
		},
	})
	c.setFPRSDirty()
	return nil
}

// fOperandHiLo reads a 128-bit FP operand as its (hi,lo) 64-bit halves,
// the addressing AES round functions expect; n names the quad register's
// first constituent double.
func (c *Compiler) fOperandHiLo(n int) (hi, lo ir.Expr) {
	d0, d1 := guest.QConstituentDoubles(n)
	return c.dAsBits(d0), c.dAsBits(d1)
}

func (c *Compiler) putFOperandHiLo(n int, hi, lo ir.Expr) {
	d0, d1 := guest.QConstituentDoubles(n)
	c.putDFromBits(d0, hi)
	c.putDFromBits(d1, lo)
}

// dAsBits reads double register Dn as a raw I64 bit pattern (not a value
// conversion), the representation AES round helpers operate on.
func (c *Compiler) dAsBits(n int) ir.Expr {
	if guest.DIsUpper(n) {
		return ir.Get{Offset: guest.DUpperOffset(n), Typ: ir.I64}
	}
	hiOff, loOff := guest.DPairOffsets(n)
	hiVal := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: ir.Get{Offset: hiOff, Typ: ir.I32}, Typ: ir.I64})
	loVal := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: ir.Get{Offset: loOff, Typ: ir.I32}, Typ: ir.I64})
	shifted := c.Block.AssignTmp(ir.Binop{Op: ir.OpShl, L: hiVal, R: ir.Const{Typ: ir.I64, Bits: 32}, Typ: ir.I64})
	return c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: shifted, R: loVal, Typ: ir.I64})
}

func (c *Compiler) putDFromBits(n int, bits ir.Expr) {
	if guest.DIsUpper(n) {
		c.Block.Append(ir.Put{Offset: guest.DUpperOffset(n), Val: bits})
		c.setFPRSDirty()
		return
	}
	hiOff, loOff := guest.DPairOffsets(n)
	hiWord := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: c.Block.AssignTmp(ir.Binop{Op: ir.OpShrU, L: bits, R: ir.Const{Typ: ir.I64, Bits: 32}, Typ: ir.I64}), Typ: ir.I32})
	loWord := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: bits, Typ: ir.I32})
	c.Block.Append(ir.Put{Offset: hiOff, Val: hiWord})
	c.Block.Append(ir.Put{Offset: loOff, Val: loWord})
	c.setFPRSDirty()
}
