package frontend

import (
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

const (
	asiPrimary      = 0x80
	asiBlockPrimary = 0xf0
	asiFL8Primary   = 0xd6
	asiFL16Primary  = 0xd4
)

func (c *Compiler) effectiveAddr(in DecodedInsn) ir.Expr {
	return c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: c.getR(in.Rs1), R: c.operand2(in), Typ: ir.I64})
}

func (c *Compiler) qualifiedLoad(addr ir.Expr, typ ir.Type, in DecodedInsn) ir.Expr {
	if in.ASI == 0 {
		return ir.Load{Addr: addr, Typ: typ}
	}
	return ir.Load{Addr: addr, Typ: typ, HasASI: true, ASI: ir.Const{Typ: ir.I64, Bits: uint64(in.ASI)}}
}

func (c *Compiler) qualifiedStore(addr, val ir.Expr, in DecodedInsn) {
	if in.ASI == 0 {
		c.Block.Append(ir.Store{Addr: addr, Val: val})
		return
	}
	c.Block.Append(ir.Store{Addr: addr, Val: val, HasASI: true, ASI: ir.Const{Typ: ir.I64, Bits: uint64(in.ASI)}})
}

// lowerLoad handles plain sized integer loads: load the sized memory
// type, then sign- or zero-widen to 64 bits.
func (c *Compiler) lowerLoad(in DecodedInsn) error {
	addr := c.effectiveAddr(in)
	var typ ir.Type
	signed := false
	switch in.Mnemonic {
	case OpLDUW:
		typ = ir.I32
	case OpLDSW:
		typ, signed = ir.I32, true
	case OpLDX:
		typ = ir.I64
	case OpLDUB:
		typ = ir.I8
	case OpLDSB:
		typ, signed = ir.I8, true
	case OpLDUH:
		typ = ir.I16
	case OpLDSH:
		typ, signed = ir.I16, true
	default:
		return wrap(ErrNoDecode, "lowerLoad: unhandled mnemonic %d", in.Mnemonic)
	}

	val := c.qualifiedLoad(addr, typ, in)
	if typ != ir.I64 {
		extOp := ir.OpZeroExtend
		if signed {
			extOp = ir.OpSignExtend
		}
		val = c.Block.AssignTmp(ir.Unop{Op: extOp, Arg: val, Typ: ir.I64})
	}
	c.putR(in.Rd, val)
	return nil
}

// lowerStore handles plain sized integer stores.
func (c *Compiler) lowerStore(in DecodedInsn) error {
	addr := c.effectiveAddr(in)
	src := c.getR(in.Rd) // store instructions use the "rd" slot as the source register
	var typ ir.Type
	switch in.Mnemonic {
	case OpSTW:
		typ = ir.I32
	case OpSTX:
		typ = ir.I64
	case OpSTB:
		typ = ir.I8
	case OpSTH:
		typ = ir.I16
	default:
		return wrap(ErrNoDecode, "lowerStore: unhandled mnemonic %d", in.Mnemonic)
	}
	narrowed := src
	if typ != ir.I64 {
		narrowed = c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: src, Typ: typ})
	}
	c.qualifiedStore(addr, narrowed, in)
	return nil
}

// lowerFPLoad/Store handle LDF/STF/LDDF/STDF and the ASI-restricted block
// and short-float variants.
func (c *Compiler) lowerFPLoad(in DecodedInsn) error {
	addr := c.effectiveAddr(in)
	switch in.Mnemonic {
	case OpLDF:
		c.putF(in.Rd, c.qualifiedLoad(addr, ir.F32, in))
		return nil
	case OpLDDF:
		// Short-float loads are the LDDF form qualified with the FL8/FL16
		// ASI: load 8 or 16 bits, widen to 64 via zero-extension, land the
		// bits in the destination double.
		if in.ASI == asiFL8Primary || in.ASI == asiFL16Primary {
			typ := ir.I8
			if in.ASI == asiFL16Primary {
				typ = ir.I16
			}
			widened := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: c.qualifiedLoad(addr, typ, in), Typ: ir.I64})
			c.putDFromBits(in.Rd, widened)
			return nil
		}
		// Big-endian: the word at the lower address is the double's high
		// half and lands in the lower-numbered single.
		hi := c.qualifiedLoad(addr, ir.F32, in)
		loAddr := c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: addr, R: ir.Const{Typ: ir.I64, Bits: 4}, Typ: ir.I64})
		lo := c.qualifiedLoad(loAddr, ir.F32, in)
		c.putF(in.Rd, hi)
		c.putF(in.Rd+1, lo)
		return nil
	case OpLDBLOCKF:
		if in.ASI != asiBlockPrimary {
			return wrap(ErrUnsupportedVariant, "LDBLOCKF requires block-primary ASI, got %#x", in.ASI)
		}
		for i := 0; i < 8; i++ {
			slotAddr := c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: addr, R: ir.Const{Typ: ir.I64, Bits: uint64(i * 8)}, Typ: ir.I64})
			c.putF(in.Rd+2*i, ir.Load{Addr: slotAddr, Typ: ir.F64})
		}
		return nil
	default:
		return wrap(ErrNoDecode, "lowerFPLoad: unhandled mnemonic %d", in.Mnemonic)
	}
}

func (c *Compiler) lowerFPStore(in DecodedInsn) error {
	addr := c.effectiveAddr(in)
	switch in.Mnemonic {
	case OpSTF:
		c.qualifiedStore(addr, c.getF(in.Rd), in)
		return nil
	case OpSTDF:
		c.qualifiedStore(addr, c.getF(in.Rd), in)
		hiAddr := c.Block.AssignTmp(ir.Binop{Op: ir.OpAdd, L: addr, R: ir.Const{Typ: ir.I64, Bits: 4}, Typ: ir.I64})
		c.qualifiedStore(hiAddr, c.getF(in.Rd+1), in)
		return nil
	default:
		return wrap(ErrNoDecode, "lowerFPStore: unhandled mnemonic %d", in.Mnemonic)
	}
}

// lowerLDFSR loads %fsr (32 or 64 bit), rejects non-zero TEM/NS via the
// clean FSR-sanity helper, updates rd/fcc, and writes the cexc bits as a
// COPY thunk.
func (c *Compiler) lowerLDFSR(in DecodedInsn) error {
	addr := c.effectiveAddr(in)
	typ := ir.I32
	if in.Mnemonic == OpLDXFSR {
		typ = ir.I64
	}
	raw := ir.Load{Addr: addr, Typ: typ}
	rawTmp := c.Block.AssignTmp(raw)

	checkTmp := c.Block.AssignTmp(ir.CleanCall{Helper: "helpers.CheckFSR", Typ: ir.I32, Args: []ir.Expr{rawTmp}})
	noteSet := c.Block.AssignTmp(ir.Binop{Op: ir.OpCmpNE, L: checkTmp, R: ir.Const{Typ: ir.I32, Bits: 0}, Typ: ir.I8})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.EMNote, Val: ir.Mux0X{Cond: noteSet, IfZero: ir.Const{Typ: ir.I32, Bits: 0}, IfNonZero: checkTmp, Typ: ir.I32}})
	c.Block.Append(ir.Exit{Cond: noteSet, Target: c.PC + 4, Kind: ir.JumpBoring})

	rd64 := c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: rawTmp, Typ: ir.I64})
	rdBits := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: c.Block.AssignTmp(ir.Binop{Op: ir.OpShrU, L: rd64, R: ir.Const{Typ: ir.I64, Bits: 30}, Typ: ir.I64}), R: ir.Const{Typ: ir.I64, Bits: 3}, Typ: ir.I64})
	// Native -> normalized rounding mode. The two encodings swap "zero"
	// and "-inf", making the table (4 - x) & 3, its own inverse.
	rdNorm := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd,
		L:   c.Block.AssignTmp(ir.Binop{Op: ir.OpSub, L: ir.Const{Typ: ir.I64, Bits: 4}, R: rdBits, Typ: ir.I64}),
		R:   ir.Const{Typ: ir.I64, Bits: 3},
		Typ: ir.I64})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRRd, Val: rdNorm})

	fcc := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: rd64, R: ir.Const{Typ: ir.I64, Bits: 0x3f00000c00}, Typ: ir.I64})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRFcc, Val: fcc})

	cexc := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd, L: rd64, R: ir.Const{Typ: ir.I64, Bits: 0x1f}, Typ: ir.I64})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcOp, Val: ir.Const{Typ: ir.I64, Bits: 0}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep1L, Val: cexc})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep1H, Val: ir.Const{Typ: ir.I64, Bits: 0}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep2H, Val: ir.Const{Typ: ir.I64, Bits: 0}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcDep2L, Val: ir.Const{Typ: ir.I64, Bits: 0}})
	c.Block.Append(ir.Put{Offset: guest.StateOffsets.FSRCexcNDep, Val: ir.Const{Typ: ir.I64, Bits: 0}})
	return nil
}

// lowerSTFSR evaluates the cexc thunk, ORs in FSR_FCC and the
// normalized-to-native rd, and stores 32 or 64 bits.
func (c *Compiler) lowerSTFSR(in DecodedInsn) error {
	addr := c.effectiveAddr(in)
	cexc := c.Block.AssignTmp(ir.CleanCall{Helper: "fpexc.Evaluate", Typ: ir.I64, Args: []ir.Expr{
		ir.Get{Offset: guest.StateOffsets.FSRCexcOp, Typ: ir.I64},
		ir.Get{Offset: guest.StateOffsets.FSRCexcDep1H, Typ: ir.I64},
		ir.Get{Offset: guest.StateOffsets.FSRCexcDep1L, Typ: ir.I64},
		ir.Get{Offset: guest.StateOffsets.FSRCexcDep2H, Typ: ir.I64},
		ir.Get{Offset: guest.StateOffsets.FSRCexcDep2L, Typ: ir.I64},
		ir.Get{Offset: guest.StateOffsets.FSRCexcNDep, Typ: ir.I64},
	}})
	fcc := ir.Get{Offset: guest.StateOffsets.FSRFcc, Typ: ir.I64}
	rd := ir.Get{Offset: guest.StateOffsets.FSRRd, Typ: ir.I64}
	// Normalized -> native rounding mode; same self-inverse table as the
	// load side.
	rdNative := c.Block.AssignTmp(ir.Binop{Op: ir.OpAnd,
		L:   c.Block.AssignTmp(ir.Binop{Op: ir.OpSub, L: ir.Const{Typ: ir.I64, Bits: 4}, R: rd, Typ: ir.I64}),
		R:   ir.Const{Typ: ir.I64, Bits: 3},
		Typ: ir.I64})
	fsr := c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: cexc, R: fcc, Typ: ir.I64})
	fsr = c.Block.AssignTmp(ir.Binop{Op: ir.OpOr, L: fsr, R: c.Block.AssignTmp(ir.Binop{Op: ir.OpShl, L: rdNative, R: ir.Const{Typ: ir.I64, Bits: 30}, Typ: ir.I64}), Typ: ir.I64})

	typ := ir.I32
	if in.Mnemonic == OpSTXFSR {
		typ = ir.I64
	}
	narrowed := ir.Expr(fsr)
	if typ == ir.I32 {
		narrowed = c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: fsr, Typ: ir.I32})
	}
	c.Block.Append(ir.Store{Addr: addr, Val: narrowed})
	return nil
}

// emitCAS appends one compare-and-swap node and returns the old-value
// temporary zero-extended to 64 bits.
func (c *Compiler) emitCAS(addr, expected, newVal ir.Expr, typ ir.Type) ir.Expr {
	old := c.Block.NewTmp(typ)
	c.Block.Append(ir.CAS{Addr: addr, Expected: expected, New: newVal, Old: old, Typ: typ})
	oldRd := ir.RdTmp{Typ: typ, Tmp: old}
	if typ == ir.I64 {
		return oldRd
	}
	return c.Block.AssignTmp(ir.Unop{Op: ir.OpZeroExtend, Arg: oldRd, Typ: ir.I64})
}

// lowerAtomic handles LDSTUB, CASA/CASXA, SWAP. All three lower to the
// compare-and-swap node; for LDSTUB and SWAP the expected value is a
// plain (non-conditional) load of the location, which makes the swap
// unconditional while still surfacing the old value. CAS is restricted
// to the primary ASI.
func (c *Compiler) lowerAtomic(in DecodedInsn) error {
	addr := c.effectiveAddr(in)
	switch in.Mnemonic {
	case OpLDSTUB:
		expected := c.Block.AssignTmp(ir.Load{Addr: addr, Typ: ir.I8})
		old := c.emitCAS(addr, expected, ir.Const{Typ: ir.I8, Bits: 0xff}, ir.I8)
		c.putR(in.Rd, old)
		return nil

	case OpCASA, OpCASXA:
		if in.ASI != asiPrimary {
			return wrap(ErrUnsupportedVariant, "CASA/CASXA requires primary ASI, got %#x", in.ASI)
		}
		typ := ir.I32
		if in.Mnemonic == OpCASXA {
			typ = ir.I64
		}
		// CASA compares [addr] with rs2; on a match rd's value is stored
		// and either way rd receives the old memory value.
		expected := ir.Expr(c.getR(in.Rs2))
		newVal := ir.Expr(c.getR(in.Rd))
		if typ == ir.I32 {
			expected = c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: expected, Typ: ir.I32})
			newVal = c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: newVal, Typ: ir.I32})
		}
		old := c.emitCAS(addr, expected, newVal, typ)
		c.putR(in.Rd, old)
		return nil

	case OpSWAP:
		expected := c.Block.AssignTmp(ir.Load{Addr: addr, Typ: ir.I32})
		newVal := c.Block.AssignTmp(ir.Unop{Op: ir.OpNarrow, Arg: c.getR(in.Rd), Typ: ir.I32})
		old := c.emitCAS(addr, expected, newVal, ir.I32)
		c.putR(in.Rd, old)
		return nil

	default:
		return wrap(ErrNoDecode, "lowerAtomic: unhandled mnemonic %d", in.Mnemonic)
	}
}
