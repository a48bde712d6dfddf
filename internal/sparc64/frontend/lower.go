package frontend

import "github.com/sparc64dbt/lift/internal/sparc64/ir"

// Lower lifts exactly one more step of the instruction stream: each
// handler either succeeds (the IR needed is appended to c.Block and a
// DisResult describing how far it advanced is returned) or fails, in
// which case Lower synthesizes a no-decode result (length 0, stop-here,
// no-decode kind, PC left where it was) and returns the error alongside
// it.
//
// word is the instruction word at c.PC. nextWord is only consulted when
// word is the magic-preamble escape sequence, which is a two-word
// instruction; it is ignored otherwise.
func (c *Compiler) Lower(word, nextWord uint32) (DisResult, error) {
	if c.skipDelaySlot {
		return c.flushSkippedDelaySlot(), nil
	}

	if c.hasPendingDelaySlot() {
		return c.lowerDelaySlot(word)
	}

	if IsMagicPreamble(word) {
		res, err := c.lowerMagic(nextWord)
		if err != nil {
			return DisResult{Length: 0, NextAction: ActionStopHere, Kind: StopNoDecode}, err
		}
		return res, nil
	}

	in, ok := c.Dec.Decode(word)
	if !ok {
		return DisResult{Length: 0, NextAction: ActionStopHere, Kind: StopNoDecode},
			wrap(ErrNoDecode, "no decode for word %#08x at pc %#x", word, c.PC)
	}
	if in.RecognizedButUnimplemented {
		c.Block.Append(ir.Unrecognized{RawWord: in.RawWord})
		return DisResult{Length: 0, NextAction: ActionBackUp, Kind: StopNoDecode}, nil
	}

	res, err := c.dispatch(in)
	if err != nil {
		return DisResult{Length: 0, NextAction: ActionStopHere, Kind: StopNoDecode}, err
	}
	return res, nil
}

// lowerDelaySlot lifts the instruction occupying a delay slot ordinarily
// (it is architecturally never itself a branch) and then flushes whatever
// control transfer is pending.
func (c *Compiler) lowerDelaySlot(word uint32) (DisResult, error) {
	in, ok := c.Dec.Decode(word)
	if !ok {
		return DisResult{Length: 0, NextAction: ActionStopHere, Kind: StopNoDecode},
			wrap(ErrNoDecode, "no decode for delay-slot word %#08x at pc %#x", word, c.PC)
	}
	if in.RecognizedButUnimplemented {
		c.Block.Append(ir.Unrecognized{RawWord: in.RawWord})
		return DisResult{Length: 0, NextAction: ActionBackUp, Kind: StopNoDecode}, nil
	}
	if _, err := c.dispatch(in); err != nil {
		return DisResult{Length: 0, NextAction: ActionStopHere, Kind: StopNoDecode}, err
	}
	return c.flushPending(4), nil
}

// simple is the DisResult for any instruction with no control-flow effect
// of its own.
func (c *Compiler) simple() DisResult {
	return DisResult{Length: 4, NextAction: ActionContinue}
}

// dispatch routes a decoded instruction to its family handler. Control-
// flow handlers may leave pendingExit/pendingNextPC/skipDelaySlot/
// pendingDynamicJump set on c; dispatch itself never consumes them — that
// is lowerDelaySlot/flushPending's job on the following call.
func (c *Compiler) dispatch(in DecodedInsn) (DisResult, error) {
	switch in.Mnemonic {

	case OpADD, OpADDcc, OpADDC, OpADDCcc, OpSUB, OpSUBcc, OpSUBC, OpSUBCcc,
		OpAND, OpANDcc, OpANDN, OpANDNcc, OpOR, OpORcc, OpORN, OpORNcc,
		OpXOR, OpXORcc, OpXNOR, OpXNORcc:
		if err := c.lowerALU(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpSLL, OpSLLX, OpSRL, OpSRLX, OpSRA, OpSRAX:
		if err := c.lowerShift(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpMULX, OpSMUL, OpSMULcc, OpUMUL, OpUMULcc,
		OpSDIVX, OpUDIVX, OpSDIV, OpSDIVcc, OpUDIV, OpUDIVcc, OpLZCNT:
		if err := c.lowerMulDiv(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpLDUW, OpLDSW, OpLDX, OpLDUB, OpLDSB, OpLDUH, OpLDSH:
		if err := c.lowerLoad(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpSTW, OpSTX, OpSTB, OpSTH:
		if err := c.lowerStore(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpLDF, OpLDDF, OpLDBLOCKF:
		if err := c.lowerFPLoad(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpSTF, OpSTDF:
		if err := c.lowerFPStore(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpLDFSR, OpLDXFSR:
		if err := c.lowerLDFSR(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpSTFSR, OpSTXFSR:
		if err := c.lowerSTFSR(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpLDSTUB, OpCASA, OpCASXA, OpSWAP:
		if err := c.lowerAtomic(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpSAVE:
		if err := c.lowerSave(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpRESTORE:
		if err := c.lowerRestore(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpRETURN:
		if err := c.lowerReturn(in); err != nil {
			return DisResult{}, err
		}
		c.pendingDynamicJump = true
		return c.simple(), nil

	case OpBicc, OpBN:
		if err := c.lowerBicc(in, in.Imm); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpBPcc:
		if err := c.lowerBPcc(in, in.Imm); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFBfcc, OpFBPfcc:
		if err := c.lowerFBfcc(in, in.Imm, fccFieldFromCond(in)); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpCBcond:
		if err := c.lowerCBcond(in, in.Imm); err != nil {
			return DisResult{}, err
		}
		return DisResult{Length: 4, NextAction: ActionStopHere, Kind: StopNone}, nil

	case OpCALL:
		if err := c.lowerCall(in.Imm); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpJMPL:
		if err := c.lowerJMPL(in); err != nil {
			return DisResult{}, err
		}
		c.pendingDynamicJump = true
		return c.simple(), nil

	case OpTA:
		kind := trapKindFromCond(in.Cond)
		if err := c.lowerTrapAlways(in, kind); err != nil {
			return DisResult{}, err
		}
		return DisResult{Length: 4, NextAction: ActionStopHere, Kind: kind}, nil

	case OpPAUSE:
		if err := c.lowerPause(); err != nil {
			return DisResult{}, err
		}
		return DisResult{Length: 4, NextAction: ActionStopHere, Kind: StopYield}, nil

	case OpFADDs, OpFADDd, OpFADDq, OpFSUBs, OpFSUBd, OpFSUBq,
		OpFMULs, OpFMULd, OpFMULq, OpFsMULd, OpFdMULq,
		OpFDIVs, OpFDIVd, OpFDIVq, OpFSQRTs, OpFSQRTd, OpFSQRTq:
		if err := c.lowerFPArith(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFCMPs, OpFCMPd, OpFCMPq, OpFCMPEs, OpFCMPEd, OpFCMPEq:
		if err := c.lowerFPCompare(in, fccFieldFromRd(in)); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFMOVcc, OpFMOVfcc, OpMOVcc, OpMOVfcc, OpMOVr:
		if err := c.lowerFPMove(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFABSs, OpFABSd, OpFABSq, OpFNEGs, OpFNEGd, OpFNEGq:
		if err := c.lowerFPAbsNeg(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFITOs, OpFITOd, OpFITOq, OpFXTOs, OpFXTOd, OpFXTOq,
		OpFSTOi, OpFDTOi, OpFQTOi, OpFSTOx, OpFDTOx, OpFQTOx,
		OpFSTOd, OpFSTOq, OpFDTOs, OpFDTOq, OpFQTOs, OpFQTOd:
		if err := c.lowerFPConvert(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFMADDs, OpFMADDd, OpFMSUBs, OpFMSUBd,
		OpFNMADDs, OpFNMADDd, OpFNMSUBs, OpFNMSUBd:
		if err := c.lowerFMA(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFAESENCX1, OpFAESDECX1, OpFAESKEYX1:
		if err := c.lowerAES(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpMD5, OpSHA1, OpSHA256, OpSHA512:
		if err := c.lowerHash(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpRDY, OpWRY, OpRDCCR, OpWRCCR, OpRDASI, OpWRASI,
		OpRDGSR, OpWRGSR, OpRDFPRS, OpWRFPRS, OpRDTICK, OpRDSTICK, OpRDPC:
		if err := c.lowerASR(in); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFLUSH:
		return c.lowerFlush(in)

	case OpMEMBAR:
		if err := c.lowerMembar(); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpNOP:
		if err := c.lowerNop(); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	case OpFLUSHW:
		if err := c.lowerFlushW(); err != nil {
			return DisResult{}, err
		}
		return c.simple(), nil

	default:
		return DisResult{}, wrap(ErrNoDecode, "dispatch: unhandled mnemonic %d", in.Mnemonic)
	}
}

// fccFieldFromCond extracts which of fcc0..fcc3 a FBfcc/FBPfcc reads.
// FBfcc (the 32-bit-displacement form) always reads fcc0; FBPfcc packs
// the 2-bit selector into Cond's bits [5:4] above the 4-bit condition
// itself, mirroring how BPcc packs %icc/%xcc selection into its own
// condition field.
func fccFieldFromCond(in DecodedInsn) int {
	if in.Mnemonic == OpFBfcc {
		return 0
	}
	return int((in.Cond >> 4) & 0x3)
}

// fccFieldFromRd extracts which of fcc0..fcc3 an FCMP{,E}{s,d,q} writes.
// FCMP's rd field is otherwise unused on V9 and instead selects the fcc
// field (architecturally encoded in rd's low 2 bits).
func fccFieldFromRd(in DecodedInsn) int {
	return in.Rd & 0x3
}

// trapKindFromCond maps the decoder's Cond sidecar for TA to the
// dispatcher-visible StopKind distinguishing which host-OS vector applies:
// 1 is the software getcontext entry, 2 setcontext, 3 a fast-trap
// spilling its own immediate, and any other value generic syscall
// dispatch.
func trapKindFromCond(cond uint64) StopKind {
	switch cond {
	case 1:
		return StopSyscallGetContext
	case 2:
		return StopSyscallSetContext
	case 3:
		return StopFastTrap
	default:
		return StopSyscall
	}
}
