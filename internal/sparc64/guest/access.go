package guest

import "github.com/sparc64dbt/lift/internal/sparc64/condcode"

// CCR bit masks, matching SPARC64_CCR_MASK_* from guest_sparc64_defs.h.
const (
	maskICC = (1 << condcode.ShiftIC) | (1 << condcode.ShiftIV) |
		(1 << condcode.ShiftIZ) | (1 << condcode.ShiftIN)
	maskXCC = (1 << condcode.ShiftXC) | (1 << condcode.ShiftXV) |
		(1 << condcode.ShiftXZ) | (1 << condcode.ShiftXN)
	maskCCR = maskICC | maskXCC
)

// GetCCR materializes the 8-bit %ccr from the lazy thunk, for clients that
// need the flags register directly (ptrace-style state export). Ported
// from LibVEX_GuestSPARC64_get_ccr.
func GetCCR(s *State) uint64 {
	return condcode.EvaluateCCR(condcode.Op(s.CCOp), s.CCDep1, s.CCDep2, s.CCNDep)
}

// PutCCR collapses the thunk back to the COPY tag after an explicit write
// to %ccr (via %asr or a trap return), matching
// LibVEX_GuestSPARC64_put_ccr.
func PutCCR(s *State, ccr uint64) {
	s.CCOp = uint64(condcode.OpCopy)
	s.CCDep1 = ccr & maskCCR
	s.CCDep2 = 0
	s.CCNDep = 0
}

func manipulateCarry(s *State, set bool, mask uint64) {
	ccr := GetCCR(s)
	if set {
		ccr |= mask
	} else {
		ccr &^= mask
	}
	s.CCOp = uint64(condcode.OpCopy)
	s.CCDep1 = ccr
	s.CCDep2 = 0
	s.CCNDep = 0
}

// PutICCCarry sets or clears %icc.C in place without disturbing the other
// flags, collapsing the thunk to the COPY tag. Ported from
// LibVEX_GuestSPARC64_put_icc_c /
// sparc64_manipulate_carry.
func PutICCCarry(s *State, carry bool) {
	manipulateCarry(s, carry, 1<<condcode.ShiftIC)
}

// PutXCCCarry is the %xcc.C analogue of PutICCCarry.
func PutXCCCarry(s *State, carry bool) {
	manipulateCarry(s, carry, 1<<condcode.ShiftXC)
}

// FSR bit layout, matching guest_sparc64_defs.h.
const (
	fsrShiftRD = 30
	fsrMaskRD  = 0xC0000000
	fsrMaskFCC = 0x0000000000000C00 | 0x0000000300000000 | 0x0000000C00000000 | 0x0000003000000000
)

// irToFSRRd and fsrToIRRd implement the IR-rounding-mode
// to sparc64-%fsr.rd table from LibVEX_GuestSPARC64_get_fsr/put_fsr. The
// two encodings deliberately disagree (IR's "to zero"=11 is sparc64's
// "to zero"=01) so this is a real translation, not a reinterpretation.
var irToFSRRd = [4]uint64{0: 0, 1: 3, 2: 2, 3: 1} // Irrm_{NEAREST,NegINF,PosINF,ZERO}
var fsrToIRRd = [4]uint64{0: 0, 1: 3, 2: 2, 3: 1} // inverse is its own inverse

// GetFSR materializes %fsr from the lazy cexc thunk, the rounding mode,
// and fcc. Ported from LibVEX_GuestSPARC64_get_fsr. evaluateCexc is
// injected so this package does not need to import fpexc's host-dependent
// Evaluate directly (keeps guest free of build-tag concerns).
func GetFSR(s *State, evaluateCexc func(op, dep1H, dep1L, dep2H, dep2L, ndep uint64) uint64) uint64 {
	cexc := evaluateCexc(s.FSRCexcOp, s.FSRCexcDep1H, s.FSRCexcDep1L, s.FSRCexcDep2H, s.FSRCexcDep2L, s.FSRCexcNDep)
	fsr := cexc
	fsr |= s.FSRFcc
	fsr |= irToFSRRd[s.FSRRd] << fsrShiftRD
	return fsr
}

// PutFSR decomposes an explicit %fsr write back into the rounding mode,
// fcc, and a COPY-tagged cexc thunk. Ported from
// LibVEX_GuestSPARC64_put_fsr.
func PutFSR(s *State, fsr uint64) {
	s.FSRRd = fsrToIRRd[(fsr&fsrMaskRD)>>fsrShiftRD]
	s.FSRFcc = fsr & fsrMaskFCC
	s.FSRCexcOp = 0 // fpexc.OpCopy
	s.FSRCexcDep1H = 0
	s.FSRCexcDep1L = fsr & 0x1f
	s.FSRCexcDep2H = 0
	s.FSRCexcDep2L = 0
	s.FSRCexcNDep = 0
}

// GSR bit layout, matching guest_sparc64_defs.h.
const (
	gsrShiftAlign = 0
	gsrShiftMask  = 32
	gsrMaskAlign  = 0x7
)

// GetGSR reassembles the 64-bit %gsr from its split align/mask fields.
// Ported from LibVEX_GuestSPARC64_get_gsr.
func GetGSR(s *State) uint64 {
	return (s.GSRMask << gsrShiftMask) | (s.GSRAlign << gsrShiftAlign)
}

// PutGSR splits an explicit %gsr write into the align/mask fields.
// Ported from LibVEX_GuestSPARC64_put_gsr.
func PutGSR(s *State, gsr uint64) {
	s.GSRAlign = gsr & gsrMaskAlign
	s.GSRMask = gsr >> gsrShiftMask
}
