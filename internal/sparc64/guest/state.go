// Package guest defines the SPARC64 guest-state schema: the single record
// with a stable byte layout, plus the lifecycle helpers (initialise,
// get/put accessors) that operate on it. The layout
// mirrors the teacher's wazevoapi.OffsetData in spirit: offsets are
// published for the frontend to reference when compiling ir.Get/ir.Put,
// except here they are derived from the real struct's field addresses
// (unsafe pointer differences) rather than hand-maintained, so they can
// never drift out of sync.
package guest

import "unsafe"

// StackBias is the architectural constant added to %sp/%fp before any
// stack access.
const StackBias = 2047

// ASIPrimaryNoFault is the default ASI installed at thread creation.
const ASIPrimaryNoFault = 0x82

// FPRSFEF is the FP-register-state "enable" bit, forced on for the
// lifetime of the guest thread.
const FPRSFEF = 0x4

// State is the SPARC64 architectural state for one guest thread. External
// callers (the dispatcher, the native-escape stub) index into this
// struct by offset, so fields must never be reordered or removed without
// also updating every Offsets consumer — there is exactly one source of
// truth, this struct.
type State struct {
	// Event-check bookkeeping consulted by the dispatcher at block
	// boundaries for cooperative cancellation.
	HostEvCFailAddr uint64
	HostEvCCounter  uint64

	// General-purpose integer registers, one window's view. R0 is
	// architecturally zero; the frontend never emits a Put to its offset.
	R [32]uint64

	// Single-precision float slots. D0..D30 (even) and Q0..Q28 (multiples
	// of 4) are computed views over pairs/quads of these — see regs.go.
	F [32]uint32

	// Double-only slots D32, D34, ..., D62: register numbers 32 and up
	// exist only as doubles (and, paired, as Q32/Q36/.../Q60 quads) in the
	// SPARC V9 64-entry FP register file; DUpper[i] backs D(32+2*i).
	DUpper [16]uint64

	// Program counters.
	PC  uint64
	NPC uint64

	// Ancillary state.
	Y        uint64 // only low 32 bits meaningful
	ASI      uint64 // only low 8 bits meaningful
	FPRS     uint64
	GSRAlign uint64 // 3 bits
	GSRMask  uint64 // 32 bits

	// Lazy integer condition-code thunk.
	CCOp   uint64
	CCDep1 uint64
	CCDep2 uint64
	CCNDep uint64

	// Lazy FP cexc thunk.
	FSRCexcOp    uint64
	FSRCexcDep1H uint64
	FSRCexcDep1L uint64
	FSRCexcDep2H uint64
	FSRCexcDep2L uint64
	FSRCexcNDep  uint64

	FSRRd  uint64 // normalized rounding mode, ir.RoundingMode
	FSRFcc uint64 // four 2-bit fields

	// Host-register save slots for the native-execution escape path.
	// Only meaningful while a native-escape is in flight; the native
	// stub is the only other reader/writer.
	HostFP uint64
	HostSP uint64
	HostO7 uint64

	// Cache-maintenance window for FLUSH and IR injection.
	CMStart uint64
	CMLen   uint64

	EMNote     uint32
	NRAddr     uint64
	FSRScratch uint64
}

// Offsets publishes byte offsets of the State fields the frontend needs to
// reference when emitting ir.Get/ir.Put, computed once from the real
// struct layout.
type Offsets struct {
	R                                                     [32]int32
	F                                                     [32]int32
	DUpper                                                [16]int32
	PC, NPC                                               int32
	Y, ASI, FPRS, GSRAlign, GSRMask                        int32
	CCOp, CCDep1, CCDep2, CCNDep                           int32
	FSRCexcOp, FSRCexcDep1H, FSRCexcDep1L, FSRCexcDep2H    int32
	FSRCexcDep2L, FSRCexcNDep, FSRRd, FSRFcc               int32
	HostFP, HostSP, HostO7                                 int32
	CMStart, CMLen                                         int32
	EMNote, NRAddr, FSRScratch                             int32
}

// StateOffsets is computed once and shared by every frontend.Compiler.
var StateOffsets = computeOffsets()

func computeOffsets() Offsets {
	var s State
	base := uintptr(unsafe.Pointer(&s))
	off := func(p unsafe.Pointer) int32 { return int32(uintptr(p) - base) }

	var o Offsets
	for i := range s.R {
		o.R[i] = off(unsafe.Pointer(&s.R[i]))
	}
	for i := range s.F {
		o.F[i] = off(unsafe.Pointer(&s.F[i]))
	}
	for i := range s.DUpper {
		o.DUpper[i] = off(unsafe.Pointer(&s.DUpper[i]))
	}
	o.PC = off(unsafe.Pointer(&s.PC))
	o.NPC = off(unsafe.Pointer(&s.NPC))
	o.Y = off(unsafe.Pointer(&s.Y))
	o.ASI = off(unsafe.Pointer(&s.ASI))
	o.FPRS = off(unsafe.Pointer(&s.FPRS))
	o.GSRAlign = off(unsafe.Pointer(&s.GSRAlign))
	o.GSRMask = off(unsafe.Pointer(&s.GSRMask))
	o.CCOp = off(unsafe.Pointer(&s.CCOp))
	o.CCDep1 = off(unsafe.Pointer(&s.CCDep1))
	o.CCDep2 = off(unsafe.Pointer(&s.CCDep2))
	o.CCNDep = off(unsafe.Pointer(&s.CCNDep))
	o.FSRCexcOp = off(unsafe.Pointer(&s.FSRCexcOp))
	o.FSRCexcDep1H = off(unsafe.Pointer(&s.FSRCexcDep1H))
	o.FSRCexcDep1L = off(unsafe.Pointer(&s.FSRCexcDep1L))
	o.FSRCexcDep2H = off(unsafe.Pointer(&s.FSRCexcDep2H))
	o.FSRCexcDep2L = off(unsafe.Pointer(&s.FSRCexcDep2L))
	o.FSRCexcNDep = off(unsafe.Pointer(&s.FSRCexcNDep))
	o.FSRRd = off(unsafe.Pointer(&s.FSRRd))
	o.FSRFcc = off(unsafe.Pointer(&s.FSRFcc))
	o.HostFP = off(unsafe.Pointer(&s.HostFP))
	o.HostSP = off(unsafe.Pointer(&s.HostSP))
	o.HostO7 = off(unsafe.Pointer(&s.HostO7))
	o.CMStart = off(unsafe.Pointer(&s.CMStart))
	o.CMLen = off(unsafe.Pointer(&s.CMLen))
	o.EMNote = off(unsafe.Pointer(&s.EMNote))
	o.NRAddr = off(unsafe.Pointer(&s.NRAddr))
	o.FSRScratch = off(unsafe.Pointer(&s.FSRScratch))
	return o
}

// Initialise zero-initialises s and sets the fields that must be
// non-zero at thread creation.
func Initialise(s *State) {
	*s = State{}
	s.FPRS = FPRSFEF
	s.ASI = ASIPrimaryNoFault
	s.FSRRd = 0 // ir.RoundNearest
	s.FSRCexcOp = 0 // fpexc.OpCopy
}
