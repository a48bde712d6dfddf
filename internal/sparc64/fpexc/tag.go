// Package fpexc implements the lazy FP current-exceptions ("cexc") thunk
// model: one tag per (operation, precision) pair, the fcc-splice recipe
// FCMP uses to write the native 2-bit fcc encoding, and the FP condition
// table. The evaluator itself is host-dependent: on a SPARC64 host it
// re-executes the FP operation in-line to capture the real %fsr.cexc;
// this module ships only as a cross-compilable Go package, so off-target
// Evaluate is a build-tag-gated stub that panics for every tag but the
// copy tag. The frontend lifts FP opcodes regardless of host, so such
// thunks can reach the stub on a non-SPARC64 host.
package fpexc

// Op is the FSR_CEXC_OP tag: one tag per (operation, precision) pair,
// plus a copy tag, ported from the SPARC64_FSR_CEXC_OP_* enumeration of
// guest_sparc64_defs.h.
type Op uint64

const (
	OpCopy Op = iota

	OpF32ToF64
	OpF32ToF128
	OpF64ToF32
	OpF64ToF128
	OpF128ToF32
	OpF128ToF64
	OpF32ToI32
	OpF64ToI32
	OpF32ToI64
	OpF64ToI64
	OpF128ToI32
	OpF128ToI64
	OpI32ToF32
	OpI32ToF64
	OpI32ToF128
	OpI64ToF32
	OpI64ToF64
	OpI64ToF128

	OpFAdd32
	OpFAdd64
	OpFAdd128
	OpFSub32
	OpFSub64
	OpFSub128
	OpFMul32
	OpFMul64
	OpFMul128
	OpF32Mul64 // fsmuld: two F32 operands widened, F64 result
	OpF64Mul128 // fdmulq: two F64 operands widened, F128 result
	OpFDiv32
	OpFDiv64
	OpFDiv128
	OpFSqrt32
	OpFSqrt64
	OpFSqrt128

	OpFCmp32
	OpFCmp64
	OpFCmp128
	OpFCmpE32
	OpFCmpE64
	OpFCmpE128

	OpFMAdd32
	OpFMAdd64
	OpFMSub32
	OpFMSub64
)

// MaskCexc is SPARC64_FSR_MASK_CEXC: the five current-exception bits
// (nvc, ofc, ufc, dzc, nxc) packed into the low 5 bits of FSR.
const MaskCexc = 0x1f
