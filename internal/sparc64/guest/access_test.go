package guest

import "testing"

func TestCCRRoundTrip(t *testing.T) {
	var s State
	Initialise(&s)
	PutCCR(&s, 0xAB)
	if got := GetCCR(&s); got != 0xAB {
		t.Fatalf("GetCCR after PutCCR(0xAB) = %#x, want 0xab", got)
	}
}

func TestPutICCCarryPreservesOtherBits(t *testing.T) {
	var s State
	Initialise(&s)
	PutCCR(&s, 0xFF&^1) // everything set except icc.C
	PutICCCarry(&s, true)
	got := GetCCR(&s)
	if got&1 == 0 {
		t.Fatalf("icc.C not set after PutICCCarry(true): ccr=%#x", got)
	}
	if got&0xfe != 0xfe {
		t.Fatalf("PutICCCarry disturbed other flags: ccr=%#x", got)
	}
}

func TestPutXCCCarryIndependentOfICC(t *testing.T) {
	var s State
	Initialise(&s)
	PutCCR(&s, 0)
	PutXCCCarry(&s, true)
	got := GetCCR(&s)
	if got&(1<<4) == 0 {
		t.Fatalf("xcc.C not set: ccr=%#x", got)
	}
	if got&1 != 0 {
		t.Fatalf("icc.C should remain clear: ccr=%#x", got)
	}
}

func TestFSRRoundTripRoundingMode(t *testing.T) {
	var s State
	Initialise(&s)
	const sparcToZero = 1 << fsrShiftRD
	PutFSR(&s, sparcToZero)
	identity := func(op, d1h, d1l, d2h, d2l, ndep uint64) uint64 { return d1l & 0x1f }
	fsr := GetFSR(&s, identity)
	if (fsr>>fsrShiftRD)&3 != 1 {
		t.Fatalf("round-to-zero did not round-trip: fsr=%#x", fsr)
	}
}

func TestGSRRoundTrip(t *testing.T) {
	var s State
	Initialise(&s)
	PutGSR(&s, (uint64(0xdeadbeef)<<gsrShiftMask)|0x5)
	got := GetGSR(&s)
	if got&gsrMaskAlign != 0x5 {
		t.Fatalf("GSR align field lost: gsr=%#x", got)
	}
	if got>>gsrShiftMask != 0xdeadbeef {
		t.Fatalf("GSR mask field lost: gsr=%#x", got)
	}
}

func TestInitialiseSetsFEFAndASI(t *testing.T) {
	var s State
	Initialise(&s)
	if s.FPRS != FPRSFEF {
		t.Fatalf("FPRS = %#x, want FPRSFEF", s.FPRS)
	}
	if s.ASI != ASIPrimaryNoFault {
		t.Fatalf("ASI = %#x, want ASIPrimaryNoFault", s.ASI)
	}
}
