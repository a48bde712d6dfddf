package helpers

import "testing"

func TestCheckFSRRejectsTEM(t *testing.T) {
	// The concrete scenario word: bit 24 is NVM inside the TEM field.
	if CheckFSR(0x01000000) != EMNoteFPExceptionsUnsupported {
		t.Fatal("expected EMNoteFPExceptionsUnsupported when TEM is non-zero")
	}
}

func TestCheckFSRRejectsNS(t *testing.T) {
	if CheckFSR(1<<22) != EMNoteFPExceptionsUnsupported {
		t.Fatal("expected EMNoteFPExceptionsUnsupported when NS is set")
	}
}

func TestCheckFSRAcceptsClean(t *testing.T) {
	// Rounding mode, fcc, and cexc bits are all fine; only TEM/NS reject.
	if CheckFSR(0xC0000C1F) != EMNoteNone {
		t.Fatal("expected EMNoteNone when TEM and NS are both clear")
	}
}

func TestClockAdvances(t *testing.T) {
	var c Clock
	a := c.ReadTick()
	b := c.ReadTick()
	if b <= a {
		t.Fatalf("ReadTick did not advance: %d then %d", a, b)
	}
}

func TestPackageReadTickAdvances(t *testing.T) {
	a := ReadTick()
	b := ReadStick()
	if b <= a {
		t.Fatalf("package clock did not advance: %d then %d", a, b)
	}
}
