// Package helpers implements the runtime support functions IR CleanCall
// and DirtyCall statements reference: ancillary-register reads, the FSR
// sanity check, and the dirty cryptographic hash helpers. The pure
// arithmetic helpers (integer CCR/condition, FP cexc/condition) live in
// condcode and fpexc; this package holds the remaining clean helpers plus
// every dirty one.
package helpers

import "github.com/sirupsen/logrus"

// Log is the package logger for emulation warnings; host programs may
// replace it to redirect output.
var Log = logrus.StandardLogger()

// EMNote mirrors the VEX EMNOTE vocabulary this lifter actually raises.
type EMNote uint32

const (
	EMNoteNone EMNote = iota
	EMNoteFPExceptionsUnsupported
)

// Clock models the %tick/%stick ancillary registers. Privileged
// ancillary state beyond what user code may observe via read-clock
// instructions is out of scope, so both are free-running counters with
// no relationship to wall-clock time; callers needing determinism
// substitute a fake clock at a higher layer.
type Clock struct {
	ticks uint64
}

func (c *Clock) ReadTick() uint64 {
	c.ticks++
	return c.ticks
}

func (c *Clock) ReadStick() uint64 {
	c.ticks++
	return c.ticks
}

// defaultClock backs the package-level read functions generated code
// resolves its %tick/%stick clean calls against.
var defaultClock Clock

// ReadTick is the clean helper behind a lifted `rd %tick` read.
func ReadTick() uint64 { return defaultClock.ReadTick() }

// ReadStick is the clean helper behind a lifted `rd %stick` read.
func ReadStick() uint64 { return defaultClock.ReadStick() }

// FSR trap-enable-mask and nonstandard-mode bit positions.
const (
	fsrShiftTEM = 23
	fsrMaskTEM  = 0x1f << fsrShiftTEM
	fsrBitNS    = 1 << 22
)

// CheckFSR implements the ldfsr/ldxfsr sanity check on the raw value
// about to be written to %fsr: any attempt to turn on trap-enable bits
// or the non-standard mode bit is rejected with an emulation warning,
// because the FPU deferred-trap mechanism is out of scope.
func CheckFSR(fsr uint64) EMNote {
	tem := (fsr & fsrMaskTEM) >> fsrShiftTEM
	ns := fsr&fsrBitNS != 0
	if tem != 0 || ns {
		Log.WithFields(logrus.Fields{
			"tem": tem,
			"ns":  ns,
		}).Warn("sparc64: ldfsr/ldxfsr attempted to enable TEM or NS; rejecting")
		return EMNoteFPExceptionsUnsupported
	}
	return EMNoteNone
}
