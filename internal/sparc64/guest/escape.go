package guest

// SaveHostFrame and LoadHostFrame are the Go-visible half of the
// native-escape path's steps (b) and (d): they save/restore the host
// frame pointer, stack pointer, and return register into the dedicated
// save slots a hand-written per-host-arch stub consumes, and are the last
// point this module controls before native code runs. This package has
// no function that reloads the guest-visible registers into native
// registers before the unrecognized instruction executes natively, or
// spills them back afterward: that move is architecture-specific
// assembly (there is no portable way to address a concrete native
// register from Go) and is left to the hand-written stub.
//
// Dropping to actual register manipulation (the rest of steps (b)/(d),
// installing the guest-state pointer in the TLS-reserved scratch
// register and moving every other guest register) is the hand-written
// stub's job, not this package's; no third-party library in the
// retrieval pack models raw register windows either, so this remains the
// one place this module knowingly stops short of full fidelity.
func SaveHostFrame(s *State, fp, sp, o7 uint64) {
	s.HostFP = fp
	s.HostSP = sp
	s.HostO7 = o7
}

func LoadHostFrame(s *State) (fp, sp, o7 uint64) {
	return s.HostFP, s.HostSP, s.HostO7
}
