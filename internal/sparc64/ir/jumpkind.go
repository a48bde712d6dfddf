package ir

// JumpKind classifies what an Exit (or a Block's fall-through) means to the
// dispatcher that runs translated blocks, the way the decoded-instruction
// dispatcher needs to know whether a branch target starts a new block,
// enters a syscall, or re-enters the scheduler. This is intentionally a
// small, closed set covering exactly these control-transfer flavors.
type JumpKind byte

const (
	// JumpBoring is an ordinary branch/call continuation.
	JumpBoring JumpKind = iota
	// JumpCall marks a CALL/JMPL return-address write (the branch itself
	// still behaves like JumpBoring; this is informational for the code
	// generator's return-address prediction).
	JumpCall
	// JumpSyscall is TA with the normal syscall vector.
	JumpSyscall
	// JumpSyscallGetContext is TA mapped to the getcontext vector.
	JumpSyscallGetContext
	// JumpSyscallSetContext is TA mapped to the setcontext vector.
	JumpSyscallSetContext
	// JumpFastTrap is TA mapped to a host that spills the immediate into
	// %o0 before trapping.
	JumpFastTrap
	// JumpYield is PAUSE: an unconditional exit back to the scheduler.
	JumpYield
	// JumpClientRequest is the magic-preamble client-request escape.
	JumpClientRequest
	// JumpNoRedir is the magic-preamble no-redirection jmpl escape.
	JumpNoRedir
	// JumpInvalidateICache is FLUSH / the IR-injection magic-preamble
	// escape; CMSTART/CMLEN describe the affected range.
	JumpInvalidateICache
)

// String implements fmt.Stringer.
func (k JumpKind) String() string {
	switch k {
	case JumpBoring:
		return "boring"
	case JumpCall:
		return "call"
	case JumpSyscall:
		return "syscall"
	case JumpSyscallGetContext:
		return "syscall-getcontext"
	case JumpSyscallSetContext:
		return "syscall-setcontext"
	case JumpFastTrap:
		return "fast-trap"
	case JumpYield:
		return "yield"
	case JumpClientRequest:
		return "client-request"
	case JumpNoRedir:
		return "no-redir"
	case JumpInvalidateICache:
		return "invalidate-icache"
	default:
		return "invalid"
	}
}
