package frontend

import "github.com/pkg/errors"

// LiftError sentinels covering the lifter's error taxonomy. Callers use
// errors.Is against these rather than string matching.
var (
	// ErrNoDecode is returned for an unknown opcode not flagged
	// recognized-but-unimplemented.
	ErrNoDecode = errors.New("sparc64: no-decode")

	// ErrUnsupportedVariant covers a recognized opcode lifted with an
	// unsupported operand combination (block-load with non-block ASI,
	// CAS with non-primary ASI, Tcc other than TA, FNMADD/FNMSUB,
	// AES without the capability bit, bad key-expand imm5). Hash
	// instructions have no capability bit and are lifted on any host.
	ErrUnsupportedVariant = errors.New("sparc64: unsupported variant")

	// ErrMisaligned is fatal: the caller violated the instruction-buffer
	// alignment precondition.
	ErrMisaligned = errors.New("sparc64: misaligned instruction buffer")

	// ErrStalePendingState is fatal: pending_exit_stmt/pending_next_pc
	// were left set from a previous lift session.
	ErrStalePendingState = errors.New("sparc64: stale pending control-flow state")

	// ErrWrongEndian is fatal: the host byte order must be big-endian.
	ErrWrongEndian = errors.New("sparc64: host must be big-endian")
)

// wrap attaches a mnemonic-specific message to one of the sentinels above
// while keeping it matchable with errors.Is.
func wrap(sentinel error, format string, args ...interface{}) error {
	return errors.Wrapf(sentinel, format, args...)
}
