// Package sparc64 is the top-level façade over the SPARC64 guest
// front-end: it pairs one guest.State with the frontend.Compiler session
// lowering into it, and exposes the single lifter entry point. Everything
// else in this module is reachable through this one surface, mirroring
// how the teacher's wazevo.go pairs a compiledModule's state with its
// frontend/backend compiler pipeline behind one engine façade.
package sparc64

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/sparc64dbt/lift/internal/sparc64/frontend"
	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/helpers"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// ABIFlags is the ABI-flag bitset passed alongside the hardware-capability
// bitset. No flag has architecturally visible behaviour at this lift's
// level of fidelity yet — kernel-mode and privileged-register modelling
// are out of scope, which is where a calling-convention variant would
// otherwise show up — but the bitset is accepted and threaded through for
// a future flag to land on without another signature change.
type ABIFlags uint64

// Lifter is one guest thread's lowering session: the architectural state
// plus the frontend.Compiler appending IR on its behalf. Callers own the
// Decoder (an external bit-decoder collaborator); the compiler session
// allocates the ir.Block (reached through Block()) and holds the PC
// cursor and the pending-state slots threaded between instructions of
// the same basic block.
type Lifter struct {
	State *guest.State
	Caps  helpers.Capabilities
	ABI   ABIFlags

	comp *frontend.Compiler
}

// NewLifter allocates and initialises a fresh guest thread and its
// compiler session, ready to lower its first block at pc.
func NewLifter(dec frontend.Decoder, caps helpers.Capabilities, abi ABIFlags, pc uint64) *Lifter {
	s := &guest.State{}
	guest.Initialise(s)
	return &Lifter{
		State: s,
		Caps:  caps,
		ABI:   abi,
		comp:  frontend.NewCompiler(dec, caps, pc),
	}
}

// Block returns the ir.Block the current basic block's IR is accumulating
// into. Callers read this once a Lift call's DisResult reports
// ActionStopHere/ActionBackUp and hand it to the downstream optimizer.
func (l *Lifter) Block() *ir.Block { return l.comp.Block }

// StartBlock resets the session for a new basic block at pc, matching
// ir.Block.Reset's own reuse idiom; it is the caller's job to have fully
// drained (or discarded) the previous block first. A block that left its
// cross-instruction slots set (a branch whose delay slot was never
// lifted) is a caller defect, and fatal.
func (l *Lifter) StartBlock(pc uint64) {
	if err := l.comp.CheckClean(); err != nil {
		panic(errors.Wrapf(err, "sparc64: StartBlock at pc %#x", pc))
	}
	l.comp.Reset(pc)
}

// Lift is the lifter entry point: decode the instruction word at
// l.comp.PC (and, if code holds a second word, the one immediately
// following it — only consulted for the two-word magic-preamble escape)
// from the given raw instruction bytes and append its IR to the block
// under construction, advancing the PC cursor by the returned
// DisResult.Length.
//
// code must be big-endian (bigEndian must be true, or the call fails
// hard — this front-end never byte-swaps) and aligned to 4 bytes; it
// must hold at least 4 bytes and, when present, a second 4-byte word
// immediately follows the first with no gap. Both violations are a fatal
// "misaligned instruction buffer" precondition failure, not a recoverable
// decode error.
func (l *Lifter) Lift(code []byte, bigEndian bool) (frontend.DisResult, error) {
	if !bigEndian {
		return frontend.DisResult{}, errors.WithStack(frontend.ErrWrongEndian)
	}
	if l.comp.PC%4 != 0 || len(code) < 4 || len(code)%4 != 0 {
		return frontend.DisResult{}, errors.Wrapf(frontend.ErrMisaligned, "pc=%#x len=%d", l.comp.PC, len(code))
	}

	word := binary.BigEndian.Uint32(code[0:4])
	var nextWord uint32
	if len(code) >= 8 {
		nextWord = binary.BigEndian.Uint32(code[4:8])
	}

	res, err := l.comp.Lower(word, nextWord)
	if err != nil {
		return res, errors.Wrapf(err, "sparc64: lift failed at pc %#x", l.comp.PC)
	}

	switch res.NextAction {
	case frontend.ActionContinue:
		l.comp.PC += uint64(res.Length)
		l.comp.NPC = l.comp.PC + 4
	case frontend.ActionStopHere:
		l.comp.PC += uint64(res.Length)
	case frontend.ActionBackUp:
		// PC intentionally left where it was: lower.go already appended
		// an Unrecognized statement and expects the native-escape path
		// (an external collaborator) to consume the same bytes next.
	}

	return res, nil
}
