package frontend

import "github.com/sparc64dbt/lift/internal/sparc64/ir"

// hasPendingDelaySlot reports whether the compiler is mid-way through one
// of the two-instruction control sequences: the branch/call/
// jmpl itself has been lowered, and the very next Lower call must either
// lift the delay-slot instruction (pendingExit, pendingNextPC,
// pendingDynamicJump) or skip it entirely (skipDelaySlot).
func (c *Compiler) hasPendingDelaySlot() bool {
	return c.pendingExit != nil || c.pendingNextPC != nil || c.pendingDynamicJump
}

// flushPending appends whatever the pending control-transfer requires once
// the delay-slot instruction has been lifted into the block, and reports
// the DisResult for that call. delayLen is the byte length of the
// delay-slot instruction just lifted (always 4; SPARC instructions are
// fixed-width).
func (c *Compiler) flushPending(delayLen int) DisResult {
	switch {
	case c.pendingExit != nil:
		c.Block.Append(c.pendingExit)
		c.pendingExit = nil
		return DisResult{Length: delayLen, NextAction: ActionStopHere, Kind: StopNone}
	case c.pendingNextPC != nil:
		target := *c.pendingNextPC
		c.Block.Append(ir.Exit{Target: target, Kind: ir.JumpBoring})
		c.pendingNextPC = nil
		return DisResult{Length: delayLen, NextAction: ActionStopHere, Kind: StopNone,
			ContinueAt: target, HasContinueAt: true}
	case c.pendingDynamicJump:
		// JMPL already wrote the dynamic target to NPC when it was
		// lowered; the block simply ends here and the outer dispatcher
		// re-reads NPC to find where to continue.
		c.pendingDynamicJump = false
		return DisResult{Length: delayLen, NextAction: ActionStopHere, Kind: StopNone}
	default:
		return DisResult{Length: delayLen, NextAction: ActionContinue}
	}
}

// flushSkippedDelaySlot handles the unconditional-and-annulled pattern:
// the delay-slot word is never decoded at all, only skipped over, and the
// stashed jump is appended immediately.
func (c *Compiler) flushSkippedDelaySlot() DisResult {
	target := *c.pendingNextPC
	c.Block.Append(ir.Exit{Target: target, Kind: ir.JumpBoring})
	c.pendingNextPC = nil
	c.skipDelaySlot = false
	return DisResult{Length: 4, NextAction: ActionStopHere, Kind: StopNone,
		ContinueAt: target, HasContinueAt: true}
}
