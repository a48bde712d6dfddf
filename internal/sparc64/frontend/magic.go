package frontend

import (
	"github.com/sirupsen/logrus"

	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// magicPreambleWord is `srax %g6, %g7, %g0` big-endian encoded, the
// reserved escape signal: 0x81 0x39 0x90 0x07.
const magicPreambleWord = 0x81399007

// IsMagicPreamble reports whether word is the reserved escape prefix.
func IsMagicPreamble(word uint32) bool {
	return word == magicPreambleWord
}

// Follower words for the four recognized sequences, each the big-endian
// encoding of `or %oN,%oN+1,%g0` (op=2, rd=%g0, op3=0x02).
const (
	followerClientRequest = 0x80120009 // or %o0,%o1,%g0
	followerGetNRAddr     = 0x8012400a // or %o1,%o2,%g0
	followerNoRedir       = 0x8012800b // or %o2,%o3,%g0
	followerInjectIR      = 0x8012c00c // or %o3,%o4,%g0
)

// lowerMagic dispatches the four magic-preamble behaviors. word2 is the
// already-fetched follower instruction's raw bits. Any other follower is
// a decode failure: no other bytes may follow the preamble.
func (c *Compiler) lowerMagic(word2 uint32) (DisResult, error) {
	switch word2 {
	case followerClientRequest:
		c.Block.Append(ir.Exit{Target: c.PC + 8, Kind: ir.JumpClientRequest})
		return DisResult{Length: 8, NextAction: ActionStopHere, Kind: StopClientRequest}, nil

	case followerGetNRAddr:
		c.putR(8, ir.Get{Offset: guest.StateOffsets.NRAddr, Typ: ir.I64}) // %o0 = NRADDR
		return DisResult{Length: 8, NextAction: ActionContinue}, nil

	case followerNoRedir:
		c.putR(15, ir.Const{Typ: ir.I64, Bits: c.PC})                 // %o7 = curPC
		target := ir.Get{Offset: guest.StateOffsets.R[1], Typ: ir.I64} // jump-and-link to %g1
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.NPC, Val: target})
		return DisResult{Length: 8, NextAction: ActionStopHere, Kind: StopNoRedir}, nil

	case followerInjectIR:
		// Splice in whatever IR the thread-local hook provides, cover the
		// two-instruction sequence with the cache-maintenance window, and
		// stop so the dispatcher retranslates the invalidated range.
		if c.InjectIR != nil {
			c.InjectIR(c.Block)
		} else {
			logrus.WithField("pc", c.PC).Debug("sparc64: inject-ir magic sequence with no hook installed")
		}
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.CMStart, Val: ir.Const{Typ: ir.I64, Bits: c.PC}})
		c.Block.Append(ir.Put{Offset: guest.StateOffsets.CMLen, Val: ir.Const{Typ: ir.I64, Bits: 8}})
		c.Block.Append(ir.Exit{Target: c.PC + 8, Kind: ir.JumpInvalidateICache})
		return DisResult{Length: 8, NextAction: ActionStopHere, Kind: StopInvalidateICache}, nil

	default:
		return DisResult{}, wrap(ErrNoDecode, "unrecognized magic-preamble follower %#08x", word2)
	}
}
