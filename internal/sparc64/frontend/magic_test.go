package frontend

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/sparc64dbt/lift/internal/sparc64/guest"
	"github.com/sparc64dbt/lift/internal/sparc64/helpers"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// TestClientRequestMagic covers the concrete scenario: srax %g6,%g7,%g0
// followed by or %o0,%o1,%g0 must stop with the client-request kind and a
// block length of 8 bytes.
func TestClientRequestMagic(t *testing.T) {
	c := NewCompiler(newFakeDecoder(), helpers.Capabilities(0), 0x8000)

	res, err := c.Lower(magicPreambleWord, followerClientRequest)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.Length != 8 {
		t.Fatalf("Length = %d, want 8", res.Length)
	}
	if res.NextAction != ActionStopHere || res.Kind != StopClientRequest {
		t.Fatalf("got (%v,%v), want (ActionStopHere,StopClientRequest)", res.NextAction, res.Kind)
	}
	exit, ok := c.Block.Stmts[len(c.Block.Stmts)-1].(ir.Exit)
	if !ok || exit.Kind != ir.JumpClientRequest || exit.Target != 0x8008 {
		t.Fatalf("trailing stmt = %#v, want client-request Exit to 0x8008", c.Block.Stmts[len(c.Block.Stmts)-1])
	}
}

func TestGetNRAddrMagicContinues(t *testing.T) {
	c := NewCompiler(newFakeDecoder(), helpers.Capabilities(0), 0x8000)

	res, err := c.Lower(magicPreambleWord, followerGetNRAddr)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.Length != 8 || res.NextAction != ActionContinue {
		t.Fatalf("got (len=%d,%v), want (8,ActionContinue)", res.Length, res.NextAction)
	}
	o0 := findPut(t, c.Block.Stmts, guest.StateOffsets.R[8])
	if g, ok := o0.(ir.Get); !ok || g.Offset != guest.StateOffsets.NRAddr {
		t.Fatalf("%%o0 write = %#v, want Get(NRAddr)", o0)
	}
}

func TestNoRedirMagicLinksAndJumps(t *testing.T) {
	c := NewCompiler(newFakeDecoder(), helpers.Capabilities(0), 0x8000)

	res, err := c.Lower(magicPreambleWord, followerNoRedir)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.Kind != StopNoRedir {
		t.Fatalf("Kind = %v, want StopNoRedir", res.Kind)
	}
	o7 := findPut(t, c.Block.Stmts, guest.StateOffsets.R[15])
	if cst, ok := o7.(ir.Const); !ok || cst.Bits != 0x8000 {
		t.Fatalf("%%o7 write = %#v, want Const(0x8000)", o7)
	}
	npc := findPut(t, c.Block.Stmts, guest.StateOffsets.NPC)
	if g, ok := npc.(ir.Get); !ok || g.Offset != guest.StateOffsets.R[1] {
		t.Fatalf("NPC write = %#v, want Get(%%g1)", npc)
	}
}

func TestInjectIRMagicRunsHookAndSetsWindow(t *testing.T) {
	c := NewCompiler(newFakeDecoder(), helpers.Capabilities(0), 0x8000)
	hookRan := false
	c.InjectIR = func(b *ir.Block) {
		hookRan = true
		b.Append(ir.MemFence{})
	}

	res, err := c.Lower(magicPreambleWord, followerInjectIR)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !hookRan {
		t.Fatal("InjectIR hook was not invoked")
	}
	if res.Kind != StopInvalidateICache {
		t.Fatalf("Kind = %v, want StopInvalidateICache", res.Kind)
	}
	cmStart := findPut(t, c.Block.Stmts, guest.StateOffsets.CMStart)
	if cst, ok := cmStart.(ir.Const); !ok || cst.Bits != 0x8000 {
		t.Fatalf("CMStart = %#v, want Const(0x8000)", cmStart)
	}
	cmLen := findPut(t, c.Block.Stmts, guest.StateOffsets.CMLen)
	if cst, ok := cmLen.(ir.Const); !ok || cst.Bits != 8 {
		t.Fatalf("CMLen = %#v, want Const(8)", cmLen)
	}
}

func TestUnknownMagicFollowerIsDecodeError(t *testing.T) {
	c := NewCompiler(newFakeDecoder(), helpers.Capabilities(0), 0x8000)

	_, err := c.Lower(magicPreambleWord, 0x01000000) // a plain nop may not follow
	if !errors.Is(err, ErrNoDecode) {
		t.Fatalf("err = %v, want ErrNoDecode", err)
	}
}
