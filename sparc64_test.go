package sparc64

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/sparc64dbt/lift/internal/sparc64/frontend"
)

type mapDecoder map[uint32]frontend.DecodedInsn

func (d mapDecoder) Decode(word uint32) (frontend.DecodedInsn, bool) {
	in, ok := d[word]
	in.RawWord = word
	return in, ok
}

func TestLiftRejectsLittleEndian(t *testing.T) {
	l := NewLifter(mapDecoder{}, 0, 0, 0x1000)
	_, err := l.Lift([]byte{0x01, 0x00, 0x00, 0x00}, false)
	if !errors.Is(err, frontend.ErrWrongEndian) {
		t.Fatalf("err = %v, want ErrWrongEndian", err)
	}
}

func TestLiftRejectsShortBuffer(t *testing.T) {
	l := NewLifter(mapDecoder{}, 0, 0, 0x1000)
	_, err := l.Lift([]byte{0x01, 0x00}, true)
	if !errors.Is(err, frontend.ErrMisaligned) {
		t.Fatalf("err = %v, want ErrMisaligned", err)
	}
}

func TestLiftRejectsMisalignedPC(t *testing.T) {
	l := NewLifter(mapDecoder{}, 0, 0, 0x1002)
	_, err := l.Lift([]byte{0x01, 0x00, 0x00, 0x00}, true)
	if !errors.Is(err, frontend.ErrMisaligned) {
		t.Fatalf("err = %v, want ErrMisaligned", err)
	}
}

// TestClientRequestMagicEndToEnd covers the concrete scenario through the
// public surface: the preamble bytes 0x81 0x39 0x90 0x07 followed by
// `or %o0,%o1,%g0` stop the block with the client-request kind, length 8,
// and PC advanced by 8.
func TestClientRequestMagicEndToEnd(t *testing.T) {
	l := NewLifter(mapDecoder{}, 0, 0, 0x1000)
	code := []byte{
		0x81, 0x39, 0x90, 0x07, // srax %g6,%g7,%g0
		0x80, 0x12, 0x00, 0x09, // or %o0,%o1,%g0
	}
	res, err := l.Lift(code, true)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if res.Length != 8 || res.Kind != frontend.StopClientRequest {
		t.Fatalf("got (len=%d,%v), want (8,StopClientRequest)", res.Length, res.Kind)
	}
	if len(l.Block().Stmts) == 0 {
		t.Fatal("client-request lift emitted no IR")
	}
}

func TestLiftAdvancesDelaySlotDiscipline(t *testing.T) {
	const addWord = 0x96022001
	dec := mapDecoder{addWord: {Mnemonic: frontend.OpADD, Rs1: 8, HasImm: true, Imm: 1, Rd: 11}}
	l := NewLifter(dec, 0, 0, 0x1000)
	res, err := l.Lift([]byte{0x96, 0x02, 0x20, 0x01}, true)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if res.NextAction != frontend.ActionContinue || res.Length != 4 {
		t.Fatalf("got (%v,len=%d), want (ActionContinue,4)", res.NextAction, res.Length)
	}
}

func TestStartBlockPanicsOnStalePendingState(t *testing.T) {
	const baWord = 0x30800003
	dec := mapDecoder{baWord: {Mnemonic: frontend.OpBicc, Cond: 16 /* always */, Annul: true, Imm: 0xC}}
	l := NewLifter(dec, 0, 0, 0x1000)
	if _, err := l.Lift([]byte{0x30, 0x80, 0x00, 0x03}, true); err != nil {
		t.Fatalf("Lift: %v", err)
	}
	// The annulled delay slot was never consumed; starting a fresh block
	// now is a caller defect and must panic.
	defer func() {
		if recover() == nil {
			t.Fatal("StartBlock did not panic on stale pending state")
		}
	}()
	l.StartBlock(0x2000)
}
