package ir

import "fmt"

// Stmt is one statement appended to the current Block. Statements execute
// in the order they appear in Block.Stmts; any reordering happens at lift
// time, never at execution time: the IR itself is always emitted in final
// order.
type Stmt interface {
	isStmt()
	String() string
}

// Put writes a guest-state field at a fixed byte Offset. Writes to guest
// R0 are not observable, so they are simply never emitted by the frontend
// rather than modelled as a conditional Put.
type Put struct {
	Offset int32
	Val    Expr
}

func (Put) isStmt() {}
func (p Put) String() string {
	return fmt.Sprintf("PUT(%d) = %s", p.Offset, p.Val)
}

// WrTmp defines a Tmp once within the Block.
type WrTmp struct {
	Tmp Tmp
	Val Expr
}

func (WrTmp) isStmt() {}
func (w WrTmp) String() string {
	return fmt.Sprintf("%s = %s", w.Tmp, w.Val)
}

// Store writes guest memory, optionally ASI-qualified.
type Store struct {
	Addr   Expr
	Val    Expr
	HasASI bool
	ASI    Expr
}

func (Store) isStmt() {}
func (s Store) String() string {
	if s.HasASI {
		return fmt.Sprintf("ST(%s) = %s #%s", s.Addr, s.Val, s.ASI)
	}
	return fmt.Sprintf("ST(%s) = %s", s.Addr, s.Val)
}

// RegRange names a byte range of guest state a DirtyCall reads or writes,
// so the optimizer can see the data flow through an opaque helper call.
// The dispatcher declares these byte ranges itself.
type RegRange struct {
	Offset int32
	Length int32
}

// DirtyCall invokes a state-mutating helper (MD5, SHA-1, SHA-256, SHA-512),
// declaring exactly which guest-state byte ranges it reads and writes. The
// guest-state pointer itself is an implicit first argument; Args carries
// the remaining explicit operands.
type DirtyCall struct {
	Helper string
	Args   []Expr
	Reads  []RegRange
	Writes []RegRange
}

func (DirtyCall) isStmt() {}
func (d DirtyCall) String() string {
	return fmt.Sprintf("DIRTY %s(reads=%v writes=%v)", d.Helper, d.Reads, d.Writes)
}

// CAS is an atomic compare-and-swap: if the Typ-sized value at Addr equals
// Expected, New is stored; either way the old memory value is written to
// the Old temporary. LDSTUB/CASA/CASXA/SWAP all lower to this one node;
// the downstream code generator is responsible for host-atomic
// realisation.
type CAS struct {
	Addr     Expr
	Expected Expr
	New      Expr
	Old      Tmp
	Typ      Type
}

func (CAS) isStmt() {}
func (c CAS) String() string {
	return fmt.Sprintf("%s = CAS%s(%s, %s, %s)", c.Old, c.Typ, c.Addr, c.Expected, c.New)
}

// MemFence is an unconditional memory-ordering fence: MEMBAR, and the
// mandatory post-SAVE/RESTORE window-flip fence.
type MemFence struct{}

func (MemFence) isStmt()     {}
func (MemFence) String() string { return "MFENCE" }

// Exit is a conditional (Cond != nil) or unconditional (Cond == nil) exit
// from the current block to Target. Exactly one Exit may be "pending"
// across a delay-slot lift session; once emitted into a Block it is a
// normal trailing statement.
type Exit struct {
	Cond   Expr // nil means unconditional
	Target uint64
	Kind   JumpKind
}

func (Exit) isStmt() {}
func (e Exit) String() string {
	if e.Cond == nil {
		return fmt.Sprintf("exit-always(%s) -> 0x%x", e.Kind, e.Target)
	}
	return fmt.Sprintf("if (%s) exit(%s) -> 0x%x", e.Cond, e.Kind, e.Target)
}

// Unrecognized marks a decoder-flagged "recognized-but-unimplemented"
// instruction. The dispatcher stops the block here; the runtime honors
// this marker via the native-escape path.
type Unrecognized struct {
	RawWord uint32
}

func (Unrecognized) isStmt() {}
func (u Unrecognized) String() string {
	return fmt.Sprintf("UNRECOGNIZED(0x%08x)", u.RawWord)
}
