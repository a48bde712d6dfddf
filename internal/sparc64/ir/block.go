package ir

import "strings"

// Block is the mutable IR statement sink the dispatcher appends to as it
// lowers one decoded instruction (and, for delay-slot sequences, the
// instruction after it). Unlike wazero's ssa.Builder, Block never models a
// graph of basic blocks: the control-flow model here is two-instruction
// control sequences within one linear statement list, terminated by an
// Exit or by the dispatcher's own stop-here/continue-at decision
// (frontend.DisResult).
type Block struct {
	Stmts []Stmt

	nextTmp Tmp
	typs    []Type
}

// NewBlock returns an empty Block ready for lowering, analogous to
// ssa.Builder.Reset() preparing a builder for the next function: callers
// reuse one Block per translated basic block rather than allocating fresh
// on every call.
func NewBlock() *Block {
	return &Block{}
}

// Reset clears b for reuse. A Block (and the cross-instruction slots that
// accompany it in frontend.Compiler) must never carry state across
// translated blocks; Reset is the single place that guarantees that.
func (b *Block) Reset() {
	b.Stmts = b.Stmts[:0]
	b.typs = b.typs[:0]
	b.nextTmp = 0
}

// NewTmp allocates a fresh Tmp of the given Type, the IR-level equivalent
// of ssa.Builder.allocateValue.
func (b *Block) NewTmp(t Type) Tmp {
	id := b.nextTmp
	b.nextTmp++
	b.typs = append(b.typs, t)
	return id
}

// TypeOf reports the Type a Tmp was declared with.
func (b *Block) TypeOf(t Tmp) Type {
	return b.typs[t]
}

// Append inserts stmt at the tail of the block, analogous to
// ssa.Builder.InsertInstruction.
func (b *Block) Append(stmt Stmt) {
	b.Stmts = append(b.Stmts, stmt)
}

// AssignTmp is a convenience wrapper that allocates a Tmp of val's Type,
// appends the defining WrTmp, and returns a RdTmp reading it back — the
// common case of "compute this once, reference it twice" (e.g. a CC thunk
// operand also used by the arithmetic result).
func (b *Block) AssignTmp(val Expr) RdTmp {
	t := b.NewTmp(val.Type())
	b.Append(WrTmp{Tmp: t, Val: val})
	return RdTmp{Typ: val.Type(), Tmp: t}
}

// Format renders b for debugging, in the same spirit as
// ssa.builder.Format(): one statement per line, in program order.
func (b *Block) Format() string {
	var sb strings.Builder
	for _, s := range b.Stmts {
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
