package ir

import "fmt"

// Tmp identifies a temporary, the SSA-like value produced by a WrTmp
// statement within a single Block. Unlike wazero's ssa.Value, a Tmp is
// scoped to one Block: the frontend never builds a control-flow graph of
// Blocks, it only ever appends statements to the current block.
type Tmp uint32

// String implements fmt.Stringer.
func (t Tmp) String() string {
	return fmt.Sprintf("t%d", uint32(t))
}

// Expr is a side-effect-free IR expression. Every concrete expression type
// below corresponds to one family of instruction semantics; Type() reports
// the type a consuming WrTmp must declare.
type Expr interface {
	isExpr()
	Type() Type
	String() string
}

// Const is an immediate value, zero/sign extended into Bits by the caller
// for whatever Type is declared.
type Const struct {
	Typ  Type
	Bits uint64
}

func (Const) isExpr()      {}
func (c Const) Type() Type { return c.Typ }
func (c Const) String() string {
	return fmt.Sprintf("0x%x:%s", c.Bits, c.Typ)
}

// RdTmp reads a previously defined Tmp.
type RdTmp struct {
	Typ Type
	Tmp Tmp
}

func (RdTmp) isExpr()      {}
func (r RdTmp) Type() Type { return r.Typ }
func (r RdTmp) String() string {
	return r.Tmp.String()
}

// Get reads a field of the guest state at a fixed byte Offset, the IR-level
// equivalent of VEX's IRExpr_Get. Guest state is a single record with a
// stable byte layout; Offset is always a compile-time constant produced
// from guest.Offsets.
type Get struct {
	Offset int32
	Typ    Type
}

func (Get) isExpr()      {}
func (g Get) Type() Type { return g.Typ }
func (g Get) String() string {
	return fmt.Sprintf("GET:%s(%d)", g.Typ, g.Offset)
}

// Load reads guest memory. ASI, when HasASI is true, qualifies the access;
// when false the access uses the implicit/default ASI.
type Load struct {
	Addr   Expr
	Typ    Type
	HasASI bool
	ASI    Expr // present only if HasASI
}

func (Load) isExpr()      {}
func (l Load) Type() Type { return l.Typ }
func (l Load) String() string {
	if l.HasASI {
		return fmt.Sprintf("LD%s(%s)#%s", l.Typ, l.Addr, l.ASI)
	}
	return fmt.Sprintf("LD%s(%s)", l.Typ, l.Addr)
}

// Unop is a unary operation.
type Unop struct {
	Op  Op
	Arg Expr
	Typ Type
}

func (Unop) isExpr()      {}
func (u Unop) Type() Type { return u.Typ }
func (u Unop) String() string {
	return fmt.Sprintf("%s(%s)", u.Op, u.Arg)
}

// Binop is a binary operation.
type Binop struct {
	Op   Op
	L, R Expr
	Typ  Type
}

func (Binop) isExpr()      {}
func (b Binop) Type() Type { return b.Typ }
func (b Binop) String() string {
	return fmt.Sprintf("%s(%s,%s)", b.Op, b.L, b.R)
}

// Triop is a ternary operation, used exclusively for rounding-mode
// consuming FP operations: (rounding_mode, src1, src2).
type Triop struct {
	Op       Op
	Rounding Expr // I32-typed, holds a RoundingMode value
	A, B     Expr
	Typ      Type
}

func (Triop) isExpr()      {}
func (t Triop) Type() Type { return t.Typ }
func (t Triop) String() string {
	return fmt.Sprintf("%s(%s,%s,%s)", t.Op, t.Rounding, t.A, t.B)
}

// Qop is a 4-operand operation: fused multiply-add. Used for FMAf/FMSub,
// whose three source operands are additionally packed into the cexc thunk.
type Qop struct {
	Op          Op
	Rounding    Expr
	A, B, C     Expr
	Typ         Type
}

func (Qop) isExpr()      {}
func (q Qop) Type() Type { return q.Typ }
func (q Qop) String() string {
	return fmt.Sprintf("%s(%s,%s,%s,%s)", q.Op, q.Rounding, q.A, q.B, q.C)
}

// Mux0X is a branch-free conditional select: cond == 0 picks IfZero,
// otherwise IfNonZero. Used to lower MOVcc/MOVfcc/MOVr/FMOVcc/FMOVfcc.
type Mux0X struct {
	Cond              Expr
	IfZero, IfNonZero Expr
	Typ               Type
}

func (Mux0X) isExpr()      {}
func (m Mux0X) Type() Type { return m.Typ }
func (m Mux0X) String() string {
	return fmt.Sprintf("mux0x(%s,%s,%s)", m.Cond, m.IfZero, m.IfNonZero)
}

// CleanCall invokes one of the side-effect-free helpers called from
// generated code. The helper is identified by name only here; the code
// generator resolves it to the concrete host function.
type CleanCall struct {
	Helper string
	Args   []Expr
	Typ    Type
}

func (CleanCall) isExpr()      {}
func (c CleanCall) Type() Type { return c.Typ }
func (c CleanCall) String() string {
	return fmt.Sprintf("%s(...)", c.Helper)
}
