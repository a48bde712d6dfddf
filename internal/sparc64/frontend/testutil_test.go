package frontend

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/sparc64dbt/lift/internal/sparc64/helpers"
	"github.com/sparc64dbt/lift/internal/sparc64/ir"
)

// findPut returns the Val of the last Put to offset before or at stmts'
// end, the idiom every structural test below uses to locate a particular
// guest-state write without caring which Tmp numbering the lowering
// happened to allocate around it.
func findPut(t *testing.T, stmts []ir.Stmt, offset int32) ir.Expr {
	t.Helper()
	for i := len(stmts) - 1; i >= 0; i-- {
		if p, ok := stmts[i].(ir.Put); ok && p.Offset == offset {
			return p.Val
		}
	}
	t.Fatalf("no Put to offset %d found in:\n%s", offset, pretty.Sprint(stmts))
	return nil
}

// resolveTmp follows a RdTmp back to the Expr its defining WrTmp holds, so
// a test can inspect what an AssignTmp call actually produced.
func resolveTmp(t *testing.T, stmts []ir.Stmt, e ir.Expr) ir.Expr {
	t.Helper()
	rd, ok := e.(ir.RdTmp)
	if !ok {
		return e
	}
	for _, s := range stmts {
		if w, ok := s.(ir.WrTmp); ok && w.Tmp == rd.Tmp {
			return w.Val
		}
	}
	t.Fatalf("no WrTmp defines %s in:\n%s", rd, pretty.Sprint(stmts))
	return nil
}

// lowerOne runs a single decoded instruction through a fresh compiler at
// pc 0x1000 and returns the session for structural inspection.
func lowerOne(t *testing.T, in DecodedInsn) *Compiler {
	t.Helper()
	const word = 0xdeadc0de
	dec := newFakeDecoder().add(word, in)
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	if _, err := c.Lower(word, 0); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	return c
}

// lowerOneErr is lowerOne for instructions expected to fail the lift.
func lowerOneErr(t *testing.T, in DecodedInsn) error {
	t.Helper()
	const word = 0xdeadc0de
	dec := newFakeDecoder().add(word, in)
	c := NewCompiler(dec, helpers.Capabilities(0), 0x1000)
	_, err := c.Lower(word, 0)
	return err
}

func countExits(stmts []ir.Stmt) int {
	n := 0
	for _, s := range stmts {
		if _, ok := s.(ir.Exit); ok {
			n++
		}
	}
	return n
}
