package guest

import "fmt"

// FOffset returns the byte offset of single-precision register Fn.
func FOffset(n int) int32 {
	return StateOffsets.F[n]
}

// DIsUpper reports whether double register Dn is in the upper bank, which
// decides where its bits live. For n in [0,30] even, Dn aliases the pair (F(n), F(n+1)): the double's
// high 32 bits are F(n) and the low 32 bits are F(n+1) (SPARC is
// big-endian: the lower-numbered single holds the more significant
// half). For n in {32,34,...,62}, Dn is backed directly by
// DUpper[(n-32)/2] and has no constituent singles.
func DIsUpper(n int) bool {
	if n%2 != 0 {
		panic(fmt.Sprintf("D%d is not a valid double register number", n))
	}
	return n >= 32
}

// DUpperIndex maps D32,D34,...,D62 to an index into State.DUpper.
func DUpperIndex(n int) int {
	if !DIsUpper(n) {
		panic(fmt.Sprintf("D%d is not an upper double register", n))
	}
	return (n - 32) / 2
}

// DPairOffsets returns the offsets of the high and low constituent
// F-registers of Dn, valid only for n in [0,30].
func DPairOffsets(n int) (hi, lo int32) {
	if DIsUpper(n) {
		panic(fmt.Sprintf("D%d has no constituent single registers", n))
	}
	return FOffset(n), FOffset(n + 1)
}

// DUpperOffset returns the byte offset of DUpper[(n-32)/2] for n in
// {32,34,...,62}.
func DUpperOffset(n int) int32 {
	return StateOffsets.DUpper[DUpperIndex(n)]
}

// QConstituentDoubles returns the two double-register numbers a quad
// register Qn aliases. Qn is valid for n in {0,4,...,28,32,36,...,60}.
func QConstituentDoubles(n int) (d0, d1 int) {
	if n%4 != 0 {
		panic(fmt.Sprintf("Q%d is not a valid quad register number", n))
	}
	return n, n + 2
}

// WindowRegName renders the architectural %g/%o/%l/%i name for Rn, purely
// for diagnostics (logging, Format()).
func WindowRegName(n int) string {
	switch {
	case n < 8:
		return fmt.Sprintf("%%g%d", n)
	case n < 16:
		return fmt.Sprintf("%%o%d", n-8)
	case n < 24:
		return fmt.Sprintf("%%l%d", n-16)
	case n < 32:
		return fmt.Sprintf("%%i%d", n-24)
	default:
		panic(fmt.Sprintf("R%d out of range", n))
	}
}
