package engine

// formula is the data a Cell in StateFormula holds: the parsed tree, the
// sorted/deduped positions it reads, and a mutable cache that Evaluate
// fills in and ResetCache empties.
type formula struct {
	expr            exprNode
	referencedCells []Position

	hasCached bool
	cached    CellValue

	hasShrunk   bool
	shrunkPrint string
}

// newFormula parses body (the text after the leading '=') into a formula,
// or returns a parse error: nothing is mutated on the owning cell in that
// case, matching Cell.Set's all-or-nothing contract.
func newFormula(body string) (*formula, error) {
	expr, err := parseFormula(body)
	if err != nil {
		return nil, err
	}
	return &formula{
		expr:            expr,
		referencedCells: collectRefs(expr),
	}, nil
}

// Evaluate returns the cached value, computing and memoizing it on first
// read or after ResetCache.
func (f *formula) Evaluate(sheet cellReader) CellValue {
	if !f.hasCached {
		f.cached = evaluate(f.expr, sheet)
		f.hasCached = true
	}
	return f.cached
}

// IsCached reports whether Evaluate would return a memoized value without
// recomputing; used by Cell.resetCache to decide whether to keep
// propagating downstream.
func (f *formula) IsCached() bool {
	return f.hasCached
}

// ResetCache drops the memoized value, forcing the next Evaluate to
// recompute.
func (f *formula) ResetCache() {
	f.hasCached = false
	f.cached = CellValue{}
}

// ReferencedCells returns the sorted, deduped positions this formula reads.
func (f *formula) ReferencedCells() []Position {
	return f.referencedCells
}

// Text renders the canonical "=<shrunk expr>" form a Cell.GetText call
// returns, with the sentinel rendered as "#REF!" rather than the raw
// internal token.
func (f *formula) Text() string {
	if !f.hasShrunk {
		f.shrunkPrint = shrink(f.expr, shrinkPrintErrors)
		f.hasShrunk = true
	}
	return "=" + f.shrunkPrint
}

// handleShift rewrites expr and referencedCells for a row/column
// insert/delete, invalidating the memoized shrunk text whenever anything
// actually changed.
func (f *formula) handleShift(op shiftOp, axis shiftAxis, pivot, count int) shiftOutcome {
	newExpr, outcome := shiftExpr(f.expr, op, axis, pivot, count)
	if outcome == shiftNothingChanged {
		return outcome
	}
	f.expr = newExpr
	f.referencedCells = collectRefs(newExpr)
	f.hasShrunk = false
	return outcome
}
