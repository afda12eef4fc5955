package engine

import (
	"io"
	"log/slog"
)

// Sheet owns every Cell in the grid. Cells are addressed by Position;
// nothing outside this package ever holds a raw *Cell across a structural
// edit, so rows/columns can be spliced freely without invalidating
// anything a caller is holding onto.
type Sheet struct {
	cells [][]*Cell

	// emptyCells holds every materialized cell whose state is Empty,
	// kept alive only because something still reads it.
	emptyCells map[*Cell]struct{}

	printable sizeMonitor
	total     sizeMonitor

	log *slog.Logger
}

// NewSheet returns an empty sheet.
func NewSheet() *Sheet {
	return &Sheet{emptyCells: make(map[*Cell]struct{}), log: slog.Default()}
}

func (sh *Sheet) isAllocated(pos Position) bool {
	return pos.Row >= 0 && pos.Row < len(sh.cells) &&
		pos.Col >= 0 && pos.Col < len(sh.cells[pos.Row])
}

// getCell is the unchecked internal accessor Cell/evaluator code uses; it
// never validates pos against MaxRows/MaxCols, only against how much of
// the grid currently exists.
func (sh *Sheet) getCell(pos Position) *Cell {
	if !sh.isAllocated(pos) {
		return nil
	}
	return sh.cells[pos.Row][pos.Col]
}

// valueAt implements cellReader for the formula evaluator: a missing or
// Empty cell reads as 0.
func (sh *Sheet) valueAt(pos Position) CellValue {
	c := sh.getCell(pos)
	if c == nil {
		return numberValue(0)
	}
	return c.GetValue()
}

func (sh *Sheet) expandToFit(pos Position) {
	for len(sh.cells) <= pos.Row {
		sh.cells = append(sh.cells, nil)
	}
	row := sh.cells[pos.Row]
	for len(row) <= pos.Col {
		row = append(row, nil)
	}
	sh.cells[pos.Row] = row
}

// materializeEmpty returns the cell at pos, creating an Empty placeholder
// (and registering it in the empty-cell registry and the total size
// monitor, not the printable one) if none exists yet. Used by
// Cell.setRefs to materialize a formula's forward targets.
func (sh *Sheet) materializeEmpty(pos Position) *Cell {
	if c := sh.getCell(pos); c != nil {
		return c
	}
	sh.expandToFit(pos)
	c := newCell(sh, pos)
	sh.cells[pos.Row][pos.Col] = c
	sh.emptyCells[c] = struct{}{}
	sh.total.Add(pos)
	return c
}

// wouldCreateCycle reports whether a cell at from referencing proposedRefs
// would close a cycle in the forward-reference graph, via an iterative
// DFS over the sheet's current edges.
func (sh *Sheet) wouldCreateCycle(from Position, proposedRefs []Position) bool {
	if len(proposedRefs) == 0 {
		return false
	}
	visited := make(map[Position]struct{})
	stack := append([]Position(nil), proposedRefs...)
	for len(stack) > 0 {
		n := len(stack) - 1
		pos := stack[n]
		stack = stack[:n]
		if pos == from {
			return true
		}
		if _, seen := visited[pos]; seen {
			continue
		}
		visited[pos] = struct{}{}
		if cell := sh.getCell(pos); cell != nil {
			stack = append(stack, cell.GetReferencedCells()...)
		}
	}
	return false
}

// GetCell returns the cell materialized at pos, or nil if nothing lives
// there. Returns an error only if pos itself is out of the addressable
// range.
func (sh *Sheet) GetCell(pos Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, errInvalidPosition(pos)
	}
	return sh.getCell(pos), nil
}

// SetCell assigns text to the cell at pos, materializing it if needed.
// Setting the empty string at a position with no existing cell is a
// no-op: nothing is materialized just to hold nothing.
func (sh *Sheet) SetCell(pos Position, text string) error {
	if !pos.IsValid() {
		return errInvalidPosition(pos)
	}
	if cell := sh.getCell(pos); cell != nil {
		oldState := cell.State()
		if err := cell.Set(text); err != nil {
			sh.logSetRejected(pos, err)
			return err
		}
		sh.log.Debug("cell set", "pos", pos, "state", cell.State())
		newState := cell.State()
		if oldState == StateEmpty && newState != StateEmpty {
			delete(sh.emptyCells, cell)
			sh.printable.Add(pos)
		}
		if oldState != StateEmpty && newState == StateEmpty {
			sh.emptyCells[cell] = struct{}{}
			sh.printable.Remove(pos)
		}
		return nil
	}

	if text == "" {
		return nil
	}

	sh.expandToFit(pos)
	cell := newCell(sh, pos)
	sh.cells[pos.Row][pos.Col] = cell
	if err := cell.Set(text); err != nil {
		sh.cells[pos.Row][pos.Col] = nil
		sh.logSetRejected(pos, err)
		return err
	}
	sh.log.Debug("cell set", "pos", pos, "state", cell.State())
	sh.printable.Add(pos)
	sh.total.Add(pos)
	return nil
}

// ClearCell destroys the cell at pos if one is materialized. Any cell that
// still references it keeps its reference but has its cached value
// dropped: a dangling forward reference resolves to 0 on the next read.
func (sh *Sheet) ClearCell(pos Position) error {
	if !pos.IsValid() {
		return errInvalidPosition(pos)
	}
	cell := sh.getCell(pos)
	if cell == nil {
		return nil
	}
	cell.resetCache(true)
	sh.printable.Remove(pos)
	sh.total.Remove(pos)
	delete(sh.emptyCells, cell)
	sh.cells[pos.Row][pos.Col] = nil
	return nil
}

// GetPrintableSize returns the smallest bounding box containing every
// non-Empty cell.
func (sh *Sheet) GetPrintableSize() Size {
	return sh.printable.GetSize()
}

// PrintValues writes the printable region's computed values, tab-separated
// per row and newline-terminated.
func (sh *Sheet) PrintValues(w io.Writer) error {
	return sh.printCells(w, func(c *Cell) string { return c.GetValue().String() })
}

// PrintTexts writes the printable region's stored text the same way
// PrintValues writes values.
func (sh *Sheet) PrintTexts(w io.Writer) error {
	return sh.printCells(w, func(c *Cell) string { return c.GetText() })
}

func (sh *Sheet) printCells(w io.Writer, render func(*Cell) string) error {
	size := sh.GetPrintableSize()
	for i := 0; i < size.Rows; i++ {
		for j := 0; j < size.Cols; j++ {
			if j > 0 {
				if _, err := io.WriteString(w, "\t"); err != nil {
					return err
				}
			}
			cell := sh.getCell(Position{Row: i, Col: j})
			if cell == nil {
				continue
			}
			if _, err := io.WriteString(w, render(cell)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InsertRows inserts count empty rows before row index before, shifting
// every affected cell's row and rewriting every formula's row references.
func (sh *Sheet) InsertRows(before, count int) error {
	before = clamp(before, 0, MaxRows)
	count = clamp(count, 0, MaxRows)
	if before+count >= MaxRows || sh.total.GetSize().Rows+count >= MaxRows {
		sh.log.Warn("insert rejected", "axis", "row", "before", before, "count", count)
		return errTableTooBig("row")
	}
	sh.log.Debug("insert rows", "before", before, "count", count)
	sh.forEachCell(func(c *Cell) { c.clearRefs() })
	sh.forEachCell(func(c *Cell) { c.handleInsertedRows(before, count) })
	sh.printable.UpdateAfterRowAddition(before, count)
	sh.total.UpdateAfterRowAddition(before, count)
	sh.expandRows(before, count)
	sh.resyncRefs()
	return nil
}

// InsertCols mirrors InsertRows on the column axis.
func (sh *Sheet) InsertCols(before, count int) error {
	before = clamp(before, 0, MaxCols)
	count = clamp(count, 0, MaxCols)
	if before+count >= MaxCols || sh.total.GetSize().Cols+count >= MaxCols {
		sh.log.Warn("insert rejected", "axis", "col", "before", before, "count", count)
		return errTableTooBig("col")
	}
	sh.log.Debug("insert cols", "before", before, "count", count)
	sh.forEachCell(func(c *Cell) { c.clearRefs() })
	sh.forEachCell(func(c *Cell) { c.handleInsertedCols(before, count) })
	sh.printable.UpdateAfterColAddition(before, count)
	sh.total.UpdateAfterColAddition(before, count)
	sh.expandCols(before, count)
	sh.resyncRefs()
	return nil
}

// DeleteRows removes count rows starting at first, first invalidating
// (RefError) every surviving cell that transitively reads a deleted cell,
// then rewriting references and physically removing the band.
func (sh *Sheet) DeleteRows(first, count int) error {
	first = clamp(first, 0, MaxRows)
	count = clamp(count, 0, MaxRows-first)
	if count == 0 {
		return nil
	}
	sh.log.Debug("delete rows", "first", first, "count", count)
	sh.invalidateCells(shiftRow, first, count)
	sh.forEachCell(func(c *Cell) { c.handleDeletedRows(first, count) })
	sh.sweepDeadEmptyCells(shiftRow, count)
	sh.printable.UpdateAfterRowDeletion(first, count)
	sh.total.UpdateAfterRowDeletion(first, count)
	lo := clamp(first, 0, len(sh.cells))
	hi := clamp(first+count, 0, len(sh.cells))
	sh.cells = append(sh.cells[:lo], sh.cells[hi:]...)
	sh.resyncRefs()
	return nil
}

// DeleteCols mirrors DeleteRows on the column axis.
func (sh *Sheet) DeleteCols(first, count int) error {
	first = clamp(first, 0, MaxCols)
	count = clamp(count, 0, MaxCols-first)
	if count == 0 {
		return nil
	}
	sh.log.Debug("delete cols", "first", first, "count", count)
	sh.invalidateCells(shiftCol, first, count)
	sh.forEachCell(func(c *Cell) { c.handleDeletedCols(first, count) })
	sh.sweepDeadEmptyCells(shiftCol, count)
	sh.printable.UpdateAfterColDeletion(first, count)
	sh.total.UpdateAfterColDeletion(first, count)
	for i, row := range sh.cells {
		lo := clamp(first, 0, len(row))
		hi := clamp(first+count, 0, len(row))
		sh.cells[i] = append(row[:lo], row[hi:]...)
	}
	sh.resyncRefs()
	return nil
}

// forEachCell visits every currently materialized cell, including empty
// placeholders sitting beyond the printable bounding box, so their
// positions and references get rewritten by an insert/delete too.
func (sh *Sheet) forEachCell(fn func(*Cell)) {
	for _, row := range sh.cells {
		for _, c := range row {
			if c != nil {
				fn(c)
			}
		}
	}
}

// invalidateCells marks every cell in the deleted band RefError, then
// fans that state out through reverse edges to every cell that
// transitively reads one of them, stopping at cells already marked.
func (sh *Sheet) invalidateCells(axis shiftAxis, first, count int) {
	var stack []Position
	mark := func(c *Cell) {
		c.setState(StateRefError)
		stack = append(stack, c.GetReferencingCells()...)
	}
	sh.forEachCell(func(c *Cell) {
		k := c.pos.Row
		if axis == shiftCol {
			k = c.pos.Col
		}
		if k >= first && k < first+count {
			mark(c)
		}
	})

	visited := make(map[Position]struct{})
	for len(stack) > 0 {
		n := len(stack) - 1
		pos := stack[n]
		stack = stack[:n]
		if _, seen := visited[pos]; seen {
			continue
		}
		visited[pos] = struct{}{}
		cell := sh.getCell(pos)
		if cell == nil || cell.state == StateRefError {
			continue
		}
		mark(cell)
	}
}

// resyncRefs re-registers every surviving cell's reverse edges after an
// insert's grid expansion or a delete's physical splice. Each cell already
// dropped its old edges (clearRefs, run by InsertRows/InsertCols before the
// shift pass and inside handleDeleted*), so only now, with positions and
// grid slots back in agreement, do the shifted forward refs resolve to
// the cells they actually name; any placeholder a still-needed ref lost
// to the sweep is re-materialized here at its final slot.
func (sh *Sheet) resyncRefs() {
	sh.forEachCell(func(c *Cell) { c.setRefs() })
}

// sweepDeadEmptyCells drops every tracked empty placeholder that has lost
// its last reverse edge. It runs after the shift pass but before the grid
// is spliced, so a cell whose position was already shifted still sits in
// its pre-shift slot; the identity check finds the slot that actually
// holds the cell before nilling it.
func (sh *Sheet) sweepDeadEmptyCells(axis shiftAxis, count int) {
	for c := range sh.emptyCells {
		if c.State() != StateEmpty || c.hasReverseRefs() {
			continue
		}
		delete(sh.emptyCells, c)
		at := c.pos
		if sh.getCell(at) != c {
			if axis == shiftRow {
				at.Row += count
			} else {
				at.Col += count
			}
		}
		if sh.getCell(at) == c {
			sh.cells[at.Row][at.Col] = nil
		}
	}
}

func (sh *Sheet) expandRows(before, count int) {
	if before >= len(sh.cells) {
		return
	}
	blank := make([][]*Cell, count)
	sh.cells = append(sh.cells[:before], append(blank, sh.cells[before:]...)...)
}

func (sh *Sheet) expandCols(before, count int) {
	for i, row := range sh.cells {
		if before >= len(row) {
			continue
		}
		blank := make([]*Cell, count)
		sh.cells[i] = append(row[:before], append(blank, row[before:]...)...)
	}
}
