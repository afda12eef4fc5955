package engine

import "golang.org/x/exp/maps"

// Cell is one grid position. It always holds exactly one of: nothing
// (Empty), a literal string (Text), or a parsed expression (Formula); the
// RefError state is a sticky overlay applied on top of a cell's own data by
// a row/column delete, not separate data. Nothing in this package assigns
// ValueError or Div0Error.
type Cell struct {
	sheet *Sheet
	pos   Position

	state      CellState
	storedText string    // as typed; only meaningful in StateText
	textValue  CellValue // classified value; only meaningful in StateText/StateEmpty
	formula    *formula  // non-nil in StateFormula and in StateRefError (data survives the overlay)

	forwardRefs []Position
	reverseRefs map[Position]struct{}

	hasLastSet      bool
	lastSetText     string
	lastSetWasCycle bool
}

func newCell(sheet *Sheet, pos Position) *Cell {
	return &Cell{sheet: sheet, pos: pos, state: StateEmpty, textValue: numberValue(0)}
}

// Set replaces the cell's contents with text, which is either empty, a
// plain value, or a formula starting with '='. It either commits entirely
// or leaves the cell exactly as it was: on a parse failure or a detected
// cycle, no field changes except the fast-path memo used to avoid re-doing
// the work if the exact same text is set again.
func (c *Cell) Set(text string) error {
	if c.hasLastSet && text == c.lastSetText {
		if c.lastSetWasCycle {
			return errCircularDependency(text)
		}
		return nil
	}

	newState, newStoredText, newTextValue, newFormula, err := classifyInput(text)
	if err != nil {
		return err
	}

	if c.state == StateEmpty && newState == StateEmpty {
		return nil
	}
	if c.isTextLike() && newState == StateText && c.GetText() == newStoredText {
		return nil
	}
	if c.isFormulaLike() && newState == StateFormula && c.GetText() == newFormula.Text() {
		return nil
	}

	var proposedRefs []Position
	if newFormula != nil {
		proposedRefs = newFormula.ReferencedCells()
	}

	if c.sheet.wouldCreateCycle(c.pos, proposedRefs) {
		c.hasLastSet = true
		c.lastSetText = text
		c.lastSetWasCycle = true
		return errCircularDependency(text)
	}

	c.clearRefs()
	c.state = newState
	c.storedText = newStoredText
	c.textValue = newTextValue
	c.formula = newFormula
	c.forwardRefs = proposedRefs
	c.setRefs()

	c.resetCache(true)
	c.hasLastSet = true
	c.lastSetText = text
	c.lastSetWasCycle = false
	return nil
}

// classifyInput turns raw Set() text into the (state, data) pair Cell.Set
// needs. A formula requires '=' plus at least one more character; a bare
// "=" is plain text.
func classifyInput(text string) (CellState, string, CellValue, *formula, error) {
	switch {
	case text == "":
		return StateEmpty, "", numberValue(0), nil, nil
	case len(text) > 1 && text[0] == '=':
		f, err := newFormula(text[1:])
		if err != nil {
			return 0, "", CellValue{}, nil, err
		}
		return StateFormula, "", CellValue{}, f, nil
	default:
		return StateText, text, classifyPlainText(text), nil, nil
	}
}

// classifyPlainText classifies a plain-text cell's value: an empty string
// is numeric 0, a clean numeric literal is its own value, a leading
// apostrophe escapes what would otherwise parse as a number, and everything
// else is a literal string.
func classifyPlainText(text string) CellValue {
	if text == "" {
		return numberValue(0)
	}
	if n, ok := parsePlainNumber(text); ok {
		return numberValue(n)
	}
	if text[0] == '\'' {
		return textValue(text[1:])
	}
	return textValue(text)
}

// GetReferencedCells returns the positions this cell's current data reads.
func (c *Cell) GetReferencedCells() []Position {
	return c.forwardRefs
}

// GetText returns the cell's stored text: empty for Empty, the literal
// typed string for Text, and "=<canonical expr>" for Formula (and for the
// RefError overlay, since the underlying formula survives that overlay).
func (c *Cell) GetText() string {
	switch c.state {
	case StateEmpty:
		return ""
	case StateText:
		return c.storedText
	default:
		if c.formula == nil {
			return ""
		}
		return c.formula.Text()
	}
}

// GetValue returns the cell's current computed value. A sticky error state
// short-circuits the underlying data entirely.
func (c *Cell) GetValue() CellValue {
	if c.state.isStickyError() {
		return errorValue(c.state.errorKind())
	}
	switch c.state {
	case StateFormula:
		return c.formula.Evaluate(c.sheet)
	case StateText:
		return c.textValue
	default:
		return numberValue(0)
	}
}

// GetReferencingCells returns the positions of cells that currently read
// this one.
func (c *Cell) GetReferencingCells() []Position {
	return maps.Keys(c.reverseRefs)
}

// State returns the cell's current tag.
func (c *Cell) State() CellState {
	return c.state
}

// setState overrides the cell's tag without touching its underlying data;
// used by Sheet's delete-invalidation sweep to apply the RefError overlay.
func (c *Cell) setState(s CellState) {
	c.state = s
}

func (c *Cell) isTextLike() bool { return c.state == StateText }
func (c *Cell) isFormulaLike() bool {
	return c.state == StateFormula || c.state == StateRefError
}

func (c *Cell) addReverseRef(from Position) {
	if c.reverseRefs == nil {
		c.reverseRefs = make(map[Position]struct{})
	}
	c.reverseRefs[from] = struct{}{}
}

func (c *Cell) removeReverseRef(from Position) {
	delete(c.reverseRefs, from)
}

func (c *Cell) hasReverseRefs() bool {
	return len(c.reverseRefs) > 0
}

// clearRefs drops this cell's position from every current forward target's
// reverse set.
func (c *Cell) clearRefs() {
	for _, ref := range c.forwardRefs {
		if target := c.sheet.getCell(ref); target != nil {
			target.removeReverseRef(c.pos)
		}
	}
}

// setRefs materializes (if absent) every current forward target and
// records this cell's position in its reverse set.
func (c *Cell) setRefs() {
	for _, ref := range c.forwardRefs {
		target := c.sheet.materializeEmpty(ref)
		target.addReverseRef(c.pos)
	}
}

// resetCache drops this cell's own memoized value (a no-op for non-formula
// data, which has nothing to memoize) and, if that actually changed
// anything or force is set, propagates the invalidation to every cell that
// reads this one. The propagation short-circuits once it reaches a cell
// whose cache is already cold, bounding the fan-out to O(affected cells).
func (c *Cell) resetCache(force bool) {
	cached := true
	if c.formula != nil {
		cached = c.formula.IsCached()
	}
	if !cached && !force {
		return
	}
	if c.formula != nil {
		c.formula.ResetCache()
	}
	c.hasLastSet = false
	for ref := range c.reverseRefs {
		if dep := c.sheet.getCell(ref); dep != nil {
			dep.resetCache(false)
		}
	}
}

// handleInsertedRows shifts this cell's own row (and, for a formula, its
// references) after count rows are inserted before the before index. It
// never touches reverse-edge bookkeeping itself: the sheet drops every
// cell's reverse-edge registrations before this pass and re-registers them
// once the grid has been expanded, when positions and slots agree again.
func (c *Cell) handleInsertedRows(before, count int) shiftOutcome {
	c.resetCache(true)
	outcome := shiftNothingChanged
	if c.formula != nil {
		outcome = c.formula.handleShift(shiftInsert, shiftRow, before, count)
		c.forwardRefs = c.formula.ReferencedCells()
	}
	if c.pos.Row >= before {
		c.pos.Row += count
	}
	return outcome
}

func (c *Cell) handleInsertedCols(before, count int) shiftOutcome {
	c.resetCache(true)
	outcome := shiftNothingChanged
	if c.formula != nil {
		outcome = c.formula.handleShift(shiftInsert, shiftCol, before, count)
		c.forwardRefs = c.formula.ReferencedCells()
	}
	if c.pos.Col >= before {
		c.pos.Col += count
	}
	return outcome
}

// handleDeletedRows shifts this cell's references and position and, unlike
// insert, drops its reverse-edge registrations: clearRefs runs here, while
// the grid still matches the old coordinates so every target resolves to
// the cell it meant. Re-registering the shifted edges is deferred to the
// sheet, which calls setRefs only after the band is physically spliced
// out: doing it now would resolve post-shift positions against a
// half-updated grid and pin edges on cells, or phantom placeholders,
// about to be destroyed.
func (c *Cell) handleDeletedRows(first, count int) shiftOutcome {
	c.resetCache(true)
	outcome := shiftNothingChanged
	if c.formula != nil {
		outcome = c.formula.handleShift(shiftDelete, shiftRow, first, count)
	}
	c.clearRefs()
	if c.formula != nil {
		c.forwardRefs = c.formula.ReferencedCells()
	} else {
		c.forwardRefs = nil
	}
	if c.pos.Row >= first+count {
		c.pos.Row -= count
	}
	return outcome
}

func (c *Cell) handleDeletedCols(first, count int) shiftOutcome {
	c.resetCache(true)
	outcome := shiftNothingChanged
	if c.formula != nil {
		outcome = c.formula.handleShift(shiftDelete, shiftCol, first, count)
	}
	c.clearRefs()
	if c.formula != nil {
		c.forwardRefs = c.formula.ReferencedCells()
	} else {
		c.forwardRefs = nil
	}
	if c.pos.Col >= first+count {
		c.pos.Col -= count
	}
	return outcome
}
