// Package cellgraph is an in-memory spreadsheet engine: a two-dimensional
// grid of cells holding literal text or arithmetic formulas over other
// cells, kept consistent under edits and row/column insertion and deletion.
//
// The implementation lives in internal/engine; this package re-exports the
// public surface so callers outside the module can use it.
package cellgraph

import "github.com/arborsheet/cellgraph/internal/engine"

type (
	Sheet     = engine.Sheet
	Cell      = engine.Cell
	CellValue = engine.CellValue
	CellState = engine.CellState
	Position  = engine.Position
	Size      = engine.Size

	AppError         = engine.AppError
	AppErrorCode     = engine.AppErrorCode
	FormulaErrorKind = engine.FormulaErrorKind
)

const (
	MaxRows = engine.MaxRows
	MaxCols = engine.MaxCols

	StateEmpty      = engine.StateEmpty
	StateText       = engine.StateText
	StateFormula    = engine.StateFormula
	StateRefError   = engine.StateRefError
	StateValueError = engine.StateValueError
	StateDiv0Error  = engine.StateDiv0Error

	ErrRef   = engine.ErrRef
	ErrValue = engine.ErrValue
	ErrDiv0  = engine.ErrDiv0
)

var (
	ErrInvalidPosition    = engine.ErrInvalidPosition
	ErrTableTooBig        = engine.ErrTableTooBig
	ErrCircularDependency = engine.ErrCircularDependency
	ErrFormulaParse       = engine.ErrFormulaParse
)

// New returns an empty sheet.
func New() *Sheet {
	return engine.NewSheet()
}

// ParsePosition decodes an A1-notation cell name.
func ParsePosition(s string) (Position, bool) {
	return engine.ParsePosition(s)
}
