package engine

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSheet(t *testing.T) *Sheet {
	t.Helper()
	sh := NewSheet()
	sh.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return sh
}

func setCell(t *testing.T, sh *Sheet, name, text string) {
	t.Helper()
	require.NoError(t, sh.SetCell(MustPosition(name), text))
}

func cellAt(t *testing.T, sh *Sheet, name string) *Cell {
	t.Helper()
	cell, err := sh.GetCell(MustPosition(name))
	require.NoError(t, err)
	require.NotNil(t, cell, "expected a cell at %s", name)
	return cell
}

func TestCellTextClassification(t *testing.T) {
	sh := newTestSheet(t)

	t.Run("plain string", func(t *testing.T) {
		setCell(t, sh, "A1", "hello")
		cell := cellAt(t, sh, "A1")
		assert.Equal(t, StateText, cell.State())
		assert.Equal(t, "hello", cell.GetText())
		assert.Equal(t, textValue("hello"), cell.GetValue())
	})

	t.Run("numeric string", func(t *testing.T) {
		setCell(t, sh, "A2", "42.5")
		cell := cellAt(t, sh, "A2")
		assert.Equal(t, StateText, cell.State())
		assert.Equal(t, "42.5", cell.GetText())
		assert.Equal(t, numberValue(42.5), cell.GetValue())
	})

	t.Run("apostrophe escape", func(t *testing.T) {
		setCell(t, sh, "A3", "'123")
		cell := cellAt(t, sh, "A3")
		assert.Equal(t, "'123", cell.GetText(), "text keeps the apostrophe")
		assert.Equal(t, textValue("123"), cell.GetValue(), "value strips it")
	})

	t.Run("bare equals is text", func(t *testing.T) {
		setCell(t, sh, "A4", "=")
		cell := cellAt(t, sh, "A4")
		assert.Equal(t, StateText, cell.State())
		assert.Equal(t, "=", cell.GetText())
	})

	t.Run("formula", func(t *testing.T) {
		setCell(t, sh, "A5", "=1+2")
		cell := cellAt(t, sh, "A5")
		assert.Equal(t, StateFormula, cell.State())
		assert.Equal(t, "=1+2", cell.GetText())
		assert.Equal(t, numberValue(3), cell.GetValue())
	})

	t.Run("formula text is canonical", func(t *testing.T) {
		setCell(t, sh, "A6", "=(2*3)-4")
		assert.Equal(t, "=2*3-4", cellAt(t, sh, "A6").GetText())
	})
}

func TestCellFormulaParseRejected(t *testing.T) {
	sh := newTestSheet(t)
	setCell(t, sh, "A1", "keep me")

	err := sh.SetCell(MustPosition("A1"), "=1+")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormulaParse)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, FormulaParse, appErr.Code)

	cell := cellAt(t, sh, "A1")
	assert.Equal(t, "keep me", cell.GetText(), "failed Set must leave the cell untouched")
	assert.Equal(t, StateText, cell.State())
}

func TestCellSelfReferenceIsCycle(t *testing.T) {
	sh := newTestSheet(t)
	err := sh.SetCell(MustPosition("A1"), "=A1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestCellCycleMemoFastPath(t *testing.T) {
	sh := newTestSheet(t)
	setCell(t, sh, "A1", "=B1")
	setCell(t, sh, "B1", "5")

	// B1 = "=A1" closes the loop; the identical repeat must fail the same
	// way without touching state.
	err := sh.SetCell(MustPosition("B1"), "=A1")
	require.ErrorIs(t, err, ErrCircularDependency)
	err = sh.SetCell(MustPosition("B1"), "=A1")
	require.ErrorIs(t, err, ErrCircularDependency)

	cell := cellAt(t, sh, "B1")
	assert.Equal(t, "5", cell.GetText())
	assert.Equal(t, numberValue(5), cell.GetValue())
	assert.Equal(t, numberValue(5), cellAt(t, sh, "A1").GetValue())
}

func TestCellRepeatedSetIsNoop(t *testing.T) {
	sh := newTestSheet(t)
	setCell(t, sh, "A1", "=1+2")
	setCell(t, sh, "A1", "=1+2")
	assert.Equal(t, numberValue(3), cellAt(t, sh, "A1").GetValue())
}

func TestCellValuePropagation(t *testing.T) {
	sh := newTestSheet(t)
	setCell(t, sh, "A1", "2")
	setCell(t, sh, "A2", "=A1*10")
	setCell(t, sh, "A3", "=A2+1")

	assert.Equal(t, numberValue(21), cellAt(t, sh, "A3").GetValue())

	setCell(t, sh, "A1", "3")
	assert.Equal(t, numberValue(31), cellAt(t, sh, "A3").GetValue(),
		"edit must invalidate the whole downstream chain")

	setCell(t, sh, "A2", "=A1")
	assert.Equal(t, numberValue(4), cellAt(t, sh, "A3").GetValue())
}

func TestCellReferenceEdges(t *testing.T) {
	sh := newTestSheet(t)
	setCell(t, sh, "B2", "=A1+C3+A1")

	b2 := cellAt(t, sh, "B2")
	assert.Equal(t, []Position{MustPosition("A1"), MustPosition("C3")}, b2.GetReferencedCells(),
		"forward refs are sorted and deduped")

	// Referenced cells were materialized as empty placeholders with the
	// reverse edge recorded.
	for _, name := range []string{"A1", "C3"} {
		target := cellAt(t, sh, name)
		assert.Equal(t, StateEmpty, target.State())
		assert.Contains(t, target.GetReferencingCells(), MustPosition("B2"))
	}

	// Rewriting B2 away from C3 must drop the stale reverse edge.
	setCell(t, sh, "B2", "=A1")
	assert.NotContains(t, cellAt(t, sh, "C3").GetReferencingCells(), MustPosition("B2"))
	assert.Contains(t, cellAt(t, sh, "A1").GetReferencingCells(), MustPosition("B2"))
}

func TestCellEmptyReferencedReadsZero(t *testing.T) {
	sh := newTestSheet(t)
	setCell(t, sh, "A1", "=Z99+1")
	assert.Equal(t, numberValue(1), cellAt(t, sh, "A1").GetValue())
}
