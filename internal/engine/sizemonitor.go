package engine

import "sort"

// sizeMonitor tracks a set of positions (either "non-empty cells" or "all
// materialized cells", depending on which Sheet field it backs) and
// answers GetSize in O(1) amortized. The set is kept sorted by
// (row, col); max_col is cached and invalidated whenever a mutation could
// change which position holds the rightmost column.
type sizeMonitor struct {
	positions []Position
	maxCol    int
	hasMaxCol bool
}

func (m *sizeMonitor) search(pos Position) (int, bool) {
	i := sort.Search(len(m.positions), func(i int) bool {
		return !m.positions[i].Less(pos)
	})
	return i, i < len(m.positions) && m.positions[i] == pos
}

// Add inserts pos if absent; the shift updates below rely on the slice
// staying sorted, so insertion is positional rather than an append+sort.
func (m *sizeMonitor) Add(pos Position) {
	i, found := m.search(pos)
	if found {
		return
	}
	m.positions = append(m.positions, Position{})
	copy(m.positions[i+1:], m.positions[i:])
	m.positions[i] = pos
	if m.hasMaxCol && pos.Col > m.maxCol {
		m.maxCol = pos.Col
	} else if !m.hasMaxCol {
		m.maxCol = pos.Col
		m.hasMaxCol = true
	}
}

// Remove drops pos if present.
func (m *sizeMonitor) Remove(pos Position) {
	i, found := m.search(pos)
	if !found {
		return
	}
	m.positions = append(m.positions[:i], m.positions[i+1:]...)
	m.hasMaxCol = false
}

// GetSize returns the smallest (rows, cols) bounding box containing every
// tracked position, or (0,0) if the set is empty.
func (m *sizeMonitor) GetSize() Size {
	if len(m.positions) == 0 {
		return Size{}
	}
	row := m.positions[len(m.positions)-1].Row
	if !m.hasMaxCol {
		max := 0
		for _, pos := range m.positions {
			if pos.Col > max {
				max = pos.Col
			}
		}
		m.maxCol = max
		m.hasMaxCol = true
	}
	return Size{Rows: row + 1, Cols: m.maxCol + 1}
}

// UpdateAfterRowAddition shifts every tracked row >= firstIdx down by
// count. Column order is untouched, so max_col stays valid.
func (m *sizeMonitor) UpdateAfterRowAddition(firstIdx, count int) {
	for i := range m.positions {
		if m.positions[i].Row >= firstIdx {
			m.positions[i].Row += count
		}
	}
}

// UpdateAfterColAddition shifts every tracked col >= firstIdx right by
// count; max_col must be recomputed since the rightmost column may move.
func (m *sizeMonitor) UpdateAfterColAddition(firstIdx, count int) {
	for i := range m.positions {
		if m.positions[i].Col >= firstIdx {
			m.positions[i].Col += count
		}
	}
	m.hasMaxCol = false
}

// UpdateAfterRowDeletion drops every tracked position whose row falls in
// the deleted band, then shifts the rest up by count.
func (m *sizeMonitor) UpdateAfterRowDeletion(firstIdx, count int) {
	kept := m.positions[:0]
	for _, pos := range m.positions {
		if pos.Row >= firstIdx && pos.Row < firstIdx+count {
			continue
		}
		if pos.Row >= firstIdx+count {
			pos.Row -= count
		}
		kept = append(kept, pos)
	}
	m.positions = kept
	m.hasMaxCol = false
}

// UpdateAfterColDeletion mirrors UpdateAfterRowDeletion on the column axis.
func (m *sizeMonitor) UpdateAfterColDeletion(firstIdx, count int) {
	kept := m.positions[:0]
	for _, pos := range m.positions {
		if pos.Col >= firstIdx && pos.Col < firstIdx+count {
			continue
		}
		if pos.Col >= firstIdx+count {
			pos.Col -= count
		}
		kept = append(kept, pos)
	}
	m.positions = kept
	m.hasMaxCol = false
}
