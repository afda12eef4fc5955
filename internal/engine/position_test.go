package engine

import "testing"

func TestPositionStringRoundTrip(t *testing.T) {
	cases := []struct {
		pos Position
		str string
	}{
		{Position{0, 0}, "A1"},
		{Position{0, 1}, "B1"},
		{Position{0, 25}, "Z1"},
		{Position{0, 26}, "AA1"},
		{Position{0, 27}, "AB1"},
		{Position{0, 51}, "AZ1"},
		{Position{0, 52}, "BA1"},
		{Position{0, 53}, "BB1"},
		{Position{0, 77}, "BZ1"},
		{Position{0, 78}, "CA1"},
		{Position{0, 701}, "ZZ1"},
		{Position{0, 702}, "AAA1"},
		{Position{136, 2}, "C137"},
		{Position{MaxRows - 1, MaxCols - 1}, "XFD16384"},
	}
	for _, c := range cases {
		t.Run(c.str, func(t *testing.T) {
			if got := c.pos.String(); got != c.str {
				t.Errorf("(%d,%d).String() = %q, want %q", c.pos.Row, c.pos.Col, got, c.str)
			}
			got, ok := ParsePosition(c.str)
			if !ok || got != c.pos {
				t.Errorf("ParsePosition(%q) = %v, %v, want %v", c.str, got, ok, c.pos)
			}
		})
	}
}

func TestPositionStringInvalid(t *testing.T) {
	for _, pos := range []Position{
		InvalidPosition,
		{-10, 0},
		{1, -3},
		{MaxRows, 0},
		{0, MaxCols},
		{MaxRows, MaxCols},
	} {
		if got := pos.String(); got != "" {
			t.Errorf("(%d,%d).String() = %q, want empty", pos.Row, pos.Col, got)
		}
	}
}

func TestParsePositionRejects(t *testing.T) {
	for _, s := range []string{
		"",
		"A",
		"1",
		"12",
		"A0",
		"A01",
		"A-1",
		"0A",
		"a1",
		"A1a",
		" A1",
		"A1 ",
		"B2C3",
		"A16385",    // one row past the last
		"XFE1",      // one column past the last
		"ZZZZ1",     // column overflow
		"A1234567",  // row overflow within the length limit
		"AAAAAAAA1", // over the length limit
	} {
		if got, ok := ParsePosition(s); ok || got != InvalidPosition {
			t.Errorf("ParsePosition(%q) = %v, %v, want invalid", s, got, ok)
		}
	}
}

func TestPositionLess(t *testing.T) {
	a := Position{0, 5}
	b := Position{1, 0}
	if !a.Less(b) || b.Less(a) {
		t.Error("ordering must be row-major")
	}
	c := Position{0, 6}
	if !a.Less(c) || c.Less(a) {
		t.Error("ties on row must order by column")
	}
	if a.Less(a) {
		t.Error("Less must be irreflexive")
	}
}
