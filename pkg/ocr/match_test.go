package ocr

import "testing"

func TestMatchPrefersSmallerCode(t *testing.T) {
	tbl := NewTemplateTable()
	// both templates agree with the glyph once truncated to its width
	wide := Template{Code: 'b', Width: 5, Rows: 1}
	narrow := Template{Code: 'a', Width: 3, Rows: 1}
	for _, tpl := range []*Template{&wide, &narrow} {
		tpl.Cells[0][0] = CellOff
		tpl.Cells[0][1] = CellOn
		tpl.Cells[0][2] = CellOff
	}
	wide.Cells[0][3] = CellOn
	_ = tbl.Put(wide)
	_ = tbl.Put(narrow)

	g := binaryFromRows(t, "010")
	for i := 0; i < 3; i++ {
		ch, ok := tbl.Match(g)
		if !ok || ch != 'a' {
			t.Fatalf("run %d: got %q %v want 'a'", i, ch, ok)
		}
	}
}

func TestMatchUnsetCellsAreIgnored(t *testing.T) {
	tbl := NewTemplateTable()
	tpl := Template{Code: 'q', Width: 3, Rows: 1}
	tpl.Cells[0][1] = CellOn
	_ = tbl.Put(tpl)
	for _, row := range []string{"111", "010", "110"} {
		if ch, ok := tbl.Match(binaryFromRows(t, row)); !ok || ch != 'q' {
			t.Fatalf("%s: got %q %v", row, ch, ok)
		}
	}
	if _, ok := tbl.Match(binaryFromRows(t, "101")); ok {
		t.Fatal("on-cell against background must not match")
	}
}

func TestMatchTestFont(t *testing.T) {
	tbl := testTable(t)
	for _, code := range []byte("HILOT") {
		tpl, _ := tbl.Get(code)
		g, _ := NewBinaryImage(tpl.Width, TemplateRows)
		for y := 0; y < TemplateRows; y++ {
			for x := 0; x < tpl.Width; x++ {
				g.Set(x, y, tpl.Cells[y][x] == CellOn)
			}
		}
		if ch, ok := tbl.Match(g); !ok || ch != code {
			t.Fatalf("%c matched as %q (%v)", code, ch, ok)
		}
	}
	empty := NewTemplateTable()
	if _, ok := empty.Match(binaryFromRows(t, "0")); ok {
		t.Fatal("empty table must not match")
	}
}
