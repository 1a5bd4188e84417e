package ocr

import "testing"

// inkCell returns a 16-row cell of the given width with foreground at row 5
// of every listed column.
func inkCell(t *testing.T, width int, cols ...int) *BinaryImage {
	t.Helper()
	cell, err := NewBinaryImage(width, TemplateRows)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cols {
		cell.Set(c, 5, true)
	}
	return cell
}

func collect(t *testing.T, cell *BinaryImage, opts Options) []Glyph {
	t.Helper()
	var out []Glyph
	if err := Segment(cell, opts, func(g Glyph) { out = append(out, g) }); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSegmentSingleGlyph(t *testing.T) {
	cell := inkCell(t, 20, 10, 11, 12, 13, 14)
	glyphs := collect(t, cell, DefaultOptions())
	if len(glyphs) != 1 {
		t.Fatalf("got %d glyphs want 1", len(glyphs))
	}
	g := glyphs[0]
	if g.Bitmap.Width != 7 || g.Start != 10 || g.End != 14 || g.Space {
		t.Fatalf("glyph %+v width %d", g, g.Bitmap.Width)
	}

	tbl := NewTemplateTable()
	x := Template{Code: 'X', Width: 7, Rows: TemplateRows}
	for c := 0; c < 7; c++ {
		x.Cells[5][c] = CellOff
		if c >= 1 && c <= 5 {
			x.Cells[5][c] = CellOn
		}
	}
	if err := tbl.Put(x); err != nil {
		t.Fatal(err)
	}
	if ch, ok := tbl.Match(g.Bitmap); !ok || ch != 'X' {
		t.Fatalf("match = %q %v", ch, ok)
	}
}

func TestSegmentSpaceRun(t *testing.T) {
	cell := inkCell(t, 16, 1, 2, 3, 12, 13, 14)
	glyphs := collect(t, cell, DefaultOptions())
	if len(glyphs) != 3 {
		t.Fatalf("got %d glyphs want 3", len(glyphs))
	}
	if glyphs[0].Space || glyphs[0].Start != 1 || glyphs[0].End != 3 {
		t.Fatalf("first glyph %+v", glyphs[0])
	}
	sp := glyphs[1]
	if !sp.Space || sp.Bitmap.Width != 10 {
		t.Fatalf("space glyph %+v width %d", sp, sp.Bitmap.Width)
	}
	for i, v := range sp.Bitmap.Pix {
		if v != 0 {
			t.Fatalf("space glyph pixel %d set", i)
		}
	}
	if glyphs[2].Space || glyphs[2].Start != 12 || glyphs[2].End != 14 {
		t.Fatalf("last glyph %+v", glyphs[2])
	}
}

func TestSegmentLongRunYieldsSpacePerEightColumns(t *testing.T) {
	cols := []int{1}
	cols = append(cols, 1+1+16+1)
	cell := inkCell(t, 22, cols...)
	var spaces int
	for _, g := range collect(t, cell, DefaultOptions()) {
		if g.Space {
			spaces++
		}
	}
	if spaces != 2 {
		t.Fatalf("spaces = %d want 2", spaces)
	}
}

func TestSegmentBorderInvariant(t *testing.T) {
	cell := inkCell(t, 30, 1, 2, 4, 6, 7, 8, 20, 22, 23)
	for _, g := range collect(t, cell, DefaultOptions()) {
		bm := g.Bitmap
		if !bm.ColumnBlank(0) || !bm.ColumnBlank(bm.Width-1) {
			t.Fatalf("glyph %d..%d border not blank", g.Start, g.End)
		}
		if bm.Height != cell.Height {
			t.Fatalf("glyph height %d", bm.Height)
		}
	}
}

func TestSegmentTrailingGlyph(t *testing.T) {
	cell := inkCell(t, 10, 2, 3, 8, 9)
	if n := len(collect(t, cell, DefaultOptions())); n != 1 {
		t.Fatalf("trailing glyph should be dropped, got %d glyphs", n)
	}
	opts := DefaultOptions()
	opts.FlushTrailing = true
	glyphs := collect(t, cell, opts)
	if len(glyphs) != 2 {
		t.Fatalf("flush: got %d glyphs", len(glyphs))
	}
	last := glyphs[1]
	if last.Start != 8 || last.End != 9 || !last.Bitmap.ColumnBlank(last.Bitmap.Width-1) {
		t.Fatalf("flushed glyph %+v", last)
	}
}

func TestSegmentLeadingRunDoesNotOpenBeforeCell(t *testing.T) {
	// eight blank columns at the very start end at col 7: col-8 is -1
	cell := inkCell(t, 12, 9)
	glyphs := collect(t, cell, DefaultOptions())
	if len(glyphs) != 1 || glyphs[0].Space {
		t.Fatalf("got %+v", glyphs)
	}
}
