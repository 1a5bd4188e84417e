package ocr

import "testing"

func TestExtractRowsCount(t *testing.T) {
	opts := DefaultOptions()
	for _, h := range []int{1, 17, 18, 35, 36, 100} {
		col, _ := NewBinaryImage(10, h)
		rows, err := ExtractRows(col, opts)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != h/opts.RowPitch {
			t.Fatalf("height %d: %d rows want %d", h, len(rows), h/opts.RowPitch)
		}
		for _, r := range rows {
			if !r.Blank() {
				t.Fatalf("height %d: row %d should be blank", h, r.Index)
			}
		}
	}
}

func TestExtractRowsCropWithMargin(t *testing.T) {
	opts := DefaultOptions()
	col, _ := NewBinaryImage(20, 36)
	col.Set(5, 2, true)
	col.Set(9, 17, true)
	col.Set(0, 18+2, true)
	col.Set(19, 18+3, true)
	// header band pixels are ignored
	col.Set(15, 18, true)
	rows, err := ExtractRows(col, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	first := rows[0].Cell
	if first.Width != 7 || first.Height != 16 {
		t.Fatalf("first cell %dx%d want 7x16", first.Width, first.Height)
	}
	if !first.At(1, 0) || !first.At(5, 15) {
		t.Fatal("first cell content misplaced")
	}
	second := rows[1].Cell
	if second.Width != 20 {
		t.Fatalf("second cell width %d want 20 (clamped)", second.Width)
	}
}

func TestExtractRowsHeaderOnlyIsBlank(t *testing.T) {
	col, _ := NewBinaryImage(10, 18)
	col.Set(4, 1, true)
	rows, _ := ExtractRows(col, DefaultOptions())
	if len(rows) != 1 || !rows[0].Blank() {
		t.Fatalf("expected one blank row, got %+v", rows)
	}
}

func TestExtractRowsNoBand(t *testing.T) {
	opts := DefaultOptions()
	opts.RowHeaderRows = opts.RowPitch
	col, _ := NewBinaryImage(10, 36)
	col.Set(1, 20, true)
	rows, err := ExtractRows(col, opts)
	if err != nil || len(rows) != 0 {
		t.Fatalf("rows=%d err=%v", len(rows), err)
	}
}
