package ocr

import "image"

// Row is one fixed-height text line of a column. Cell is nil for a slot with
// no foreground; such rows still produce a line break.
type Row struct {
	Index int
	Cell  *BinaryImage
}

// Blank reports whether the row has no foreground.
func (r Row) Blank() bool { return r.Cell == nil }

// ExtractRows slices col into floor(Height/RowPitch) slots, drops each slot's
// header band and crops the rest to its foreground columns plus one column of
// margin on each side.
func ExtractRows(col *BinaryImage, opts Options) ([]Row, error) {
	band := opts.bandHeight()
	if band <= 0 || col == nil {
		return nil, nil
	}
	slots := col.Height / opts.RowPitch
	rows := make([]Row, 0, slots)
	for i := 0; i < slots; i++ {
		top := i*opts.RowPitch + opts.RowHeaderRows
		left, right := -1, -1
		for x := 0; x < col.Width; x++ {
			for y := top; y < top+band; y++ {
				if col.At(x, y) {
					if left == -1 {
						left = x
					}
					right = x
					break
				}
			}
		}
		if left == -1 {
			rows = append(rows, Row{Index: i})
			continue
		}
		x0 := max(left-1, 0)
		x1 := min(right+2, col.Width)
		cell, err := col.Crop(image.Rect(x0, top, x1, top+band))
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{Index: i, Cell: cell})
	}
	return rows, nil
}
