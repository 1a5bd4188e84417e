package ocr

// Glyph is one segmented character cell. Bitmap carries a one-column
// background border on both sides. Space glyphs are entirely background.
// Start and End are the inclusive source columns within the row cell.
type Glyph struct {
	Bitmap *BinaryImage
	Space  bool
	Start  int
	End    int
}

// Segment walks cell column by column and hands every completed glyph to emit
// in left-to-right order. Each column runs three steps in a fixed order:
//
//  1. the SpaceRun-th consecutive background column opens a space glyph
//     SpaceRun columns back when nothing is open,
//  2. a foreground column opens a glyph when none is open,
//  3. a background column closes the open glyph at the previous column.
//
// A glyph still open when the row ends is dropped unless opts.FlushTrailing
// is set.
func Segment(cell *BinaryImage, opts Options, emit func(Glyph)) error {
	if cell == nil {
		return nil
	}
	start := -1
	spaceCount := 0
	spaceOpen := false
	for col := 0; col < cell.Width; col++ {
		blank := cell.ColumnBlank(col)
		if blank {
			spaceCount++
			if spaceCount == opts.SpaceRun && start == -1 && col-opts.SpaceRun >= 0 {
				start = col - opts.SpaceRun
				spaceOpen = true
			}
		} else {
			spaceCount = 0
		}

		if !blank {
			if start == -1 {
				start = col
			}
			continue
		}
		if start == -1 {
			continue
		}
		g, err := cutGlyph(cell, start, col-1, spaceOpen)
		if err != nil {
			return err
		}
		if spaceOpen {
			spaceCount = 0
		}
		emit(g)
		start, spaceOpen = -1, false
	}
	if start != -1 && opts.FlushTrailing {
		g, err := cutGlyph(cell, start, cell.Width-1, spaceOpen)
		if err != nil {
			return err
		}
		emit(g)
	}
	return nil
}

// cutGlyph copies columns start..end of cell with a background border. Source
// columns outside the cell read as background.
func cutGlyph(cell *BinaryImage, start, end int, space bool) (Glyph, error) {
	bm, err := NewBinaryImage(end-start+3, cell.Height)
	if err != nil {
		return Glyph{}, err
	}
	if !space {
		for y := 0; y < cell.Height; y++ {
			for x := 1; x < bm.Width-1; x++ {
				if cell.At(start+x-1, y) {
					bm.Pix[y*bm.Width+x] = foreground
				}
			}
		}
	}
	return Glyph{Bitmap: bm, Space: space, Start: start, End: end}, nil
}
