package ocr

// Match returns the lowest code whose template agrees with g on every set
// cell within the overlapping columns and the first TemplateRows rows. The
// second result is false when nothing matches.
func (t *TemplateTable) Match(g *BinaryImage) (byte, bool) {
	if g == nil {
		return 0, false
	}
	rows := min(g.Height, TemplateRows)
	for code := range t.slots {
		tpl := &t.slots[code]
		if tpl.Width == 0 {
			continue
		}
		if matches(tpl, g, min(tpl.Width, g.Width), rows) {
			return byte(code), true
		}
	}
	return 0, false
}

func matches(tpl *Template, g *BinaryImage, cols, rows int) bool {
	for y := 0; y < rows; y++ {
		line := g.Pix[y*g.Width:]
		for x := 0; x < cols; x++ {
			switch tpl.Cells[y][x] {
			case CellOn:
				if line[x] != foreground {
					return false
				}
			case CellOff:
				if line[x] != background {
					return false
				}
			}
		}
	}
	return true
}
