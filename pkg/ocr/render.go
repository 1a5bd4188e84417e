package ocr

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Render draws left and right as the two columns of a synthetic screenshot,
// using the on-cells of table's templates painted in opts.ChromaKey on a black
// background. A space advances SpaceRun columns; any other byte needs a
// template. Leading and trailing spaces of a line do not survive recognition
// because rows are cropped to their foreground.
func Render(table *TemplateTable, opts Options, left, right []string, colWidth int) (*image.NRGBA, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	lines := max(len(left), len(right), 1)
	w, h := 2*colWidth, opts.HeaderRows+lines*opts.RowPitch
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	img := imaging.New(w, h, color.NRGBA{A: 255})
	ink := color.NRGBA{R: opts.ChromaKey.R, G: opts.ChromaKey.G, B: opts.ChromaKey.B, A: 255}
	band := opts.bandHeight()
	for c, col := range [][]string{left, right} {
		x0 := c * colWidth
		for i, line := range col {
			top := opts.HeaderRows + i*opts.RowPitch + opts.RowHeaderRows
			x := x0 + 1
			for j := 0; j < len(line); j++ {
				ch := line[j]
				if ch == ' ' {
					x += opts.SpaceRun
					continue
				}
				tpl, ok := table.Get(ch)
				if !ok {
					return nil, fmt.Errorf("render: no template for %q", ch)
				}
				if x+tpl.Width >= x0+colWidth {
					return nil, fmt.Errorf("render: line %q does not fit in %d columns", line, colWidth)
				}
				for y := 0; y < tpl.Rows && y < band; y++ {
					for cx := 0; cx < tpl.Width; cx++ {
						if tpl.Cells[y][cx] == CellOn {
							img.SetNRGBA(x+cx, top+y, ink)
						}
					}
				}
				x += tpl.Width
			}
		}
	}
	return img, nil
}
