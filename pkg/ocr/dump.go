package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// FormatGlyph renders g as rows of '1' (foreground) and '0' (background).
func FormatGlyph(g *BinaryImage) string {
	var b strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.At(x, y) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatDefinition renders g as a template definition block for code, in the
// format LoadTemplates reads. Columns past TemplateCols are cut.
func FormatDefinition(code int, g *BinaryImage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ASCII %d:\n", code)
	for y := 0; y < g.Height && y < TemplateRows; y++ {
		for x := 0; x < g.Width && x < TemplateCols; x++ {
			if g.At(x, y) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Dumper receives glyphs no template matched.
type Dumper interface {
	DumpUnknown(u Unknown) error
}

// DirDumper writes unknown glyphs as enlarged PNG files under Dir, named
// after the source image, column, row and glyph position.
type DirDumper struct {
	Dir   string
	Scale int

	once sync.Once
	err  error
}

func (d *DirDumper) DumpUnknown(u Unknown) error {
	d.once.Do(func() { d.err = os.MkdirAll(d.Dir, 0o755) })
	if d.err != nil {
		return d.err
	}
	scale := d.Scale
	if scale <= 0 {
		scale = 8
	}
	base := strings.TrimSuffix(filepath.Base(u.Source), filepath.Ext(u.Source))
	if base == "" || base == "." {
		base = "glyph"
	}
	name := fmt.Sprintf("%s_c%d_r%03d_g%03d.png", base, u.Column, u.Row, u.Index)
	g := u.Bitmap
	img := imaging.Resize(g.Image(), g.Width*scale, g.Height*scale, imaging.NearestNeighbor)
	if err := imaging.Save(img, filepath.Join(d.Dir, name)); err != nil {
		return fmt.Errorf("dump glyph %s: %w", name, err)
	}
	return nil
}
