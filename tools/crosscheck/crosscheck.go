// Package crosscheck compares template transcripts against Tesseract output
// for the same screenshot, to spot wrong or missing templates.
package crosscheck

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"screentext/pkg/ocr"
)

// Diff is one line where the two transcripts disagree after normalization.
type Diff struct {
	Line      int
	Template  string
	Tesseract string
}

// Compare lines up both texts, ignoring blank lines and whitespace runs.
func Compare(template, tesseract string) []Diff {
	a, b := nonBlank(template), nonBlank(tesseract)
	var out []Diff
	for i := 0; i < max(len(a), len(b)); i++ {
		var x, y string
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			out = append(out, Diff{Line: i + 1, Template: x, Tesseract: y})
		}
	}
	return out
}

func nonBlank(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = ocr.NormalizeLine(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ColumnImages cuts img into its two text columns below the header band and
// turns them into dark text on a light background, scaled up for Tesseract.
func ColumnImages(img image.Image, opts ocr.Options, scale int) []image.Image {
	if scale < 1 {
		scale = 1
	}
	b := img.Bounds()
	half := b.Dx() / 2
	var out []image.Image
	for c := 0; c < 2; c++ {
		x0 := b.Min.X + c*half
		col := imaging.Crop(img, image.Rect(x0, b.Min.Y+opts.HeaderRows, x0+half, b.Max.Y))
		col = imaging.Invert(imaging.Grayscale(col))
		if scale > 1 {
			col = imaging.Resize(col, col.Bounds().Dx()*scale, 0, imaging.NearestNeighbor)
		}
		out = append(out, col)
	}
	return out
}

// Tesseract runs gosseract over both columns of the screenshot at path and
// returns the left column's lines followed by the right column's.
func Tesseract(path string, opts ocr.Options, lang string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(lang); err != nil {
		return "", err
	}
	_ = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	var sb strings.Builder
	for _, col := range ColumnImages(img, opts, 3) {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, col, imaging.PNG); err != nil {
			return "", err
		}
		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			return "", err
		}
		text, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("tesseract %s: %w", path, err)
		}
		sb.WriteString(strings.TrimRight(text, "\n"))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
