package ocr

import (
	"fmt"
	"image"
)

// Layout is a screenshot split into its two text columns. Both columns share
// Width and Height. Empty is set when no rows remain after the header band is
// removed; Left and Right are nil then.
type Layout struct {
	Left   *BinaryImage
	Right  *BinaryImage
	Width  int
	Height int
	Empty  bool
}

// Columns returns the columns in transcript order.
func (l Layout) Columns() []*BinaryImage {
	if l.Empty {
		return nil
	}
	return []*BinaryImage{l.Left, l.Right}
}

// activeHeight trims trailing rows below the last lit row, snapped up to a
// whole number of row slots (counted after the header band) and capped at the
// image height.
func activeHeight(img *BinaryImage, opts Options) int {
	last := -1
	for y := 0; y < img.Height; y++ {
		if !img.RowBlank(y) {
			last = y
		}
	}
	if last == -1 {
		return img.Height
	}
	h := last + 1
	if rem := (h - opts.HeaderRows) % opts.RowPitch; rem != 0 {
		h += opts.RowPitch - rem
	}
	if h > img.Height {
		h = img.Height
	}
	return h
}

// SplitColumns trims the active region of img, drops the header band and
// splits the rest into two equal-width columns.
func SplitColumns(img *BinaryImage, opts Options) (Layout, error) {
	if img.Width%2 != 0 {
		return Layout{}, newError(KindOddWidth, "split columns", fmt.Errorf("%w: width %d", ErrOddWidth, img.Width))
	}
	half := img.Width / 2
	height := activeHeight(img, opts) - opts.HeaderRows
	if height <= 0 || half == 0 {
		return Layout{Width: half, Empty: true}, nil
	}
	top := opts.HeaderRows
	left, err := img.Crop(image.Rect(0, top, half, top+height))
	if err != nil {
		return Layout{}, err
	}
	right, err := img.Crop(image.Rect(half, top, img.Width, top+height))
	if err != nil {
		return Layout{}, err
	}
	return Layout{Left: left, Right: right, Width: half, Height: height}, nil
}
