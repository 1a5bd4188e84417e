package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MaxPixels bounds every buffer the pipeline allocates. Larger requests fail
// with ErrAllocation instead of exhausting memory.
const MaxPixels = 1 << 28

const (
	background byte = 0
	foreground byte = 255
)

// PixelBuffer is a decoded screenshot: row-major, Channels bytes per pixel.
type PixelBuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewPixelBuffer flattens img into a PixelBuffer. Grayscale models keep a
// single channel; everything else becomes non-premultiplied RGBA so the
// original color values survive for exact chroma-key comparison.
func NewPixelBuffer(img image.Image) (PixelBuffer, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if err := checkSize(w, h); err != nil {
		return PixelBuffer{}, err
	}
	switch src := img.(type) {
	case *image.Gray:
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			off := (b.Min.Y+y-src.Rect.Min.Y)*src.Stride + (b.Min.X - src.Rect.Min.X)
			copy(pix[y*w:(y+1)*w], src.Pix[off:off+w])
		}
		return PixelBuffer{Width: w, Height: h, Channels: 1, Pix: pix}, nil
	case *image.Gray16:
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = byte(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)
			}
		}
		return PixelBuffer{Width: w, Height: h, Channels: 1, Pix: pix}, nil
	}
	nrgba := imaging.Clone(img)
	return PixelBuffer{Width: w, Height: h, Channels: 4, Pix: nrgba.Pix}, nil
}

// pngHeaderLen covers the signature and the IHDR fields up to color type.
const pngHeaderLen = 26

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngChannels reports the channel count a PNG header declares, or 0 when hdr
// is not a PNG header. Paletted images count as RGB.
func pngChannels(hdr []byte) int {
	if len(hdr) < pngHeaderLen || !bytes.HasPrefix(hdr, pngSignature) || string(hdr[12:16]) != "IHDR" {
		return 0
	}
	switch hdr[25] {
	case 0:
		return 1
	case 2, 3:
		return 3
	case 4:
		return 2
	case 6:
		return 4
	}
	return 0
}

// BinaryImage holds one byte per pixel, each either 0 (background) or 255
// (foreground).
type BinaryImage struct {
	Width  int
	Height int
	Pix    []byte
}

func checkSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return newError(KindAllocation, "allocate", fmt.Errorf("%w: non-positive size %dx%d", ErrAllocation, w, h))
	}
	if w > MaxPixels/h {
		return newError(KindAllocation, "allocate", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, w, h, MaxPixels))
	}
	return nil
}

// NewBinaryImage allocates an all-background image.
func NewBinaryImage(w, h int) (*BinaryImage, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	return &BinaryImage{Width: w, Height: h, Pix: make([]byte, w*h)}, nil
}

// At reports whether (x, y) is foreground. Out-of-range reads are background.
func (b *BinaryImage) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Pix[y*b.Width+x] == foreground
}

// Set marks (x, y) as foreground or background.
func (b *BinaryImage) Set(x, y int, on bool) {
	v := background
	if on {
		v = foreground
	}
	b.Pix[y*b.Width+x] = v
}

// ColumnBlank reports whether column x has no foreground pixel.
func (b *BinaryImage) ColumnBlank(x int) bool {
	for y := 0; y < b.Height; y++ {
		if b.Pix[y*b.Width+x] != background {
			return false
		}
	}
	return true
}

// RowBlank reports whether row y has no foreground pixel.
func (b *BinaryImage) RowBlank(y int) bool {
	for _, v := range b.Pix[y*b.Width : (y+1)*b.Width] {
		if v == foreground {
			return false
		}
	}
	return true
}

// Crop copies the rectangle r (which must lie inside b and be non-empty).
func (b *BinaryImage) Crop(r image.Rectangle) (*BinaryImage, error) {
	if r.Empty() || !r.In(image.Rect(0, 0, b.Width, b.Height)) {
		return nil, newError(KindAllocation, "crop", fmt.Errorf("%w: rectangle %v outside %dx%d", ErrAllocation, r, b.Width, b.Height))
	}
	out, err := NewBinaryImage(r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < out.Height; y++ {
		src := (r.Min.Y+y)*b.Width + r.Min.X
		copy(out.Pix[y*out.Width:(y+1)*out.Width], b.Pix[src:src+out.Width])
	}
	return out, nil
}

// Image converts b into a grayscale image for dumps: foreground is white.
func (b *BinaryImage) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}
