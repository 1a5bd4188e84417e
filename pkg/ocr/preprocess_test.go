package ocr

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestBinarizeExactKey(t *testing.T) {
	key := DefaultChromaKey
	buf := PixelBuffer{Width: 4, Height: 1, Channels: 3, Pix: []byte{
		221, 221, 221,
		221, 221, 220,
		0, 0, 0,
		222, 221, 221,
	}}
	out, err := Binarize(buf, key)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 4 || out.Height != 1 {
		t.Fatalf("dimensions changed: %dx%d", out.Width, out.Height)
	}
	want := []byte{255, 0, 0, 0}
	for i, v := range want {
		if out.Pix[i] != v {
			t.Fatalf("pixel %d = %d want %d", i, out.Pix[i], v)
		}
	}
}

func TestBinarizeIgnoresAlpha(t *testing.T) {
	buf := PixelBuffer{Width: 2, Height: 1, Channels: 4, Pix: []byte{
		221, 221, 221, 0,
		221, 221, 221, 255,
	}}
	out, err := Binarize(buf, DefaultChromaKey)
	if err != nil {
		t.Fatal(err)
	}
	if !out.At(0, 0) || !out.At(1, 0) {
		t.Fatalf("alpha must not affect binarization: %v", out.Pix)
	}
}

func TestBinarizeInsufficientChannels(t *testing.T) {
	buf := PixelBuffer{Width: 1, Height: 1, Channels: 1, Pix: []byte{221}}
	_, err := Binarize(buf, DefaultChromaKey)
	if !errors.Is(err, ErrInsufficientChannels) || KindOf(err) != KindChannels {
		t.Fatalf("expected insufficient channels, got %v", err)
	}
}

func TestNewPixelBufferModels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	buf, err := NewPixelBuffer(gray)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Channels != 1 || len(buf.Pix) != 6 {
		t.Fatalf("gray: channels=%d len=%d", buf.Channels, len(buf.Pix))
	}

	rgba := imaging.New(3, 2, color.NRGBA{221, 221, 221, 255})
	buf, err = NewPixelBuffer(rgba)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Channels != 4 || buf.Width != 3 || buf.Height != 2 {
		t.Fatalf("rgba: %+v", buf)
	}
	out, err := Binarize(buf, DefaultChromaKey)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Pix {
		if v != 255 {
			t.Fatalf("pixel %d not foreground", i)
		}
	}
}

func TestNewBinaryImageLimits(t *testing.T) {
	if _, err := NewBinaryImage(0, 5); !errors.Is(err, ErrAllocation) {
		t.Fatalf("zero width: %v", err)
	}
	if _, err := NewBinaryImage(MaxPixels, 2); !IsFatal(err) {
		t.Fatalf("oversized image must be fatal, got %v", err)
	}
}
