package ocr

import (
	"fmt"
	"image/color"
)

// Binarize maps every pixel whose first three channels equal key exactly to
// foreground and everything else to background.
func Binarize(buf PixelBuffer, key color.RGBA) (*BinaryImage, error) {
	if buf.Channels < 3 {
		return nil, newError(KindChannels, "binarize", fmt.Errorf("%w: got %d", ErrInsufficientChannels, buf.Channels))
	}
	out, err := NewBinaryImage(buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}
	n := buf.Width * buf.Height
	if len(buf.Pix) < n*buf.Channels {
		return nil, newError(KindDecode, "binarize", fmt.Errorf("%w: pixel data too short (%d < %d)", ErrDecode, len(buf.Pix), n*buf.Channels))
	}
	for i := 0; i < n; i++ {
		p := buf.Pix[i*buf.Channels:]
		if p[0] == key.R && p[1] == key.G && p[2] == key.B {
			out.Pix[i] = foreground
		}
	}
	return out, nil
}
