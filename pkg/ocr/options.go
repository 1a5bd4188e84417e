package ocr

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image/color"

	"golang.org/x/crypto/blake2b"
)

// Font and layout constants of the rendering convention the recognizer is
// tuned to.
const (
	TemplateRows = 16
	TemplateCols = 12
	TableSize    = 123

	DefaultRowPitch      = 18
	DefaultHeaderRows    = 2
	DefaultRowHeaderRows = 2
	DefaultSpaceRun      = 8
	UnknownChar          = '?'
)

// DefaultChromaKey is the exact color the font is rendered in.
var DefaultChromaKey = color.RGBA{R: 221, G: 221, B: 221, A: 255}

// Options tunes the pipeline. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	ChromaKey     color.RGBA
	RowPitch      int  // pixel height of one text line, header band included
	HeaderRows    int  // rows discarded at the top of the screenshot
	RowHeaderRows int  // rows discarded at the top of every row slot
	SpaceRun      int  // background columns that make a space glyph
	Unknown       byte // emitted when no template matches
	// FlushTrailing emits a glyph still open at the end of a row. Off by
	// default: such glyphs are dropped.
	FlushTrailing bool
}

// DefaultOptions returns the settings of the reference screenshots.
func DefaultOptions() Options {
	return Options{
		ChromaKey:     DefaultChromaKey,
		RowPitch:      DefaultRowPitch,
		HeaderRows:    DefaultHeaderRows,
		RowHeaderRows: DefaultRowHeaderRows,
		SpaceRun:      DefaultSpaceRun,
		Unknown:       UnknownChar,
	}
}

// Validate rejects settings the pipeline cannot run with.
func (o Options) Validate() error {
	if o.RowPitch <= 0 {
		return fmt.Errorf("row pitch must be positive, got %d", o.RowPitch)
	}
	if o.HeaderRows < 0 || o.RowHeaderRows < 0 {
		return fmt.Errorf("header rows must not be negative (header=%d, row header=%d)", o.HeaderRows, o.RowHeaderRows)
	}
	if o.SpaceRun <= 0 {
		return fmt.Errorf("space run must be positive, got %d", o.SpaceRun)
	}
	return nil
}

// Fingerprint is a BLAKE2b-256 digest of every setting that can change a
// transcript. The alpha of ChromaKey is left out since binarization ignores it.
func (o Options) Fingerprint() string {
	h, _ := blake2b.New256(nil)
	var buf [4]byte
	put := func(v int) {
		binary.BigEndian.PutUint32(buf[:], uint32(int32(v)))
		h.Write(buf[:])
	}
	h.Write([]byte{o.ChromaKey.R, o.ChromaKey.G, o.ChromaKey.B, o.Unknown})
	put(o.RowPitch)
	put(o.HeaderRows)
	put(o.RowHeaderRows)
	put(o.SpaceRun)
	if o.FlushTrailing {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// bandHeight is the usable height of a row slot. Non-positive means no slot
// yields a cell.
func (o Options) bandHeight() int {
	return o.RowPitch - o.RowHeaderRows
}
