package ocr

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
)

func newTestRecognizer(t *testing.T, tbl *TemplateTable) *Recognizer {
	t.Helper()
	r, err := NewRecognizer(tbl, DefaultOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestTranscribeBlankImage(t *testing.T) {
	r := newTestRecognizer(t, testTable(t))
	img := imaging.New(40, 2+2*18, color.NRGBA{A: 255})
	res, err := r.TranscribeImage("blank", img)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "\n\n\n\n" {
		t.Fatalf("text = %q", res.Text)
	}
	if len(res.Lines) != 4 || res.Unknowns != 0 {
		t.Fatalf("lines=%q unknowns=%d", res.Lines, res.Unknowns)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	tbl := testTable(t)
	opts := DefaultOptions()
	left := []string{"HI LOT", "OH"}
	right := []string{"TOIL", "", "HOT  TO"}
	img, err := Render(tbl, opts, left, right, 80)
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRecognizer(t, tbl)
	res, err := r.TranscribeImage("rendered", img)
	if err != nil {
		t.Fatal(err)
	}
	want := "HI LOT\nOH\n\nTOIL\n\nHOT  TO\n"
	if res.Text != want {
		t.Fatalf("text = %q want %q", res.Text, want)
	}

	path := filepath.Join(t.TempDir(), "shot.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
	fromFile, err := r.TranscribeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if fromFile.Text != want {
		t.Fatalf("file text = %q", fromFile.Text)
	}
}

func TestRenderRejectsUnknownCharacters(t *testing.T) {
	if _, err := Render(testTable(t), DefaultOptions(), []string{"HZ"}, nil, 80); err == nil {
		t.Fatal("expected error for missing template")
	}
	if _, err := Render(testTable(t), DefaultOptions(), []string{"HOTHOTHOT"}, nil, 20); err == nil {
		t.Fatal("expected error for overlong line")
	}
}

func TestTranscribeUnknownGlyph(t *testing.T) {
	full := testTable(t)
	img, err := Render(full, DefaultOptions(), []string{"HIT"}, []string{"LO"}, 60)
	if err != nil {
		t.Fatal(err)
	}
	partial := testTable(t)
	if err := partial.Put(Template{Code: 'I'}); err != nil {
		t.Fatal(err)
	}
	r := newTestRecognizer(t, partial)
	dir := t.TempDir()
	r.Dumper = &DirDumper{Dir: dir, Scale: 2}
	var hooked atomic.Int32
	r.OnUnknown = func(u Unknown) {
		hooked.Add(1)
		if u.Column != 0 || u.Row != 0 || u.Index != 1 {
			t.Errorf("unknown at column %d row %d glyph %d", u.Column, u.Row, u.Index)
		}
	}
	res, err := r.TranscribeImage("shot.png", img)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "H?T\nLO\n" || res.Unknowns != 1 {
		t.Fatalf("text = %q unknowns = %d", res.Text, res.Unknowns)
	}
	if hooked.Load() != 1 {
		t.Fatalf("hook called %d times", hooked.Load())
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("dump dir: %v %v", entries, err)
	}
	if !strings.HasPrefix(entries[0].Name(), "shot_c0_r000_g001") {
		t.Fatalf("dump name %s", entries[0].Name())
	}
}

func TestTranscribeErrors(t *testing.T) {
	r := newTestRecognizer(t, testTable(t))

	_, err := r.TranscribeImage("gray", image.NewGray(image.Rect(0, 0, 4, 40)))
	if !errors.Is(err, ErrInsufficientChannels) {
		t.Fatalf("gray: %v", err)
	}
	_, err = r.TranscribeImage("odd", imaging.New(5, 40, color.NRGBA{A: 255}))
	if !errors.Is(err, ErrOddWidth) {
		t.Fatalf("odd: %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Path != "odd" {
		t.Fatalf("path not attached: %v", err)
	}
	_, err = r.TranscribeReader("junk", strings.NewReader("not an image"))
	if !errors.Is(err, ErrDecode) || IsFatal(err) {
		t.Fatalf("junk: %v", err)
	}
	_, err = r.TranscribeFile(filepath.Join(t.TempDir(), "missing.png"))
	if KindOf(err) != KindDecode {
		t.Fatalf("missing: %v", err)
	}
}

// grayAlphaPNG encodes a w x h gray+alpha PNG where every pixel is v, since
// image/png never writes that color type.
func grayAlphaPNG(t *testing.T, w, h int, v byte) []byte {
	t.Helper()
	var out bytes.Buffer
	out.Write(pngSignature)
	chunk := func(typ string, data []byte) {
		binary.Write(&out, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		out.Write(body)
		binary.Write(&out, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8], ihdr[9] = 8, 4
	chunk("IHDR", ihdr)

	var raw bytes.Buffer
	for y := 0; y < h; y++ {
		raw.WriteByte(0)
		for x := 0; x < w; x++ {
			raw.Write([]byte{v, 255})
		}
	}
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	chunk("IDAT", z.Bytes())
	chunk("IEND", nil)
	return out.Bytes()
}

func TestTranscribeReaderRejectsGrayAlpha(t *testing.T) {
	r := newTestRecognizer(t, testTable(t))
	data := grayAlphaPNG(t, 4, 40, 221)
	if n := pngChannels(data); n != 2 {
		t.Fatalf("header channels = %d want 2", n)
	}
	_, err := r.TranscribeReader("ga.png", bytes.NewReader(data))
	if !errors.Is(err, ErrInsufficientChannels) || KindOf(err) != KindChannels {
		t.Fatalf("gray+alpha: %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Path != "ga.png" {
		t.Fatalf("path not attached: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ga.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.TranscribeFile(path); KindOf(err) != KindChannels {
		t.Fatalf("file: %v", err)
	}
}

func TestPNGChannels(t *testing.T) {
	var rgba bytes.Buffer
	if err := imaging.Encode(&rgba, imaging.New(2, 2, color.NRGBA{R: 1, A: 128}), imaging.PNG); err != nil {
		t.Fatal(err)
	}
	if n := pngChannels(rgba.Bytes()); n != 4 {
		t.Fatalf("rgba channels = %d", n)
	}
	if n := pngChannels([]byte("GIF89a")); n != 0 {
		t.Fatalf("non-png channels = %d", n)
	}
}

func TestTranscribeHeaderOnly(t *testing.T) {
	r := newTestRecognizer(t, testTable(t))
	res, err := r.TranscribeImage("tiny", imaging.New(8, 2, color.NRGBA{A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Empty || res.Text != "" {
		t.Fatalf("got %+v", res)
	}
}

func TestNewRecognizerValidates(t *testing.T) {
	opts := DefaultOptions()
	opts.RowPitch = 0
	if _, err := NewRecognizer(testTable(t), opts, nil); err == nil {
		t.Fatal("expected invalid options error")
	}
	if _, err := NewRecognizer(nil, DefaultOptions(), nil); err == nil {
		t.Fatal("expected nil table error")
	}
}
