package ocr

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

// Unknown describes a glyph no template matched.
type Unknown struct {
	Source string
	Column int // 0 left, 1 right
	Row    int
	Index  int // glyph position within the row
	Bitmap *BinaryImage
}

// Result is the transcript of one screenshot.
type Result struct {
	Text     string
	Lines    []string
	Unknowns int
	Empty    bool // nothing left after the header band
}

// Recognizer runs the full pipeline with one template table. It is safe for
// concurrent use as long as OnUnknown and Dumper are.
type Recognizer struct {
	Table  *TemplateTable
	Opts   Options
	Log    *slog.Logger
	Dumper Dumper
	// OnUnknown, when set, is called for every unmatched glyph. The two
	// columns of a screenshot run concurrently.
	OnUnknown func(Unknown)
}

// NewRecognizer validates opts and returns a Recognizer logging to logger
// (slog.Default when nil).
func NewRecognizer(table *TemplateTable, opts Options, logger *slog.Logger) (*Recognizer, error) {
	if table == nil {
		return nil, fmt.Errorf("recognizer: nil template table")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("recognizer: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{Table: table, Opts: opts, Log: logger}, nil
}

// Fingerprint identifies the table and options together. Two recognizers
// with the same fingerprint produce the same transcript for any screenshot.
func (r *Recognizer) Fingerprint() string {
	sum := blake2b.Sum256([]byte(r.Table.Fingerprint() + ":" + r.Opts.Fingerprint()))
	return hex.EncodeToString(sum[:])
}

// TranscribeColumn transcribes one column: one line per row slot, blank
// slots included. It returns the text and the number of unknown glyphs.
func (r *Recognizer) TranscribeColumn(source string, column int, col *BinaryImage) (string, int, error) {
	rows, err := ExtractRows(col, r.Opts)
	if err != nil {
		return "", 0, err
	}
	var b strings.Builder
	unknowns := 0
	for _, row := range rows {
		if row.Blank() {
			b.WriteByte('\n')
			continue
		}
		idx := 0
		err := Segment(row.Cell, r.Opts, func(g Glyph) {
			ch, ok := r.Table.Match(g.Bitmap)
			if !ok {
				ch = r.Opts.Unknown
				unknowns++
				r.reportUnknown(Unknown{Source: source, Column: column, Row: row.Index, Index: idx, Bitmap: g.Bitmap})
			}
			b.WriteByte(ch)
			idx++
		})
		if err != nil {
			return "", 0, err
		}
		b.WriteByte('\n')
	}
	return b.String(), unknowns, nil
}

func (r *Recognizer) reportUnknown(u Unknown) {
	r.Log.Warn("no matching template", "source", u.Source, "column", u.Column, "row", u.Row, "glyph", u.Index, "width", u.Bitmap.Width)
	if r.Log.Enabled(context.Background(), slog.LevelDebug) {
		r.Log.Debug("unknown glyph matrix\n" + FormatGlyph(u.Bitmap))
	}
	if r.Dumper != nil {
		if err := r.Dumper.DumpUnknown(u); err != nil {
			r.Log.Warn("dump unknown glyph", "source", u.Source, "err", err)
		}
	}
	if r.OnUnknown != nil {
		r.OnUnknown(u)
	}
}

// Transcribe binarizes buf, splits it into columns and transcribes them
// concurrently. The left column's lines come first.
func (r *Recognizer) Transcribe(source string, buf PixelBuffer) (Result, error) {
	bin, err := Binarize(buf, r.Opts.ChromaKey)
	if err != nil {
		return Result{}, withPath(err, source)
	}
	layout, err := SplitColumns(bin, r.Opts)
	if err != nil {
		return Result{}, withPath(err, source)
	}
	if layout.Empty {
		return Result{Empty: true}, nil
	}
	cols := layout.Columns()
	texts := make([]string, len(cols))
	counts := make([]int, len(cols))
	var g errgroup.Group
	for i, col := range cols {
		g.Go(func() error {
			text, n, err := r.TranscribeColumn(source, i, col)
			if err != nil {
				return err
			}
			texts[i], counts[i] = text, n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, withPath(err, source)
	}
	res := Result{Text: strings.Join(texts, "")}
	for _, n := range counts {
		res.Unknowns += n
	}
	res.Lines = SplitLines(res.Text)
	return res, nil
}

// TranscribeImage transcribes an already decoded image.
func (r *Recognizer) TranscribeImage(source string, img image.Image) (Result, error) {
	buf, err := NewPixelBuffer(img)
	if err != nil {
		return Result{}, withPath(err, source)
	}
	return r.Transcribe(source, buf)
}

// TranscribeFile decodes the image at path and transcribes it.
func (r *Recognizer) TranscribeFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, &Error{Kind: KindDecode, Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return r.TranscribeReader(path, f)
}

// TranscribeReader decodes an image from rd and transcribes it. name is used
// only for logging and error messages. A PNG stored as gray+alpha counts as
// two channels even though it decodes to NRGBA.
func (r *Recognizer) TranscribeReader(name string, rd io.Reader) (Result, error) {
	br := bufio.NewReader(rd)
	peeked, _ := br.Peek(pngHeaderLen)
	hdr := append([]byte(nil), peeked...)
	img, err := imaging.Decode(br)
	if err != nil {
		return Result{}, &Error{Kind: KindDecode, Op: "decode", Path: name, Err: err}
	}
	if n := pngChannels(hdr); n > 0 && n < 3 {
		return Result{}, withPath(newError(KindChannels, "decode", fmt.Errorf("%w: got %d", ErrInsufficientChannels, n)), name)
	}
	return r.TranscribeImage(name, img)
}
