package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/disintegration/imaging"

	"screentext/pkg/config"
	"screentext/pkg/logging"
	"screentext/pkg/ocr"
)

// Prints the transcript of a screenshot and, for each glyph no template
// matched, a definition block ready to be edited into the template file.
// With -all every glyph is printed, matched or not.
func main() {
	all := flag.Bool("all", false, "print every glyph, not only unknown ones")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("usage: go run ./tools/cmd/inspect [-all] <screenshot.png>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(cfg.Verbose, "inspect")
	table, err := ocr.LoadTemplateFile(cfg.TemplateFile, log)
	if err != nil {
		log.Error("load templates", "err", err)
		os.Exit(1)
	}

	if *all {
		if err := dumpAll(path, table, cfg.Options()); err != nil {
			log.Error("inspect", "err", err)
			os.Exit(1)
		}
		return
	}

	rec, err := ocr.NewRecognizer(table, cfg.Options(), logging.Discard())
	if err != nil {
		log.Error("recognizer", "err", err)
		os.Exit(1)
	}
	var mu sync.Mutex
	var blocks []string
	rec.OnUnknown = func(u ocr.Unknown) {
		mu.Lock()
		defer mu.Unlock()
		blocks = append(blocks, fmt.Sprintf("# column %d row %d glyph %d\n%s", u.Column, u.Row, u.Index, ocr.FormatDefinition(0, u.Bitmap)))
	}
	res, err := rec.TranscribeFile(path)
	if err != nil {
		log.Error("transcribe", "err", err)
		os.Exit(1)
	}
	fmt.Print(res.Text)
	fmt.Printf("# %d unknown glyphs\n", res.Unknowns)
	for _, b := range blocks {
		fmt.Print(b)
	}
}

func dumpAll(path string, table *ocr.TemplateTable, opts ocr.Options) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	buf, err := ocr.NewPixelBuffer(img)
	if err != nil {
		return err
	}
	bin, err := ocr.Binarize(buf, opts.ChromaKey)
	if err != nil {
		return err
	}
	layout, err := ocr.SplitColumns(bin, opts)
	if err != nil || layout.Empty {
		return err
	}
	for c, col := range layout.Columns() {
		rows, err := ocr.ExtractRows(col, opts)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.Blank() {
				continue
			}
			i := 0
			err := ocr.Segment(row.Cell, opts, func(g ocr.Glyph) {
				code, label := int(' '), "space"
				if !g.Space {
					code, label = 0, "unknown"
					if ch, ok := table.Match(g.Bitmap); ok {
						code, label = int(ch), fmt.Sprintf("%q", ch)
					}
				}
				fmt.Printf("# column %d row %d glyph %d cols %d..%d %s\n%s", c, row.Index, i, g.Start, g.End, label, ocr.FormatDefinition(code, g.Bitmap))
				i++
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
