package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/disintegration/imaging"

	"screentext/pkg/config"
	"screentext/pkg/logging"
	"screentext/pkg/ocr"
)

// Draws a synthetic screenshot from a text file. Lines before a line holding
// only "---" go into the left column, the rest into the right one.
func main() {
	in := flag.String("in", "", "text file (default stdin)")
	out := flag.String("out", "render.png", "output PNG")
	width := flag.Int("col-width", 400, "width of one column in pixels")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(cfg.Verbose, "render")
	table, err := ocr.LoadTemplateFile(cfg.TemplateFile, log)
	if err != nil {
		log.Error("load templates", "err", err)
		os.Exit(1)
	}

	src := os.Stdin
	if *in != "" {
		if src, err = os.Open(*in); err != nil {
			log.Error("open input", "err", err)
			os.Exit(1)
		}
		defer src.Close()
	}
	var left, right []string
	cur := &left
	sc := bufio.NewScanner(src)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "---" {
			cur = &right
			continue
		}
		*cur = append(*cur, line)
	}
	if err := sc.Err(); err != nil {
		log.Error("read input", "err", err)
		os.Exit(1)
	}

	img, err := ocr.Render(table, cfg.Options(), left, right, *width)
	if err != nil {
		log.Error("render", "err", err)
		os.Exit(1)
	}
	if err := imaging.Save(img, *out); err != nil {
		log.Error("save", "err", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%dx%d)\n", *out, img.Bounds().Dx(), img.Bounds().Dy())
}
