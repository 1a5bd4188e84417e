package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"screentext/pkg/config"
	"screentext/pkg/logging"
	"screentext/pkg/ocr"
	"screentext/tools/crosscheck"
)

func main() {
	lang := flag.String("lang", "eng", "tesseract language")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("usage: go run ./tools/cmd/crosscheck [-lang eng] <screenshot.png>...")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(cfg.Verbose, "crosscheck")
	table, err := ocr.LoadTemplateFile(cfg.TemplateFile, log)
	if err != nil {
		log.Error("load templates", "err", err)
		os.Exit(1)
	}
	rec, err := ocr.NewRecognizer(table, cfg.Options(), log)
	if err != nil {
		log.Error("recognizer", "err", err)
		os.Exit(1)
	}

	mismatched := 0
	for _, p := range flag.Args() {
		res, err := rec.TranscribeFile(p)
		if err != nil {
			log.Warn("transcribe", "file", p, "err", err)
			continue
		}
		tess, err := crosscheck.Tesseract(p, cfg.Options(), *lang)
		if err != nil {
			log.Warn("tesseract", "file", p, "err", err)
			continue
		}
		diffs := crosscheck.Compare(res.Text, tess)
		fmt.Printf("%s: lines=%d unknowns=%d mismatches=%d\n", filepath.Base(p), len(res.Lines), res.Unknowns, len(diffs))
		for _, d := range diffs {
			fmt.Printf("  %3d template=%q tesseract=%q\n", d.Line, d.Template, d.Tesseract)
		}
		if len(diffs) > 0 {
			mismatched++
		}
	}
	if mismatched > 0 {
		os.Exit(1)
	}
}
