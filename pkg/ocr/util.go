package ocr

import "strings"

// Snippet returns a shortened version of s (ASCII only) for logging.
func Snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// NormalizeLine collapses runs of whitespace so two transcripts of the same
// line compare equal regardless of spacing.
func NormalizeLine(t string) string {
	t = strings.ReplaceAll(t, "\t", " ")
	return strings.Join(strings.Fields(t), " ")
}

// SplitLines splits a transcript into its row lines without the final empty
// element produced by the trailing newline.
func SplitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
