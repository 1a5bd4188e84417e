package ocr

import (
	"fmt"
	"strings"
	"testing"
)

// testInk describes the ink of each test glyph for rows 2..13; rows absent
// from the map repeat the nearest row above.
var testInk = map[byte]map[int]string{
	'H': {2: "101", 7: "111", 8: "101"},
	'I': {2: "1"},
	'L': {2: "100", 13: "111"},
	'O': {2: "111", 3: "101", 13: "111"},
	'T': {2: "111", 3: "010"},
}

// testFontDef builds a definition file: every glyph has a background border
// column on both sides, ink in rows 2..13 and a 10-column blank space glyph.
func testFontDef() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ASCII %d:\n", ' ')
	for y := 0; y < TemplateRows; y++ {
		b.WriteString("0000000000\n")
	}
	for _, code := range []byte("HILOT") {
		rows := testInk[code]
		fmt.Fprintf(&b, "ASCII %d:\n", code)
		cur := strings.Repeat("0", len(rows[2]))
		for y := 0; y < TemplateRows; y++ {
			ink := strings.Repeat("0", len(rows[2]))
			if y >= 2 && y <= 13 {
				if r, ok := rows[y]; ok {
					cur = r
				}
				ink = cur
			}
			b.WriteString("0" + ink + "0\n")
		}
	}
	return b.String()
}

func testTable(t *testing.T) *TemplateTable {
	t.Helper()
	tbl, err := LoadTemplates(strings.NewReader(testFontDef()), nil)
	if err != nil {
		t.Fatalf("load test font: %v", err)
	}
	return tbl
}

// binaryFromRows builds a BinaryImage from '1'/'0' strings.
func binaryFromRows(t *testing.T, rows ...string) *BinaryImage {
	t.Helper()
	img, err := NewBinaryImage(len(rows[0]), len(rows))
	if err != nil {
		t.Fatal(err)
	}
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			img.Set(x, y, r[x] == '1')
		}
	}
	return img
}
