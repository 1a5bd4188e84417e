package ocr

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
)

// Cell is one position of a glyph template. Unset cells were never written
// by the definition file and match anything.
type Cell uint8

const (
	CellUnset Cell = iota
	CellOff
	CellOn
)

// Template is the reference bitmap of one character code.
type Template struct {
	Code  byte
	Width int // columns compared, at most TemplateCols
	Rows  int // rows read from the definition
	Cells [TemplateRows][TemplateCols]Cell
}

// TemplateTable holds one template slot per code 0..TableSize-1. Slots with
// Width 0 are empty. A table is read-only once loaded and may be shared.
type TemplateTable struct {
	slots [TableSize]Template
}

// NewTemplateTable returns an empty table.
func NewTemplateTable() *TemplateTable {
	t := &TemplateTable{}
	for i := range t.slots {
		t.slots[i].Code = byte(i)
	}
	return t
}

// Put stores tpl in its slot, replacing what was there.
func (t *TemplateTable) Put(tpl Template) error {
	if int(tpl.Code) >= TableSize {
		return newError(KindTemplate, "put template", fmt.Errorf("%w: code %d out of range", ErrTemplateFormat, tpl.Code))
	}
	if tpl.Width < 0 || tpl.Width > TemplateCols || tpl.Rows < 0 || tpl.Rows > TemplateRows {
		return newError(KindTemplate, "put template", fmt.Errorf("%w: code %d has size %dx%d", ErrTemplateFormat, tpl.Code, tpl.Width, tpl.Rows))
	}
	t.slots[tpl.Code] = tpl
	return nil
}

// Get returns the template for code, if populated.
func (t *TemplateTable) Get(code byte) (Template, bool) {
	if int(code) >= TableSize || t.slots[code].Width == 0 {
		return Template{}, false
	}
	return t.slots[code], true
}

// Codes lists the populated codes in ascending order.
func (t *TemplateTable) Codes() []byte {
	var out []byte
	for i := range t.slots {
		if t.slots[i].Width > 0 {
			out = append(out, byte(i))
		}
	}
	return out
}

// Len is the number of populated templates.
func (t *TemplateTable) Len() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].Width > 0 {
			n++
		}
	}
	return n
}

// Fingerprint is a stable BLAKE2b-256 digest of the populated templates.
// Transcripts cached under one fingerprint are invalid for any other.
func (t *TemplateTable) Fingerprint() string {
	h, _ := blake2b.New256(nil)
	for i := range t.slots {
		tpl := &t.slots[i]
		if tpl.Width == 0 {
			continue
		}
		h.Write([]byte{tpl.Code, byte(tpl.Width), byte(tpl.Rows)})
		for r := 0; r < TemplateRows; r++ {
			for c := 0; c < TemplateCols; c++ {
				h.Write([]byte{byte(tpl.Cells[r][c])})
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// LoadTemplateFile opens path and parses it with LoadTemplates.
func LoadTemplateFile(path string, logger *slog.Logger) (*TemplateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindTemplate, "open templates", err)
	}
	defer f.Close()
	t, err := LoadTemplates(f, logger)
	if err != nil {
		return nil, withPath(err, path)
	}
	return t, nil
}

// LoadTemplates parses template definitions:
//
//	ASCII 65:
//	000110000000
//	001001000000
//	...
//
// A header opens a code and resets its row counter. Following lines that
// start with a digit are rows; '1' is on, '0' is off and any other character
// leaves the cell unset. Only the first TemplateCols characters and the first
// TemplateRows rows are kept. The declared width is the longest row line and
// is clamped to TemplateCols. Other lines are ignored.
func LoadTemplates(r io.Reader, logger *slog.Logger) (*TemplateTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := NewTemplateTable()
	declared := make(map[byte]int)
	code := -1
	row := 0
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.HasPrefix(line, "ASCII") {
			c, err := parseHeader(line)
			if err != nil {
				return nil, newError(KindTemplate, "load templates", fmt.Errorf("%w: line %d: %v", ErrTemplateFormat, lineNo, err))
			}
			code, row = c, 0
			continue
		}
		if code < 0 || line == "" || !unicode.IsDigit(rune(line[0])) {
			continue
		}
		if row >= TemplateRows {
			continue
		}
		tpl := &t.slots[code]
		tpl.Cells[row] = [TemplateCols]Cell{}
		for i := 0; i < len(line) && i < TemplateCols; i++ {
			switch line[i] {
			case '1':
				tpl.Cells[row][i] = CellOn
			case '0':
				tpl.Cells[row][i] = CellOff
			default:
				tpl.Cells[row][i] = CellUnset
			}
		}
		if len(line) > declared[byte(code)] {
			declared[byte(code)] = len(line)
		}
		row++
		if row > tpl.Rows {
			tpl.Rows = row
		}
	}
	if err := sc.Err(); err != nil {
		return nil, newError(KindTemplate, "load templates", err)
	}
	for c, w := range declared {
		if w > TemplateCols {
			logger.Warn("template wider than storage, clamping", "code", c, "width", w, "max", TemplateCols)
			w = TemplateCols
		}
		t.slots[c].Width = w
	}
	logger.Debug("templates loaded", "count", t.Len())
	return t, nil
}

func parseHeader(line string) (int, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "ASCII"))
	rest = strings.TrimSuffix(rest, ":")
	c, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, fmt.Errorf("bad header %q", line)
	}
	if c < 0 || c >= TableSize {
		return 0, fmt.Errorf("code %d outside 0..%d", c, TableSize-1)
	}
	return c, nil
}
