package sanitize

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirmed(t *testing.T) {
	cases := []struct {
		opts Options
		want bool
		msg  string
	}{
		{Options{DryRun: true, Yes: true}, false, "dry-run enabled"},
		{Options{DryRun: false}, false, "Pass -yes"},
		{Options{DryRun: false, Yes: true}, true, ""},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if got := confirmed(c.opts, &buf); got != c.want {
			t.Errorf("%+v: got %v", c.opts, got)
		}
		if !strings.Contains(buf.String(), c.msg) {
			t.Errorf("%+v: output %q", c.opts, buf.String())
		}
	}
}

func TestTableNames(t *testing.T) {
	for name, ok := range map[string]bool{"transcripts": true, "_runs2": true, "runs;drop": false, "1abc": false} {
		if nameRe.MatchString(name) != ok {
			t.Errorf("%q: want %v", name, ok)
		}
	}
}
