package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"screentext/models"
)

// OutputPath maps an image name to its transcript file under dir:
// assets/shot.png -> dir/shot.txt.
func OutputPath(dir, image string) string {
	base := filepath.Base(image)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".txt")
}

// WriteTranscript writes text to OutputPath(dir, image) through a temporary
// file and a rename, so a crash never leaves a partial transcript behind.
func WriteTranscript(dir, image, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := OutputPath(dir, image)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	if _, err := io.WriteString(tmp, text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		if err := copyRemove(tmpName, dst); err != nil {
			_ = os.Remove(tmpName)
			return "", fmt.Errorf("move %s: %w", dst, err)
		}
	}
	return dst, nil
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// FileLedger treats an existing transcript file as the record of success.
// Failures leave no file and are therefore retried.
type FileLedger struct {
	Dir string
}

func (l FileLedger) Done(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(OutputPath(l.Dir, name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Record is a no-op: the transcript file written by WriteTranscript is the
// record.
func (l FileLedger) Record(context.Context, *models.Transcript) error { return nil }
