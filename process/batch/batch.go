// Package batch transcribes every new screenshot in an assets directory into
// one text file per image.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"screentext/models"
	"screentext/pkg/cache"
	"screentext/pkg/ocr"
	"screentext/pkg/store"
)

// Runner owns one batch configuration. Zero-valued optional fields (Cache,
// ArchiveDir) disable the feature.
type Runner struct {
	Recognizer *ocr.Recognizer
	Ledger     store.Ledger
	Cache      cache.Cache
	AssetsDir  string
	OutputDir  string
	// ArchiveDir, when set, receives each screenshot after its transcript is
	// written.
	ArchiveDir string
	Workers    int
	Log        *slog.Logger
	// Force transcribes files even when the ledger already has them done.
	Force bool

	once        sync.Once
	inflight    sync.Map
	runID       string
	fingerprint string
	cacheScope  string
	found       atomic.Int64
	processed   atomic.Int64
	skipped     atomic.Int64
	failed      atomic.Int64
	cached      atomic.Int64
	unknowns    atomic.Int64
}

// Summary reports one run.
type Summary struct {
	RunID     string
	Found     int
	Processed int
	Skipped   int
	Failed    int
	Cached    int
	Unknowns  int
	Duration  time.Duration
}

// Outcome of one file.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeProcessed
	OutcomeCached
	OutcomeFailed
)

func (r *Runner) init() {
	r.once.Do(func() {
		if r.Log == nil {
			r.Log = slog.Default()
		}
		if r.Workers <= 0 {
			r.Workers = 1
		}
		if r.Ledger == nil {
			r.Ledger = store.FileLedger{Dir: r.OutputDir}
		}
		r.runID = uuid.NewString()
		r.fingerprint = r.Recognizer.Table.Fingerprint()
		r.cacheScope = r.Recognizer.Fingerprint()
	})
}

// RunID identifies this runner's run in logs and the ledger.
func (r *Runner) RunID() string {
	r.init()
	return r.runID
}

// Run transcribes every screenshot in AssetsDir not yet recorded as done.
// Per-image failures are logged and recorded; only an allocation failure
// stops the run and is returned.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	files, err := ListImages(r.AssetsDir)
	if err != nil {
		return Summary{}, err
	}
	return r.RunFiles(ctx, files)
}

// RunFiles is Run over an explicit list of file names in AssetsDir.
func (r *Runner) RunFiles(ctx context.Context, files []string) (Summary, error) {
	r.init()
	start := time.Now()
	r.found.Add(int64(len(files)))
	if len(files) == 0 {
		r.Log.Info("no new PNG files found for processing", "dir", r.AssetsDir)
	} else {
		r.Log.Info("scanning", "files", len(files), "workers", r.Workers, "run", r.runID)
	}
	r.saveRun(ctx, start, nil)
	err := r.pool(ctx, files, nil)
	s := r.summary(time.Since(start))
	end := time.Now()
	r.saveRun(ctx, start, &end)
	r.Log.Info("run finished", "run", s.RunID, "found", s.Found, "processed", s.Processed,
		"skipped", s.Skipped, "failed", s.Failed, "cached", s.Cached, "unknowns", s.Unknowns,
		"took", s.Duration.Round(time.Millisecond))
	return s, err
}

func (r *Runner) summary(d time.Duration) Summary {
	return Summary{
		RunID:     r.runID,
		Found:     int(r.found.Load()),
		Processed: int(r.processed.Load()),
		Skipped:   int(r.skipped.Load()),
		Failed:    int(r.failed.Load()),
		Cached:    int(r.cached.Load()),
		Unknowns:  int(r.unknowns.Load()),
		Duration:  d,
	}
}

func (r *Runner) saveRun(ctx context.Context, start time.Time, end *time.Time) {
	rec, ok := r.Ledger.(store.RunRecorder)
	if !ok {
		return
	}
	s := r.summary(0)
	run := &models.Run{
		ID: r.runID, StartedAt: start, FinishedAt: end,
		Processed: s.Processed, Skipped: s.Skipped, Failed: s.Failed,
		Cached: s.Cached, Unknowns: s.Unknowns,
	}
	if err := rec.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		r.Log.Warn("save run summary", "run", r.runID, "err", err)
	}
}

// pool feeds initial and then everything arriving on extra to Workers
// goroutines. It returns once the input is exhausted (extra closed or nil),
// the context is done or a fatal error occurred.
func (r *Runner) pool(ctx context.Context, initial []string, extra <-chan string) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	fileCh := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < r.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				if _, err := r.ProcessFile(ctx, name); err != nil {
					cancel(err)
				}
			}
		}()
	}

	feed := func(name string) bool {
		select {
		case fileCh <- name:
			return true
		case <-ctx.Done():
			return false
		}
	}
	func() {
		defer close(fileCh)
		for _, f := range initial {
			if !feed(f) {
				return
			}
		}
		if extra == nil {
			return
		}
		for {
			select {
			case name, ok := <-extra:
				if !ok || !feed(name) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ProcessFile transcribes one screenshot by name. The returned error is
// non-nil only for fatal failures; everything else is logged, recorded and
// counted.
func (r *Runner) ProcessFile(ctx context.Context, name string) (Outcome, error) {
	r.init()
	log := r.Log.With("file", name)
	if _, busy := r.inflight.LoadOrStore(name, struct{}{}); busy {
		log.Debug("SKIP already in progress")
		return OutcomeSkipped, nil
	}
	defer r.inflight.Delete(name)
	done, err := r.Ledger.Done(ctx, name)
	if err != nil {
		log.Warn("ledger lookup failed", "err", err)
	}
	if done && !r.Force {
		log.Debug("SKIP already transcribed")
		r.skipped.Add(1)
		return OutcomeSkipped, nil
	}

	path := filepath.Join(r.AssetsDir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return r.fail(ctx, log, name, "", &ocr.Error{Kind: ocr.KindDecode, Op: "read", Path: path, Err: err})
	}
	digest := store.DigestBytes(raw)

	var key string
	if r.Cache != nil {
		key = cache.Key(digest, r.cacheScope)
		e, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache lookup failed", "err", err)
		}
		if hit {
			if err := r.finish(ctx, log, name, digest, ocr.Result{Text: e.Text, Unknowns: e.Unknowns, Lines: ocr.SplitLines(e.Text)}); err != nil {
				return r.fail(ctx, log, name, digest, err)
			}
			r.cached.Add(1)
			r.unknowns.Add(int64(e.Unknowns))
			log.Debug("CACHED transcript", "digest", digest)
			return OutcomeCached, nil
		}
	}

	res, err := r.Recognizer.TranscribeReader(path, bytes.NewReader(raw))
	if err != nil {
		return r.fail(ctx, log, name, digest, err)
	}
	if err := r.finish(ctx, log, name, digest, res); err != nil {
		return r.fail(ctx, log, name, digest, err)
	}
	if r.Cache != nil {
		if err := r.Cache.Set(ctx, key, cache.Entry{Text: res.Text, Unknowns: res.Unknowns}); err != nil {
			log.Warn("cache store failed", "err", err)
		}
	}
	r.processed.Add(1)
	r.unknowns.Add(int64(res.Unknowns))
	log.Info("NEW transcript", "lines", len(res.Lines), "unknowns", res.Unknowns, "text", ocr.Snippet(strings.ReplaceAll(res.Text, "\n", "|"), 60))
	return OutcomeProcessed, nil
}

// finish writes the transcript, records it and archives the screenshot.
func (r *Runner) finish(ctx context.Context, log *slog.Logger, name, digest string, res ocr.Result) error {
	out, err := store.WriteTranscript(r.OutputDir, name, res.Text)
	if err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	t := &models.Transcript{
		FileName:    name,
		Digest:      digest,
		Fingerprint: r.fingerprint,
		Status:      models.StatusDone,
		Text:        res.Text,
		Lines:       len(res.Lines),
		Unknowns:    res.Unknowns,
		OutputPath:  out,
		RunID:       r.runID,
	}
	if err := r.Ledger.Record(ctx, t); err != nil {
		log.Warn("ledger record failed", "err", err)
	}
	if r.ArchiveDir != "" {
		if err := moveToArchive(filepath.Join(r.AssetsDir, name), r.ArchiveDir, name); err != nil {
			log.Warn("failed to archive screenshot", "err", err)
		} else {
			log.Debug("archived", "dir", r.ArchiveDir)
		}
	}
	return nil
}

func (r *Runner) fail(ctx context.Context, log *slog.Logger, name, digest string, err error) (Outcome, error) {
	if ocr.IsFatal(err) {
		log.Error("fatal error, stopping run", "err", err)
		return OutcomeFailed, err
	}
	r.failed.Add(1)
	kind := ocr.KindOf(err)
	log.Warn("transcription failed", "kind", kind, "err", err)
	t := &models.Transcript{
		FileName:     name,
		Digest:       digest,
		Fingerprint:  r.fingerprint,
		Status:       models.StatusFailed,
		ErrorKind:    kind.String(),
		FailedReason: err.Error(),
		RunID:        r.runID,
	}
	if err := r.Ledger.Record(ctx, t); err != nil {
		log.Warn("ledger record failed", "err", err)
	}
	return OutcomeFailed, nil
}

// ListImages returns the PNG file names in dir, sorted.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func isSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".png")
}

// moveToArchive moves src into dir/name, falling back to copy+remove across
// filesystems.
func moveToArchive(src, dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, name)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
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
