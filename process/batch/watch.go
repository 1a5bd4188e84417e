package batch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	watchTick   = 250 * time.Millisecond
	watchStable = 300 * time.Millisecond
)

// Watch transcribes what is already in AssetsDir and then every screenshot
// created or rewritten there, until ctx is done. Files are picked up once no
// write event has been seen for them for a short settle period.
func (r *Runner) Watch(ctx context.Context) (Summary, error) {
	r.init()
	start := time.Now()
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Summary{}, err
	}
	defer w.Close()
	if err := w.Add(r.AssetsDir); err != nil {
		return Summary{}, err
	}
	files, err := ListImages(r.AssetsDir)
	if err != nil {
		return Summary{}, err
	}
	r.found.Add(int64(len(files)))
	r.Log.Info("watching", "dir", r.AssetsDir, "initial", len(files), "workers", r.Workers, "run", r.runID)
	r.saveRun(ctx, start, nil)

	// the pool may stop on a fatal error while ctx is still live
	wctx, stop := context.WithCancel(ctx)
	events := make(chan string)
	debounced := make(chan struct{})
	go func() {
		defer close(debounced)
		r.debounce(wctx, w, events)
	}()
	err = r.pool(wctx, files, events)
	stop()
	<-debounced

	s := r.summary(time.Since(start))
	end := time.Now()
	r.saveRun(ctx, start, &end)
	r.Log.Info("watch stopped", "run", s.RunID, "found", s.Found, "processed", s.Processed,
		"skipped", s.Skipped, "failed", s.Failed, "cached", s.Cached, "unknowns", s.Unknowns)
	return s, err
}

// debounce turns raw fsnotify events into settled file names on out. It
// closes out when ctx is done or the watcher shuts down.
func (r *Runner) debounce(ctx context.Context, w *fsnotify.Watcher, out chan<- string) {
	defer close(out)
	pending := map[string]time.Time{}
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isSupportedExt(name) {
				continue
			}
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) < watchStable {
					continue
				}
				delete(pending, name)
				r.found.Add(1)
				select {
				case out <- name:
				case <-ctx.Done():
					return
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			r.Log.Warn("watch error", "err", err)
		}
	}
}
