package speech

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/time/rate"
)

// DefaultWatchInterval is the minimum gap between two VoicesChanged
// notifications produced by a Watcher.
const DefaultWatchInterval = 500 * time.Millisecond

// Watcher turns filesystem changes in voice directories into VoicesChanged
// notifications. Bursts of changes (an installer unpacking a model and its
// config, say) are coalesced into one notification per interval.
type Watcher struct {
	fs      *fsnotify.Watcher
	limiter *rate.Limiter
	notify  func(context.Context)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Watch starts watching the existing directories among dirs. It returns a
// nil Watcher, which is safe to Close, when none of them exist. The context
// passed to notify is cancelled by Close; notify must return once it is.
func Watch(dirs []string, interval time.Duration, notify func(context.Context)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	added := 0
	for _, dir := range dirs {
		dir, err := homedir.Expand(dir)
		if err != nil {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			log.Warn("Could not watch voice directory", "dir", dir, "err", err)
			continue
		}
		log.Debug("watching voice directory", "dir", dir)
		added++
	}
	if added == 0 {
		_ = fsw.Close()
		return nil, nil
	}

	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	// Spend the initial token so the first change also waits for its burst
	// to settle.
	limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fs:      fsw,
		limiter: limiter,
		notify:  notify,
		cancel:  cancel,
	}
	w.wg.Add(1)
	go w.loop(ctx)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Write) {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			if !w.drain() || ctx.Err() != nil {
				return
			}
			log.Debug("voice directory changed", "path", ev.Name)
			w.notify(ctx)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Warn("Voice directory watcher error", "err", err)
		}
	}
}

// drain discards events that queued up while waiting on the limiter. It
// reports false once the event channel is closed.
func (w *Watcher) drain() bool {
	for {
		select {
		case _, ok := <-w.fs.Events:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.cancel()
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
