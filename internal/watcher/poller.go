package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ecufiler/internal/config"
	"ecufiler/internal/logging"
)

// Event describes a dump that finished arriving.
type Event struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Handler receives arrived dumps. It runs on the poller goroutine.
type Handler func(ctx context.Context, ev Event)

// Poller scans one directory on a timer.
type Poller struct {
	dir      string
	interval time.Duration
	stable   time.Duration
	accept   func(ext string) bool
	logger   *slog.Logger

	mu        sync.Mutex
	processed map[string]struct{}
}

// NewPoller builds a poller for the configured monitor directory.
func NewPoller(cfg *config.Config, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := cfg.PollInterval()
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		dir:       cfg.Paths.MonitorDir,
		interval:  interval,
		stable:    cfg.StableInterval(),
		accept:    cfg.WatchesExtension,
		logger:    logging.NewComponentLogger(logger, "watcher"),
		processed: make(map[string]struct{}),
	}
}

// Dir returns the watched directory.
func (p *Poller) Dir() string {
	return p.dir
}

// Forget drops a path from the processed set so the next scan reports it
// again if it is still present.
func (p *Poller) Forget(path string) {
	p.mu.Lock()
	delete(p.processed, path)
	p.mu.Unlock()
}

// Run scans immediately and then every poll interval until ctx is done.
func (p *Poller) Run(ctx context.Context, handle Handler) error {
	if handle == nil {
		return errors.New("watcher: handler is required")
	}

	wake := make(chan struct{}, 1)
	if stop := p.watchNotify(wake); stop != nil {
		defer stop()
	}

	p.logger.Info("watching folder",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String("dir", p.dir),
		logging.Duration("interval", p.interval),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		events, err := p.Scan(ctx)
		if err != nil && ctx.Err() == nil {
			p.logger.Warn("folder scan failed", logging.String("dir", p.dir), logging.Error(err))
		}
		for _, ev := range events {
			if ctx.Err() != nil {
				break
			}
			handle(ctx, ev)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-wake:
		}
	}
}

// Scan performs one pass: it lists candidate files, waits the stable
// interval, and returns the files whose size did not change. A missing
// directory yields no events.
func (p *Poller) Scan(ctx context.Context) ([]Event, error) {
	first, err := p.sample()
	if err != nil || len(first) == 0 {
		return nil, err
	}

	if p.stable > 0 {
		timer := time.NewTimer(p.stable)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var events []Event
	for path, size := range first {
		info, err := os.Stat(path)
		if err != nil || info.Size() != size {
			continue
		}
		events = append(events, Event{Path: path, Size: size, ModTime: info.ModTime()})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	p.mu.Lock()
	for _, ev := range events {
		p.processed[ev.Path] = struct{}{}
	}
	p.mu.Unlock()
	return events, nil
}

// sample returns the current size of every unprocessed candidate and prunes
// processed entries that have left the directory.
func (p *Poller) sample() (map[string]int64, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	present := make(map[string]struct{}, len(entries))
	sizes := make(map[string]int64)

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !p.accept(filepath.Ext(name)) {
			continue
		}
		path := filepath.Join(p.dir, name)
		present[path] = struct{}{}
		if _, done := p.processed[path]; done {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sizes[path] = info.Size()
	}
	for path := range p.processed {
		if _, ok := present[path]; !ok {
			delete(p.processed, path)
		}
	}
	return sizes, nil
}

// watchNotify wakes the loop on create and write events. It returns nil
// when fsnotify is unavailable, leaving the poller timer-driven.
func (p *Poller) watchNotify(wake chan<- struct{}) func() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Debug("fsnotify unavailable; using timed scans only", logging.Error(err))
		return nil
	}
	if err := w.Add(p.dir); err != nil {
		p.logger.Debug("fsnotify watch failed; using timed scans only", logging.String("dir", p.dir), logging.Error(err))
		_ = w.Close()
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) {
					select {
					case wake <- struct{}{}:
					default:
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				p.logger.Debug("fsnotify error", logging.Error(err))
			}
		}
	}()
	return func() {
		_ = w.Close()
		<-done
	}
}
