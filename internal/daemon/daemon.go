package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ecufiler/internal/config"
	"ecufiler/internal/history"
	"ecufiler/internal/logging"
	"ecufiler/internal/services"
	"ecufiler/internal/watcher"
)

// maxAttempts bounds how often a dump that failed with a retryable error is
// picked up again during one daemon run.
const maxAttempts = 3

// Daemon coordinates the poller and pipeline and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	pipeline *Pipeline
	poller   *watcher.Poller
	server   *statusServer

	sessionID string
	lockPath  string
	lock      *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	attempts map[string]int
	last     *Outcome

	seen    atomic.Int64
	filed   atomic.Int64
	pending atomic.Int64
	failed  atomic.Int64
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool   `json:"running"`
	SessionID      string `json:"session_id"`
	MonitorDir     string `json:"monitor_dir"`
	DestinationDir string `json:"destination_dir"`
	AutoFile       bool   `json:"auto_file"`
	LockFilePath   string `json:"lock_file"`
	HistoryPath    string `json:"history_db,omitempty"`
	Seen           int64  `json:"seen"`
	Filed          int64  `json:"filed"`
	Pending        int64  `json:"pending"`
	Failed         int64  `json:"failed"`
	LastFile       string `json:"last_file,omitempty"`
	LastStatus     string `json:"last_status,omitempty"`
}

// New constructs a daemon. store may be nil when history is disabled.
func New(cfg *config.Config, logger *slog.Logger, store *history.Store) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	sessionID := uuid.NewString()
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		pipeline:  NewPipeline(cfg, logger, store, sessionID),
		poller:    watcher.NewPoller(cfg, logger),
		sessionID: sessionID,
		lockPath:  cfg.LockPath(),
		lock:      flock.New(cfg.LockPath()),
		attempts:  make(map[string]int),
	}
	d.server = newStatusServer(cfg, d, logger)
	return d, nil
}

// SessionID identifies this daemon run in logs, folder logs, and history.
func (d *Daemon) SessionID() string {
	return d.sessionID
}

// Start acquires the daemon lock and launches the poller.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "daemon", "ensure directories", "", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another ecufiler watcher is already running for this state directory")
	}

	runCtx, cancel := context.WithCancel(services.WithSessionID(ctx, d.sessionID))
	if err := d.server.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)
	go func() {
		defer close(d.done)
		if err := d.poller.Run(runCtx, d.handle); err != nil {
			d.logger.Error("poller stopped", logging.Error(err))
		}
	}()

	d.logger.Info("ecufiler daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String(logging.FieldSessionID, d.sessionID),
		logging.String("lock", d.lockPath),
		logging.String("monitor_dir", d.cfg.Paths.MonitorDir),
		logging.String("destination_dir", d.cfg.Paths.DestinationDir),
		logging.Bool("auto_file", d.cfg.Watch.AutoFile),
	)
	return nil
}

// Stop stops the poller and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("ecufiler daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stopped"),
		logging.Int64("filed", d.filed.Load()),
		logging.Int64("pending", d.pending.Load()),
		logging.Int64("failed", d.failed.Load()),
	)
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	st := Status{
		Running:        d.running.Load(),
		SessionID:      d.sessionID,
		MonitorDir:     d.cfg.Paths.MonitorDir,
		DestinationDir: d.cfg.Paths.DestinationDir,
		AutoFile:       d.cfg.Watch.AutoFile,
		LockFilePath:   d.lockPath,
		Seen:           d.seen.Load(),
		Filed:          d.filed.Load(),
		Pending:        d.pending.Load(),
		Failed:         d.failed.Load(),
	}
	if d.store != nil {
		st.HistoryPath = d.store.Path()
	}
	d.mu.Lock()
	if d.last != nil {
		st.LastFile = d.last.Identification.Path
		st.LastStatus = string(d.last.Status)
	}
	d.mu.Unlock()
	return st
}

func (d *Daemon) handle(ctx context.Context, ev watcher.Event) {
	d.seen.Add(1)
	out := d.pipeline.Handle(ctx, ev.Path)

	switch out.Status {
	case history.StatusFiled:
		d.filed.Add(1)
	case history.StatusPending:
		d.pending.Add(1)
	default:
		d.failed.Add(1)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = &out
	if out.Status == history.StatusFailed && services.IsRetryable(out.Err) {
		d.attempts[ev.Path]++
		if d.attempts[ev.Path] < maxAttempts {
			d.poller.Forget(ev.Path)
		}
		return
	}
	delete(d.attempts, ev.Path)
}
