package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"ecufiler/internal/config"
	"ecufiler/internal/fileutil"
	"ecufiler/internal/logging"
	"ecufiler/internal/metadata"
	"ecufiler/internal/services"
)

const stageName = "organizing"

// Request describes one dump to file.
type Request struct {
	SourcePath string
	Record     metadata.Record
	SessionID  string
}

// Result reports where a dump ended up.
type Result struct {
	SourcePath string
	DestDir    string
	DestPath   string
	FolderName string
	Reused     bool
	Size       int64
	LogPath    string
}

// Organizer moves identified dumps into the destination tree.
type Organizer struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewOrganizer constructs an organizer using the wall clock.
func NewOrganizer(cfg *config.Config, logger *slog.Logger) *Organizer {
	return NewOrganizerWithClock(cfg, logger, time.Now)
}

// NewOrganizerWithClock allows injecting the clock used for session
// timestamps and collision suffixes (used in tests).
func NewOrganizerWithClock(cfg *config.Config, logger *slog.Logger, now func() time.Time) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Organizer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "organizer"),
		now:    now,
	}
}

// Ready reports whether the record carries the fields filing needs.
func Ready(rec metadata.Record) bool {
	return strings.TrimSpace(rec.Make) != "" && strings.TrimSpace(rec.Model) != ""
}

// Destination resolves the folder a record would be filed into without
// touching the filesystem beyond the registration lookup.
func (o *Organizer) Destination(rec metadata.Record) (dir, folder string, reused bool, err error) {
	if !Ready(rec) {
		return "", "", false, services.Wrap(
			services.ErrValidation,
			stageName,
			"validate record",
			"make and model are required to file a dump",
			nil,
		)
	}
	if o.cfg.Organizer.ReuseRegistrationFolder {
		if reg := registrationSegment(rec.Registration); reg != "" {
			existing, findErr := o.FindByRegistration(rec.Registration)
			if findErr != nil {
				return "", "", false, findErr
			}
			if len(existing) > 0 {
				return existing[0].Path, existing[0].Name, true, nil
			}
		}
	}
	folder = FolderName(rec)
	dir = filepath.Join(o.cfg.Paths.DestinationDir, makeSegment(rec.Make), folder)
	return dir, folder, false, nil
}

// File moves the dump into its destination folder and appends a session
// block to the folder log.
func (o *Organizer) File(ctx context.Context, req Request) (*Result, error) {
	ctx = services.WithStage(services.WithFile(ctx, req.SourcePath), stageName)
	if req.SessionID != "" {
		ctx = services.WithSessionID(ctx, req.SessionID)
	}
	logger := logging.WithContext(ctx, o.logger)

	info, err := os.Stat(req.SourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, stageName, "stat source", "dump disappeared before filing", err)
		}
		return nil, services.Wrap(services.ErrTransient, stageName, "stat source", "cannot read dump", err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, stageName, "stat source", "source is a directory", nil)
	}

	dir, folder, reused, err := o.Destination(req.Record)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, o.destinationError("create folder", err)
	}

	destPath, err := o.freeName(dir, filepath.Base(req.SourcePath))
	if err != nil {
		return nil, o.destinationError("resolve file name", err)
	}
	if err := fileutil.MoveFile(req.SourcePath, destPath); err != nil {
		return nil, o.destinationError("move dump", err)
	}

	result := &Result{
		SourcePath: req.SourcePath,
		DestDir:    dir,
		DestPath:   destPath,
		FolderName: folder,
		Reused:     reused,
		Size:       info.Size(),
	}

	logPath, err := o.appendSessionLog(result, req)
	if err != nil {
		logging.WarnWithContext(logger, "folder log not updated", "folder_log_failed",
			logging.String("folder", dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "dump was filed but its session is missing from the folder log"),
		)
	} else {
		result.LogPath = logPath
	}

	logger.Info("dump filed",
		logging.String(logging.FieldEventType, "dump_filed"),
		logging.String("destination", destPath),
		logging.String("folder", folder),
		logging.Bool("reused_folder", reused),
		logging.Int64("size_bytes", result.Size),
	)
	return result, nil
}

// freeName returns dir/name, or dir/name_HHMMSS.ext when name is taken.
// A numeric counter follows the stamp if that is taken too.
func (o *Organizer) freeName(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	taken, err := exists(candidate)
	if err != nil || !taken {
		return candidate, err
	}
	stamp := o.now().Format("150405")
	candidate = filepath.Join(dir, withTimeSuffix(name, stamp))
	for n := 2; ; n++ {
		taken, err = exists(candidate)
		if err != nil || !taken {
			return candidate, err
		}
		candidate = filepath.Join(dir, withTimeSuffix(name, stamp+"_"+strconv.Itoa(n)))
	}
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// destinationUnavailableErrors lists syscall errors that indicate the
// destination filesystem is offline rather than misconfigured.
var destinationUnavailableErrors = []error{
	syscall.ENODEV,
	syscall.ENOTCONN,
	syscall.EHOSTDOWN,
	syscall.EHOSTUNREACH,
	syscall.ETIMEDOUT,
	syscall.EIO,
	syscall.ESTALE,
}

func isDestinationUnavailable(err error) bool {
	for _, target := range destinationUnavailableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (o *Organizer) destinationError(operation string, err error) error {
	if isDestinationUnavailable(err) {
		return services.Wrap(services.ErrTransient, stageName, operation,
			fmt.Sprintf("destination %s is unavailable", o.cfg.Paths.DestinationDir), err)
	}
	if errors.Is(err, os.ErrPermission) {
		return services.Wrap(services.ErrConfiguration, stageName, operation,
			"destination is not writable; check destination_dir permissions", err)
	}
	return services.Wrap(services.ErrTransient, stageName, operation, "filing failed", err)
}
