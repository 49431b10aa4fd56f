package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"ecufiler/internal/config"
	"ecufiler/internal/filename"
	"ecufiler/internal/history"
	"ecufiler/internal/identification"
	"ecufiler/internal/logging"
	"ecufiler/internal/metadata"
	"ecufiler/internal/notifications"
	"ecufiler/internal/organizer"
	"ecufiler/internal/services"
)

// Outcome is the result of handling one dump.
type Outcome struct {
	Identification identification.Identification
	Record         metadata.Record
	Filing         *organizer.Result
	Status         history.Status
	Err            error
}

// Pipeline identifies, files, and records dumps.
type Pipeline struct {
	identifier *identification.Identifier
	organizer  *organizer.Organizer
	history    *history.Store
	notifier   notifications.Service
	autoFile   bool
	sessionID  string
	logger     *slog.Logger
}

// NewPipeline builds a pipeline from configuration. store may be nil, in
// which case nothing is recorded.
func NewPipeline(cfg *config.Config, logger *slog.Logger, store *history.Store, sessionID string) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		identifier: identification.NewIdentifier(filename.NewParser(nil), logger),
		organizer:  organizer.NewOrganizer(cfg, logger),
		history:    store,
		notifier:   notifications.NewService(cfg),
		autoFile:   cfg.Watch.AutoFile,
		sessionID:  sessionID,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Identifier exposes the engine used by the pipeline.
func (p *Pipeline) Identifier() *identification.Identifier {
	return p.identifier
}

// Handle identifies the dump and, when auto filing is on and the record is
// complete enough, files it.
func (p *Pipeline) Handle(ctx context.Context, path string) Outcome {
	ctx = p.context(ctx, path)
	started := time.Now()
	id := p.identifier.IdentifyFile(ctx, path)
	observeIdentification(id, time.Since(started))

	if id.ReadErr != nil {
		err := services.Wrap(services.ErrTransient, "identifying", "read dump", "", id.ReadErr)
		return p.finish(ctx, Outcome{Identification: id, Record: id.Record, Status: history.StatusFailed, Err: err})
	}
	if !p.autoFile {
		return p.finish(ctx, Outcome{Identification: id, Record: id.Record, Status: history.StatusPending})
	}
	return p.file(ctx, id, id.Record)
}

// File files an already identified dump using rec, which may carry manual
// overrides on top of the identified record.
func (p *Pipeline) File(ctx context.Context, id identification.Identification, rec metadata.Record) Outcome {
	return p.file(p.context(ctx, id.Path), id, rec)
}

func (p *Pipeline) file(ctx context.Context, id identification.Identification, rec metadata.Record) Outcome {
	out := Outcome{Identification: id, Record: rec}
	if !organizer.Ready(rec) {
		out.Status = history.StatusPending
		out.Err = services.Wrap(services.ErrValidation, "organizing", "validate record",
			"make or model unknown; file it manually", nil)
		return p.finish(ctx, out)
	}

	res, err := p.organizer.File(ctx, organizer.Request{SourcePath: id.Path, Record: rec, SessionID: p.sessionID})
	if err != nil {
		out.Status = services.FailureStatus(err)
		out.Err = err
		return p.finish(ctx, out)
	}
	out.Filing = res
	out.Status = history.StatusFiled
	return p.finish(ctx, out)
}

func (p *Pipeline) finish(ctx context.Context, out Outcome) Outcome {
	observeOutcome(out.Status)
	logger := logging.WithContext(ctx, p.logger)

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dump_"+string(out.Status)),
		logging.String("make", out.Record.Make),
		logging.String("model", out.Record.Model),
		logging.String("ecu", out.Record.ECU),
	}
	switch out.Status {
	case history.StatusFiled:
		logger.Info("dump handled", logging.Args(append(attrs, logging.String("destination", out.Filing.DestPath))...)...)
	case history.StatusPending:
		if out.Err != nil {
			attrs = append(attrs, logging.Error(out.Err))
		}
		logger.Info("dump left for manual filing", logging.Args(attrs...)...)
	default:
		logging.ErrorWithContext(logger, "dump handling failed", "dump_failed",
			append(attrs,
				logging.Error(out.Err),
				logging.Bool("retryable", services.IsRetryable(out.Err)),
				logging.String(logging.FieldErrorHint, "check destination_dir and file permissions"),
			)...)
	}

	p.notify(ctx, logger, out)

	if p.history == nil {
		return out
	}
	entry := &history.Entry{
		SourcePath: out.Identification.Path,
		Record:     out.Record,
		Status:     out.Status,
		SessionID:  p.sessionID,
	}
	if out.Filing != nil {
		entry.DestPath = out.Filing.DestPath
		entry.FolderName = out.Filing.FolderName
	}
	if out.Err != nil {
		entry.Error = out.Err.Error()
	}
	if err := p.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("history not recorded", logging.Error(err))
	}
	return out
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, out Outcome) {
	payload := notifications.Payload{
		"dump":    filepath.Base(out.Identification.Path),
		"vehicle": strings.TrimSpace(out.Record.Make + " " + out.Record.Model),
	}
	event := notifications.EventFailed
	switch out.Status {
	case history.StatusFiled:
		event = notifications.EventFiled
		payload["folder"] = out.Filing.FolderName
	case history.StatusPending:
		event = notifications.EventPending
		if out.Err != nil {
			payload["reason"] = out.Err.Error()
		} else {
			payload["reason"] = "auto filing disabled"
		}
	default:
		payload["error"] = out.Err
	}
	if err := p.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logging.WarnWithContext(logger, "notification not delivered", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "operator not alerted"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func (p *Pipeline) context(ctx context.Context, path string) context.Context {
	ctx = services.WithFile(ctx, path)
	if p.sessionID != "" {
		ctx = services.WithSessionID(ctx, p.sessionID)
	}
	return ctx
}
