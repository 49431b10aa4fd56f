package identification

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ecufiler/internal/binscan"
	"ecufiler/internal/filename"
	"ecufiler/internal/logging"
	"ecufiler/internal/metadata"
	"ecufiler/internal/services"
)

// Identification is the engine result for one dump.
type Identification struct {
	Path       string
	Size       int64
	Dialect    filename.Dialect
	Record     metadata.Record
	Provenance map[metadata.Field]string
	// ReadErr is set when the file could not be read; Record then carries
	// filename fields only.
	ReadErr error
}

// Identifier runs the filename parser and binary scanner.
type Identifier struct {
	parser *filename.Parser
	logger *slog.Logger
}

// NewIdentifier creates an identifier. A nil parser uses the wall clock for
// default dates; a nil logger discards output.
func NewIdentifier(parser *filename.Parser, logger *slog.Logger) *Identifier {
	if parser == nil {
		parser = filename.NewParser(nil)
	}
	return &Identifier{
		parser: parser,
		logger: logging.NewComponentLogger(logger, "identifier"),
	}
}

// Identify runs the engine over already-loaded bytes.
func (i *Identifier) Identify(path string, data []byte) Identification {
	parsed := i.parser.Parse(path)
	scanned := binscan.Scan(data)
	return Identification{
		Path:       path,
		Size:       int64(len(data)),
		Dialect:    parsed.Dialect,
		Record:     metadata.Merge(parsed.Record, scanned.Record),
		Provenance: scanned.Provenance,
	}
}

// IdentifyFile reads the whole file and identifies it.
func (i *Identifier) IdentifyFile(ctx context.Context, path string) Identification {
	logger := logging.WithContext(services.WithFile(ctx, path), i.logger)
	data, err := os.ReadFile(path)
	if err != nil {
		logging.WarnWithContext(logger, "dump unreadable; identifying from filename only", "dump_unreadable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "binary fields left empty"),
			logging.String(logging.FieldErrorHint, "check file permissions"),
		)
		id := i.Identify(path, nil)
		id.ReadErr = fmt.Errorf("read dump: %w", err)
		return id
	}
	id := i.Identify(path, data)
	logger.Debug("dump identified",
		logging.String("dialect", id.Dialect.String()),
		logging.Int64("size", id.Size),
		logging.String("ecu", id.Record.ECU),
		logging.Int("fields_from_binary", len(id.Provenance)),
	)
	return id
}

// IdentifyAll identifies files concurrently, at most workers at a time (0
// means one per CPU). Results keep the order of paths. It stops early only
// when ctx is cancelled.
func (i *Identifier) IdentifyAll(ctx context.Context, paths []string, workers int) ([]Identification, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Identification, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[idx] = i.IdentifyFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
