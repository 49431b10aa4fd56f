package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ecufiler/internal/config"
	"ecufiler/internal/metadata"
)

// Store manages filing history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// Fixed-width so filed_at sorts lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Open initializes or connects to the history database in the state directory.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("history: config is required")
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the history database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends an entry. ID and FiledAt are assigned when unset.
func (s *Store) Record(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("history: entry is nil")
	}
	if strings.TrimSpace(entry.SourcePath) == "" {
		return errors.New("history: source path is required")
	}
	if entry.Status == "" {
		entry.Status = StatusPending
	}
	if entry.FiledAt.IsZero() {
		entry.FiledAt = time.Now().UTC()
	}
	recordJSON, err := json.Marshal(entry.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO filings (
            source_path, dest_path, folder_name, make, model, ecu, registration,
            read_method, record_json, status, error_message, session_id, filed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SourcePath,
		nullableString(entry.DestPath),
		nullableString(entry.FolderName),
		nullableString(entry.Record.Make),
		nullableString(entry.Record.Model),
		nullableString(entry.Record.ECU),
		nullableString(entry.Record.Registration),
		nullableString(string(entry.Record.ReadMethod)),
		string(recordJSON),
		string(entry.Status),
		nullableString(entry.Error),
		nullableString(entry.SessionID),
		entry.FiledAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert filing: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.Search(ctx, Filter{Limit: limit})
}

// Search returns entries matching every non-empty field of the filter,
// newest first.
func (s *Store) Search(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		clauses = append(clauses,
			"(LOWER(COALESCE(make,'')) LIKE ? OR LOWER(COALESCE(model,'')) LIKE ? OR LOWER(COALESCE(ecu,'')) LIKE ? OR LOWER(COALESCE(registration,'')) LIKE ?)")
		args = append(args, like, like, like, like)
	}
	if v := strings.TrimSpace(filter.Make); v != "" {
		clauses = append(clauses, "LOWER(make) = ?")
		args = append(args, strings.ToLower(v))
	}
	if v := strings.TrimSpace(filter.Registration); v != "" {
		clauses = append(clauses, "LOWER(registration) = ?")
		args = append(args, strings.ToLower(v))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "filed_at >= ?")
		args = append(args, filter.Since.UTC().Format(timestampLayout))
	}

	query := `SELECT id, source_path, dest_path, folder_name, record_json, status,
        error_message, session_id, filed_at FROM filings`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY filed_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query filings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filings: %w", err)
	}
	return entries, nil
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM filings")
	if err != nil {
		return 0, fmt.Errorf("clear filings: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry      Entry
		destPath   sql.NullString
		folderName sql.NullString
		recordJSON string
		status     string
		errMsg     sql.NullString
		sessionID  sql.NullString
		filedAt    string
	)
	if err := row.Scan(&entry.ID, &entry.SourcePath, &destPath, &folderName, &recordJSON,
		&status, &errMsg, &sessionID, &filedAt); err != nil {
		return Entry{}, fmt.Errorf("scan filing: %w", err)
	}
	entry.DestPath = destPath.String
	entry.FolderName = folderName.String
	entry.Status = Status(status)
	entry.Error = errMsg.String
	entry.SessionID = sessionID.String

	var record metadata.Record
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return Entry{}, fmt.Errorf("decode record for filing %d: %w", entry.ID, err)
	}
	entry.Record = record

	if ts, err := time.Parse(timestampLayout, filedAt); err == nil {
		entry.FiledAt = ts
	}
	return entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
