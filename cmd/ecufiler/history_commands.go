package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ecufiler/internal/history"
)

type historyView struct {
	ID        int64             `json:"id" yaml:"id"`
	FiledAt   string            `json:"filed_at" yaml:"filed_at"`
	Status    string            `json:"status" yaml:"status"`
	Source    string            `json:"source_path" yaml:"source_path"`
	Dest      string            `json:"dest_path,omitempty" yaml:"dest_path,omitempty"`
	Folder    string            `json:"folder_name,omitempty" yaml:"folder_name,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
	SessionID string            `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Record    map[string]string `json:"record" yaml:"record"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the record of handled dumps",
	}

	historyCmd.AddCommand(newHistoryRecentCommand(ctx))
	historyCmd.AddCommand(newHistorySearchCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryRecentCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently handled dumps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.History.RecentLimit
			}
			return ctx.withHistory(func(store *history.Store) error {
				entries, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printHistory(cmd, format, entries)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (default from config)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", formatTable, "Output format (table, json, yaml)")
	return cmd
}

func newHistorySearchCommand(ctx *commandContext) *cobra.Command {
	var filter history.Filter
	var statusFlag string
	var sinceFlag string
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search history by vehicle, registration, or status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				filter.Query = args[0]
			}
			status, ok := history.ParseStatus(statusFlag)
			if !ok {
				return fmt.Errorf("unknown status %q (use filed, pending, or failed)", statusFlag)
			}
			filter.Status = status
			since, err := parseSince(sinceFlag, time.Now())
			if err != nil {
				return err
			}
			filter.Since = since

			return ctx.withHistory(func(store *history.Store) error {
				entries, err := store.Search(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return printHistory(cmd, format, entries)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.Make, "make", "", "Vehicle make")
	flags.StringVar(&filter.Registration, "registration", "", "Registration plate")
	flags.StringVar(&statusFlag, "status", "", "Status (filed, pending, failed)")
	flags.StringVar(&sinceFlag, "since", "", "Only entries newer than a duration (72h) or date (2024-03-01)")
	flags.IntVarP(&filter.Limit, "limit", "n", 0, "Maximum entries to show")
	flags.StringVarP(&formatFlag, "format", "f", formatTable, "Output format (table, json, yaml)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all history entries",
		Long: `Clear removes every history entry. With --reset the database file is
deleted instead, which also recovers from a schema version mismatch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if reset {
				path := cfg.HistoryPath()
				removed := 0
				for _, p := range []string{path, path + "-wal", path + "-shm"} {
					if err := os.Remove(p); err == nil {
						removed++
					} else if !errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("remove %s: %w", filepath.Base(p), err)
					}
				}
				if removed == 0 {
					fmt.Fprintln(out, "No history database to remove")
					return nil
				}
				fmt.Fprintf(out, "Removed history database %s\n", path)
				return nil
			}
			return ctx.withHistory(func(store *history.Store) error {
				count, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d history entries\n", count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Delete the database file instead of its rows")
	return cmd
}

// withHistory opens the store for the duration of fn.
func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	store, err := c.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("history is disabled in the configuration")
	}
	defer store.Close()
	return fn(store)
}

func printHistory(cmd *cobra.Command, format string, entries []history.Entry) error {
	if format != formatTable {
		views := make([]historyView, 0, len(entries))
		for _, e := range entries {
			views = append(views, historyView{
				ID:        e.ID,
				FiledAt:   e.FiledAt.Format(time.RFC3339),
				Status:    string(e.Status),
				Source:    e.SourcePath,
				Dest:      e.DestPath,
				Folder:    e.FolderName,
				Error:     e.Error,
				SessionID: e.SessionID,
				Record:    e.Record.Map(),
			})
		}
		return writeStructured(cmd, format, views)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history entries")
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		target := e.FolderName
		if e.Status != history.StatusFiled {
			target = e.Error
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.FiledAt.Local().Format("2006-01-02 15:04"),
			string(e.Status),
			filepath.Base(e.SourcePath),
			strings.TrimSpace(e.Record.Make + " " + e.Record.Model),
			e.Record.Registration,
			target,
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"ID", "When", "Status", "Dump", "Vehicle", "Reg", "Folder / Error"},
		rows,
		[]columnAlignment{alignRight},
	))
	fmt.Fprintln(out)
	return nil
}

// parseSince accepts a Go duration counted back from now or a YYYY-MM-DD
// date in local time.
func parseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			d = -d
		}
		return now.Add(-d), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q (use a duration like 72h or a date like 2024-03-01)", value)
}
