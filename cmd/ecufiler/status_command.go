package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ecufiler/internal/daemon"
	"ecufiler/internal/history"
	"ecufiler/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show watcher state, directory health, and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Watcher", colorize) {
				fmt.Fprintln(out, line)
			}
			running, err := daemon.IsRunning(cfg)
			switch {
			case err != nil:
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, err.Error(), colorize))
			case running:
				fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "running", colorize))
			default:
				fmt.Fprintln(out, renderStatusLine("Daemon", statusInfo, "not running", colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Auto file", statusInfo, yesNo(cfg.Watch.AutoFile), colorize))

			if running {
				client, err := daemon.NewClient(cfg.Watch.MetricsBind)
				if err != nil {
					return err
				}
				st, err := client.Status(cmd.Context())
				switch {
				case daemon.IsStatusUnavailable(err):
					fmt.Fprintln(out, renderStatusLine("Counters", statusInfo, "set watch.metrics_bind to see live counters", colorize))
				case err != nil:
					fmt.Fprintln(out, renderStatusLine("Counters", statusWarn, err.Error(), colorize))
				default:
					fmt.Fprintln(out, renderStatusLine("Session", statusInfo, st.SessionID, colorize))
					counts := fmt.Sprintf("seen %d, filed %d, pending %d, failed %d", st.Seen, st.Filed, st.Pending, st.Failed)
					fmt.Fprintln(out, renderStatusLine("Counters", statusInfo, counts, colorize))
					if st.LastFile != "" {
						fmt.Fprintln(out, renderStatusLine("Last dump", historyStatusKind(history.Status(st.LastStatus)),
							fmt.Sprintf("%s (%s)", filepath.Base(st.LastFile), st.LastStatus), colorize))
					}
				}
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range renderPreflight(preflight.RunAll(cfg), colorize) {
				fmt.Fprintln(out, line)
			}

			store, err := ctx.openHistory()
			if err != nil || store == nil {
				return err
			}
			defer store.Close()
			entries, err := store.Recent(cmd.Context(), 5)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Recent", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, e := range entries {
				detail := e.FolderName
				if e.Status != history.StatusFiled {
					detail = e.Error
				}
				label := filepath.Base(e.SourcePath)
				fmt.Fprintln(out, renderStatusLine(label, historyStatusKind(e.Status), detail, colorize))
			}
			return nil
		},
	}
}
