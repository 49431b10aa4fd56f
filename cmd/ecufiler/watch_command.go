package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ecufiler/internal/daemon"
	"ecufiler/internal/logging"
	"ecufiler/internal/preflight"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the monitor directory and file new dumps until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, ctx)
		},
	}
}

func runWatch(cmd *cobra.Command, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	results := preflight.RunAll(cfg)
	if failed, ok := preflight.FirstBlocking(results); ok {
		for _, line := range renderPreflight(results, shouldColorize(cmd.ErrOrStderr())) {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		return fmt.Errorf("preflight %s: %s", failed.Name, failed.Detail)
	}

	logger, err := ctx.logger(true)
	if err != nil {
		return err
	}
	for _, r := range results {
		if !r.Passed {
			logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldImpact, "continuing without it"),
			)
		}
	}

	store, err := ctx.openHistory()
	if err != nil {
		logger.Error("open history store", logging.Error(err))
		return err
	}

	d, err := daemon.New(cfg, logger, store)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	logger.Info("watching for dumps",
		logging.String("monitor_dir", cfg.Paths.MonitorDir),
		logging.String("destination_dir", cfg.Paths.DestinationDir),
		logging.Bool("auto_file", cfg.Watch.AutoFile),
		logging.String("session_id", d.SessionID()),
	)

	<-signalCtx.Done()
	logger.Info("ecufiler watch shutting down")
	return nil
}
