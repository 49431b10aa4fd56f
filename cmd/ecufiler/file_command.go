package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ecufiler/internal/daemon"
	"ecufiler/internal/history"
	"ecufiler/internal/metadata"
	"ecufiler/internal/organizer"
)

// recordOverrides holds values typed by the operator. Non-empty values
// replace what identification found.
type recordOverrides struct {
	make         string
	model        string
	date         string
	ecu          string
	readMethod   string
	mileage      string
	registration string
}

func (o recordOverrides) apply(rec metadata.Record) (metadata.Record, error) {
	set := func(dst *string, value string) {
		if v := strings.TrimSpace(value); v != "" {
			*dst = v
		}
	}
	set(&rec.Make, o.make)
	set(&rec.Model, o.model)
	set(&rec.Date, o.date)
	set(&rec.ECU, o.ecu)
	set(&rec.Mileage, o.mileage)
	set(&rec.Registration, strings.ToUpper(o.registration))
	if strings.TrimSpace(o.readMethod) != "" {
		method, err := metadata.ParseReadMethod(o.readMethod)
		if err != nil {
			return rec, err
		}
		rec.ReadMethod = method
	}
	return rec, nil
}

func newFileCommand(ctx *commandContext) *cobra.Command {
	var overrides recordOverrides
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Identify a dump and move it into the destination tree",
		Long: `File identifies a single dump, applies any overrides given on the
command line, and moves it into <destination>/<make>/<folder>/ alongside a
session log. Use --dry-run to see where it would go.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			var store *history.Store
			if !dryRun {
				store, err = ctx.openHistory()
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
				}
			}

			pipeline := daemon.NewPipeline(cfg, logger, store, uuid.NewString())
			id := pipeline.Identifier().IdentifyFile(cmd.Context(), path)
			if id.ReadErr != nil {
				return id.ReadErr
			}
			rec, err := overrides.apply(id.Record)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				dir, folder, reused, err := organizer.NewOrganizer(cfg, logger).Destination(rec)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Would file %s\n", filepath.Base(path))
				fmt.Fprintf(out, "  Folder: %s\n", folder)
				fmt.Fprintf(out, "  Path:   %s\n", filepath.Join(dir, filepath.Base(path)))
				if reused {
					fmt.Fprintln(out, "  Reusing existing registration folder")
				}
				return nil
			}

			outcome := pipeline.File(cmd.Context(), id, rec)
			if outcome.Status != history.StatusFiled {
				if outcome.Err == nil {
					outcome.Err = errors.New("dump was not filed")
				}
				return fmt.Errorf("%s: %w", outcome.Status, outcome.Err)
			}
			res := outcome.Filing
			fmt.Fprintf(out, "Filed %s\n", filepath.Base(path))
			fmt.Fprintf(out, "  Folder: %s\n", res.FolderName)
			fmt.Fprintf(out, "  Path:   %s\n", res.DestPath)
			if res.Reused {
				fmt.Fprintln(out, "  Added to existing registration folder")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&overrides.make, "make", "", "Override vehicle make")
	flags.StringVar(&overrides.model, "model", "", "Override vehicle model")
	flags.StringVar(&overrides.date, "date", "", "Override read date (YYYYMMDD)")
	flags.StringVar(&overrides.ecu, "ecu", "", "Override ECU description")
	flags.StringVar(&overrides.readMethod, "read-method", "", "Override read method (obd, virtual, bench, boot)")
	flags.StringVar(&overrides.mileage, "mileage", "", "Override mileage in km")
	flags.StringVar(&overrides.registration, "registration", "", "Override registration plate")
	flags.BoolVar(&dryRun, "dry-run", false, "Show the destination without moving anything")
	return cmd
}

func newFoldersCommand(ctx *commandContext) *cobra.Command {
	var query organizer.Query

	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Search filed vehicle folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			folders, err := organizer.NewOrganizer(cfg, logger).Search(query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(folders) == 0 {
				fmt.Fprintln(out, "No matching folders")
				return nil
			}
			rows := make([][]string, 0, len(folders))
			for _, f := range folders {
				rows = append(rows, []string{f.Make, f.Name, f.Path})
			}
			fmt.Fprint(out, renderTable([]string{"Make", "Folder", "Path"}, rows, nil))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&query.Registration, "registration", "", "Registration plate")
	cmd.Flags().StringVar(&query.Make, "make", "", "Vehicle make")
	cmd.Flags().StringVar(&query.Model, "model", "", "Vehicle model")
	cmd.Flags().StringVar(&query.ECU, "ecu", "", "ECU description")
	return cmd
}
