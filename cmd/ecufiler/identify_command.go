package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ecufiler/internal/filename"
	"ecufiler/internal/identification"
	"ecufiler/internal/metadata"
)

type identifyView struct {
	Path       string            `json:"path" yaml:"path"`
	Size       int64             `json:"size" yaml:"size"`
	Dialect    string            `json:"dialect" yaml:"dialect"`
	Record     metadata.Record   `json:"record" yaml:"record"`
	Provenance map[string]string `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var explain bool
	var showEmpty bool
	var workers int

	cmd := &cobra.Command{
		Use:   "identify <file>...",
		Short: "Extract vehicle and ECU metadata from dumps without filing them",
		Long: `Identify parses each dump's file name and scans its contents for
software versions, part numbers, and engine details. Nothing is moved.

Examples:
  ecufiler identify dump.bin
  ecufiler identify --explain --format yaml *.bin`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}

			identifier := identification.NewIdentifier(nil, logger)
			results, err := identifier.IdentifyAll(cmd.Context(), args, workers)
			if err != nil {
				return err
			}

			if format != formatTable {
				views := make([]identifyView, 0, len(results))
				for _, id := range results {
					views = append(views, newIdentifyView(id, explain))
				}
				return writeStructured(cmd, format, views)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for idx, id := range results {
				if idx > 0 {
					fmt.Fprintln(out)
				}
				for _, line := range renderSectionHeader(filepath.Base(id.Path), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "Dialect: %s  Size: %d bytes\n", id.Dialect, id.Size)
				if id.ReadErr != nil {
					fmt.Fprintln(out, renderStatusLine("Read", statusError, id.ReadErr.Error(), colorize))
				}
				fmt.Fprint(out, renderFieldTable(recordFields(id.Record, id.Provenance), explain, showEmpty))
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", formatTable, "Output format (table, json, yaml)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show which scanner phase produced each binary field")
	cmd.Flags().BoolVar(&showEmpty, "all", false, "Include fields with no value")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files identified concurrently (0 uses one per CPU)")
	return cmd
}

func newParseNameCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "parse-name <name>...",
		Short: "Show what the file name parser extracts from dump names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}

			type nameView struct {
				Name    string            `json:"name" yaml:"name"`
				Dialect string            `json:"dialect" yaml:"dialect"`
				Fields  metadata.Filename `json:"fields" yaml:"fields"`
			}
			views := make([]nameView, 0, len(args))
			for _, name := range args {
				res := filename.Parse(name)
				views = append(views, nameView{Name: name, Dialect: res.Dialect.String(), Fields: res.Record})
			}
			if format != formatTable {
				return writeStructured(cmd, format, views)
			}

			rows := make([][]string, 0, len(views))
			for _, v := range views {
				f := v.Fields
				rows = append(rows, []string{
					v.Name, v.Dialect, f.Make, f.Model, f.Date, f.ECU,
					string(f.ReadMethod), f.Mileage, f.Registration,
				})
			}
			headers := []string{"Name", "Dialect", "Make", "Model", "Date", "ECU", "Read", "Mileage", "Reg"}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(headers, rows, nil))
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", formatTable, "Output format (table, json, yaml)")
	return cmd
}

func newIdentifyView(id identification.Identification, explain bool) identifyView {
	view := identifyView{
		Path:    id.Path,
		Size:    id.Size,
		Dialect: id.Dialect.String(),
		Record:  id.Record,
	}
	if id.ReadErr != nil {
		view.Error = id.ReadErr.Error()
	}
	if explain && len(id.Provenance) > 0 {
		view.Provenance = make(map[string]string, len(id.Provenance))
		for field, phase := range id.Provenance {
			view.Provenance[string(field)] = phase
		}
	}
	return view
}

// recordFields returns label, value, source triples in display order.
func recordFields(rec metadata.Record, provenance map[metadata.Field]string) [][3]string {
	fields := metadata.Fields()
	out := make([][3]string, 0, len(fields))
	for _, f := range fields {
		source := "filename"
		if phase, ok := provenance[f]; ok {
			source = phase
		} else if isBinaryField(f) {
			source = ""
		}
		out = append(out, [3]string{fieldLabel(f), rec.Get(f), source})
	}
	return out
}

func isBinaryField(f metadata.Field) bool {
	for _, b := range metadata.BinaryFields {
		if b == f {
			return true
		}
	}
	return false
}

func fieldLabel(f metadata.Field) string {
	switch f {
	case metadata.FieldECU:
		return "ECU"
	case metadata.FieldSWVersion:
		return "SW Version"
	case metadata.FieldBoschSWNumber:
		return "Bosch SW Number"
	case metadata.FieldOEMHWNumber:
		return "OEM HW Number"
	case metadata.FieldOEMSWNumber:
		return "OEM SW Number"
	case metadata.FieldECUType:
		return "ECU Type"
	}
	words := strings.Split(string(f), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
