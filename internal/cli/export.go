package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/export"
	"github.com/matzehuels/gridboard/pkg/state"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the layout as json, yaml, cbor, dot or svg",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}

			ctx := c.commandContext(cmd)
			t := startTimer(c.Logger)
			var data []byte
			var dashboard string
			err = c.withSession(ctx, func(s *session) error {
				dashboard = s.cfg.Store.Dashboard
				opts := export.Options{Title: dashboard, Detailed: detailed}
				data, err = export.Export(ctx, f, s.mgr.Widgets(), s.mgr.Engine(), opts)
				return err
			})
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			t.done("exported", "dashboard", dashboard, "format", f, "bytes", len(data))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: "+formatList()+" (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include size and position labels in dot/svg output")
	return cmd
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the layout with widgets read from a json, yaml or cbor file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := exportFormat(format, path)
			if err != nil {
				return err
			}
			if !f.IsData() {
				return errors.New(errors.ErrCodeUnsupported, "cannot import %s files", f)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			widgets, err := export.Import(f, data)
			if err != nil {
				return err
			}

			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				if err := s.mgr.Reset(widgets, state.Label("import")); err != nil {
					return err
				}
				printSuccess("Imported %d widgets into %s", len(s.mgr.Widgets()), s.cfg.Store.Dashboard)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (default from file extension)")
	return cmd
}

// exportFormat resolves an explicit format or infers it from path.
func exportFormat(format, path string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if path == "" || path == "-" {
		return export.FormatJSON, nil
	}
	return export.FormatFromPath(path)
}

func formatList() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
