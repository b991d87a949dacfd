package cli

import (
	"fmt"

	"github.com/kolah/brunoapi/internal/config"
	"github.com/kolah/brunoapi/internal/convert"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func ExportCommand(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an OpenAPI document from a Bruno collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(fs, cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateExport(); err != nil {
				return err
			}

			result, err := convert.New(fs).Export(convert.ExportOptions{
				CollectionDir: cfg.Export.CollectionDir,
				OutputFile:    cfg.Export.Output,
				Validate:      cfg.Export.Validate,
			})
			if err != nil {
				return fail(cmd, cfg.Verbose, fmt.Errorf("exporting %s: %w", cfg.Export.CollectionDir, err))
			}

			for _, w := range result.Warnings {
				cmd.PrintErrf("Warning: %s\n", w)
			}

			cmd.PrintErrf("Exported %q to %s\n", result.CollectionName, result.OutputPath)
			cmd.PrintErrf("  Paths: %d\n", result.PathCount)
			cmd.PrintErrf("  Operations: %d\n", result.OperationCount)
			cmd.PrintErrf("  Schemas: %d\n", result.SchemaCount)
			return nil
		},
	}

	config.BindExportFlags(cmd)

	return cmd
}
