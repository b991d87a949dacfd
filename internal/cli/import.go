package cli

import (
	"fmt"

	"github.com/kolah/brunoapi/internal/config"
	"github.com/kolah/brunoapi/internal/convert"
	"github.com/kolah/brunoapi/internal/mapper"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func ImportCommand(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Write a Bruno collection from an OpenAPI document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(fs, cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateImport(); err != nil {
				return err
			}

			groupBy, err := mapper.ParseGroupBy(cfg.Import.GroupBy)
			if err != nil {
				return err
			}

			result, err := convert.New(fs).Import(cmd.Context(), convert.ImportOptions{
				Source:    cfg.Spec,
				OutputDir: cfg.Import.OutputDir,
				Name:      cfg.Import.Name,
				GroupBy:   groupBy,
			})
			if err != nil {
				return fail(cmd, cfg.Verbose, fmt.Errorf("importing %s: %w", cfg.Spec, err))
			}

			for _, w := range result.Warnings {
				cmd.PrintErrf("Warning: %s\n", w)
			}
			if cfg.Verbose {
				for _, f := range result.Files {
					cmd.PrintErrf("Written: %s\n", f)
				}
			}

			cmd.PrintErrf("Imported collection %q into %s\n", result.CollectionName, result.OutputPath)
			cmd.PrintErrf("  Requests: %d\n", result.ItemCount)
			cmd.PrintErrf("  Environments: %d\n", result.EnvironmentCount)
			return nil
		},
	}

	config.BindImportFlags(cmd)

	return cmd
}
