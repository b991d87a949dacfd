package cli

import (
	"errors"

	"github.com/kolah/brunoapi/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	return NewRootCmd(afero.NewOsFs())
}

// NewRootCmd builds the command tree on top of fs.
func NewRootCmd(fs afero.Fs) *cobra.Command {
	root := &cobra.Command{
		Use:           "brunoapi",
		Short:         "Convert OpenAPI documents to Bruno collections and back",
		Version:       "1.0.0",
		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	config.BindGlobalFlags(root)
	root.AddCommand(ImportCommand(fs), ExportCommand(fs))

	return root
}

// fail prints the cause chain of err when verbose is set and returns err.
func fail(cmd *cobra.Command, verbose bool, err error) error {
	if verbose {
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			cmd.PrintErrf("  caused by: %v\n", cause)
		}
	}
	return err
}
