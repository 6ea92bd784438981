package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the yvault command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "yvault",
		Short:         "Yield vault accounting and fee-distribution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(ResetDBCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
