package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the 'fly reset' command
func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop every root and indexed directory",
		Long: `Empty the index database: all roots, all directory records, and the
remembered query result. The roots file on disk is left untouched, so a
subsequent command re-registers its roots (without their directories)
until the next reindex.`,
		Args: cobra.NoArgs,
		RunE: runReset,
	}
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	removed, err := app.Store.Reset(ctx)
	if err != nil {
		return err
	}
	if err := app.Store.Vacuum(ctx); err != nil {
		app.Log.Warnf("vacuum after reset: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reset complete; removed %d indexed entries.\n", removed)
	return nil
}
