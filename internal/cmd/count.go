package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCountCommand creates the 'fly count' command
func NewCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print index statistics",
		Args:  cobra.NoArgs,
		RunE:  runCount,
	}
}

func runCount(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	dirs, err := app.Store.CountDirectories(ctx)
	if err != nil {
		return err
	}
	roots, err := app.Store.CountRoots(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Roots: %d\n", roots)
	fmt.Fprintf(out, "Total indexed directories: %d\n", dirs)
	return nil
}
