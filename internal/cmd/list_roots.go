package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListRootsCommand creates the 'fly list-roots' command
func NewListRootsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-roots",
		Short: "Show registered roots",
		Args:  cobra.NoArgs,
		RunE:  runListRoots,
	}
}

func runListRoots(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	roots, err := app.Store.ListRoots(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(roots) == 0 {
		fmt.Fprintln(out, "No roots configured.")
		return nil
	}

	fmt.Fprintf(out, "Config directory: %s\n", app.Manager.Dir())
	for _, root := range roots {
		fmt.Fprintf(out, "priority=%d path=%s\n", root.Priority, root.Path)
	}
	return nil
}
