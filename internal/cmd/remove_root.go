package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewRemoveRootCommand creates the 'fly remove-root' command
func NewRemoveRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-root <path>",
		Short: "Unregister a root and drop its indexed directories",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemoveRoot,
	}
}

func runRemoveRoot(cmd *cobra.Command, args []string) error {
	rootPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", args[0], err)
	}
	rootPath = filepath.Clean(rootPath)

	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	removedFromConfig, err := app.Manager.RemoveRoot(rootPath)
	if err != nil {
		return err
	}
	removedFromStore, err := app.Store.DeleteRoot(ctx, rootPath)
	if err != nil {
		return err
	}

	if !removedFromConfig && !removedFromStore {
		return fmt.Errorf("no root registered at %s", rootPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Root removed: %s\n", rootPath)
	return nil
}
