package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewAddRootCommand creates the 'fly add-root' command
func NewAddRootCommand() *cobra.Command {
	var priority int

	cmd := &cobra.Command{
		Use:   "add-root <path>",
		Short: "Register a directory root for indexing",
		Long: `Register a directory as an index root. The root is recorded in the
roots file and the store; run 'fly reindex' afterwards to populate the
index. Lower priority values list first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddRoot(cmd, args[0], priority)
		},
	}

	cmd.Flags().IntVar(&priority, "priority", 100, "root priority (lower sorts first)")
	return cmd
}

func runAddRoot(cmd *cobra.Command, path string, priority int) error {
	rootPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", path, err)
	}
	rootPath = filepath.Clean(rootPath)

	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", rootPath)
	}

	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Manager.AddRoot(rootPath, priority); err != nil {
		return err
	}
	if _, err := app.Store.UpsertRoot(ctx, rootPath, priority); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Root registered: %s (priority %d)\n", rootPath, priority)
	return nil
}
