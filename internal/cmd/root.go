package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root cobra command for fly
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fly [tokens...]",
		Short: "Indexed directory jumping",
		Long: `Fly indexes the directories under your registered roots and resolves
short queries into full paths for the shell wrapper to cd into.

Query shapes:
  fly <basename>            Best matches for a directory name
  fly <hint...> <basename>  Matches narrowed by path hints
  fly <number>              Recall an entry from the previous result list`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		RunE:    runQuery,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewQueryCommand())
	cmd.AddCommand(NewAddRootCommand())
	cmd.AddCommand(NewRemoveRootCommand())
	cmd.AddCommand(NewListRootsCommand())
	cmd.AddCommand(NewReindexCommand())
	cmd.AddCommand(NewCountCommand())
	cmd.AddCommand(NewResetCommand())

	return cmd
}
