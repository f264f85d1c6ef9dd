package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/VaibhavPandit-09/fly/internal/resolve"
)

// NewQueryCommand creates the explicit 'fly query' command. The root
// command routes bare tokens here as well; the explicit form exists for
// basenames that collide with subcommand names.
func NewQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <tokens...>",
		Short: "Resolve a jump query",
		Long: `Resolve tokens into indexed directory paths.

A single name looks up directories by basename; extra leading tokens act
as hints that narrow matches by path substring; a bare number recalls an
entry from the previous result list.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runQuery,
	}
}

// runQuery executes a jump query and prints the outcome.
func runQuery(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	ctx := cmd.Context()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	resolver := resolve.New(app.Store, app.Cfg.FuzzyLimit)

	result, err := resolver.Resolve(ctx, args)
	if err != nil {
		return err
	}

	// A numeric token that misses the recall slot may still name a real
	// directory, e.g. one called "2024". Retry it as an exact basename.
	if len(result.Paths) == 0 && len(args) == 1 {
		if _, numeric := parseInt(args[0]); numeric {
			result, err = resolver.ResolveExact(ctx, args[0])
			if err != nil {
				return err
			}
		}
	}

	if len(result.Paths) == 0 {
		return fmt.Errorf("no directory indexed matching %q", strings.Join(args, " "))
	}

	out := cmd.OutOrStdout()
	if result.Fuzzy {
		// Fuzzy candidates are suggestions, not a match. List them for
		// the next recall, then report the miss so nothing jumps.
		app.Log.Warnf("no exact match for %q; closest candidates:", args[len(args)-1])
		for i, p := range result.Paths {
			fmt.Fprintf(out, "%d: %s\n", i+1, p)
		}
		return fmt.Errorf("no directory indexed matching %q", strings.Join(args, " "))
	}

	if len(result.Paths) == 1 {
		fmt.Fprintln(out, result.Paths[0])
		return nil
	}

	header := color.New(color.FgYellow)
	header.Fprintln(out, "--Multiple matches found--")
	for i, p := range result.Paths {
		fmt.Fprintf(out, "%d: %s\n", i+1, p)
	}
	return nil
}

func parseInt(token string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	return n, err == nil
}
