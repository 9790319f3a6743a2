package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/scoutcore/scouterr"
)

var (
	syncScope       string
	syncChangedOnly bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-synthesize docs for every changed (or all) recognized source file under scope",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncScope, "scope", ".", "Repo subpath to sync")
	syncCmd.Flags().BoolVar(&syncChangedOnly, "changed-only", true, "Skip files whose content hash is unchanged")
}

func runSync(cmd *cobra.Command, args []string) error {
	result, err := app.engine.Sync(cmd.Context(), syncScope, syncChangedOnly)
	if err != nil {
		if se, ok := scouterr.As(err); ok {
			return se
		}
		return scouterr.Wrap(scouterr.ParseError, "sync failed", err)
	}

	fmt.Printf("regenerated %d doc(s)\n", result.Regenerated)
	for _, skipped := range result.Skipped {
		fmt.Printf("  skipped %s: %v\n", skipped.Path, skipped.Err)
	}
	return nil
}
