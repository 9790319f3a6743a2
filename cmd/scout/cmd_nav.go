package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/scoutcore/hydrate"
)

var navScope string

var navCmd = &cobra.Command{
	Use:   "nav [task]",
	Short: "Rank the files most relevant to a task description (never fails)",
	Args:  cobra.ExactArgs(1),
	RunE:  runNav,
}

func init() {
	navCmd.Flags().StringVar(&navScope, "scope", ".", "Repo subpath to restrict results to")
}

func runNav(cmd *cobra.Command, args []string) error {
	task := args[0]
	files := hydrate.RouteQueryToFiles(task, navScope, app.repoRoot, app.idx)
	if len(files) == 0 {
		fmt.Println("(no matching files)")
		return nil
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}
