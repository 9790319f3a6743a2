package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/scoutcore/scouterr"
)

var indexLimit int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query the persistent symbol index",
}

var indexQueryCmd = &cobra.Command{
	Use:   "query [query]",
	Short: "Rank symbols by name match against query (never fails on empty results)",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexQuery,
}

func init() {
	indexQueryCmd.Flags().IntVar(&indexLimit, "limit", 20, "Maximum number of results")
	indexCmd.AddCommand(indexQueryCmd)
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	candidates, err := app.idx.QueryForNav(args[0], indexLimit)
	if err != nil {
		return scouterr.Wrap(scouterr.IOError, "index query failed", err)
	}
	if len(candidates) == 0 {
		fmt.Println("(no matching symbols)")
		return nil
	}
	for _, c := range candidates {
		fmt.Printf("%s\t%s:%d\t%s\n", c.Name, c.File, c.Line, c.Kind)
	}
	return nil
}
