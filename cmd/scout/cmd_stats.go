package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dependency graph health and cumulative LLM usage/cost",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	stats := app.graphG.GetStats(func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	})
	fmt.Printf("graph: total=%d stale=%d orphaned=%d cache_version=%d\n",
		stats.Total, stats.Stale, stats.Orphaned, stats.CacheVersion)

	events, err := app.auditLog.LastEvents(0, "")
	if err != nil {
		fmt.Printf("audit: unavailable (%v)\n", err)
		return nil
	}
	var totalCost float64
	var totalIn, totalOut int
	byModel := make(map[string]int)
	for _, ev := range events {
		totalCost += ev.Cost
		totalIn += ev.InputTokens
		totalOut += ev.OutputTokens
		if ev.Model != "" {
			byModel[ev.Model]++
		}
	}
	fmt.Printf("usage: events=%d cost_usd=%.6f input_tokens=%d output_tokens=%d\n",
		len(events), totalCost, totalIn, totalOut)
	for model, count := range byModel {
		fmt.Printf("  %s: %d call(s)\n", model, count)
	}
	return nil
}
