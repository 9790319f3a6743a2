package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	auditTailN    int
	auditTailType string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the append-only LLM call audit log",
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the most recent audit events",
	Args:  cobra.NoArgs,
	RunE:  runAuditTail,
}

func init() {
	auditTailCmd.Flags().IntVarP(&auditTailN, "n", "n", 20, "Number of events to print")
	auditTailCmd.Flags().StringVar(&auditTailType, "type", "", "Filter to one event_type")
	auditCmd.AddCommand(auditTailCmd)
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	events, err := app.auditLog.LastEvents(auditTailN, auditTailType)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("(no audit events)")
		return nil
	}
	for _, ev := range events {
		fmt.Printf("%s  %-20s model=%s cost=%.6f in=%d out=%d\n",
			ev.Timestamp.Format("2006-01-02T15:04:05Z"), ev.EventType, ev.Model, ev.Cost, ev.InputTokens, ev.OutputTokens)
	}
	return nil
}
