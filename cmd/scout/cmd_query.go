package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"scout/internal/logging"
	"scout/internal/scoutcore/facts"
	"scout/internal/scoutcore/hydrate"
	"scout/internal/scoutcore/scouterr"
)

var queryScope string

// capsSymbolRE mirrors hydrate's own symbol-reference heuristic, used
// here only to forward likely symbol names into the gate's prompt.
var capsSymbolRE = regexp.MustCompile(`\b[A-Z][A-Za-z0-9_]*\b`)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a natural-language question about the source tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryScope, "scope", ".", "Repo subpath to restrict the answer to")
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := cmd.Context()

	files := hydrate.RouteQueryToFiles(question, queryScope, app.repoRoot, app.idx)
	if len(files) == 0 {
		return scouterr.New(scouterr.ParseError, "no facts available for this question in the given scope")
	}

	seeds := make([]facts.SymbolRef, 0, len(files))
	for _, f := range files {
		seeds = append(seeds, facts.SymbolRef{Path: f})
	}

	factsList := hydrate.HydrateFacts(seeds, app.graphG, app.repoRoot, 500, 2)
	if len(factsList) == 0 {
		return scouterr.New(scouterr.ParseError, "no_facts: nothing synced yet for this scope; run `scout sync` first")
	}
	rawTLDR := hydrate.HydrateSymbols(seeds, app.graphG, app.repoRoot, 2, 4000)

	querySymbols := capsSymbolRE.FindAllString(question, -1)

	decision := app.gate.ValidateAndCompress(ctx, question, factsList, rawTLDR, querySymbols)
	logging.Query("query: gate decision=%s attempts=%d confidence=%.2f gaps=%d", decision.Decision, decision.Attempts, decision.Confidence, len(decision.Gaps))

	resp, err := app.router.CallBigBrainGated(ctx, question, decision)
	if err != nil {
		return scouterr.Wrap(scouterr.LLMTransport, "llm_error: synthesis failed", err)
	}

	fmt.Println(strings.TrimSpace(resp.Content))
	if len(decision.Gaps) > 0 {
		fmt.Println()
		fmt.Println("Gaps: " + strings.Join(decision.Gaps, "; "))
	}
	if !app.cfg.UX.HideCost {
		fmt.Printf("\n[model=%s cost_usd=%.6f]\n", resp.Model, resp.CostUSD)
	}
	return nil
}
