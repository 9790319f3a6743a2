// Package gate implements the Middle-Manager Gate: a bounded retry loop
// that asks a cheap tier-1 model to compress facts into a grounded brief
// with a confidence score, or escalates to the raw fact bundle when it
// can't.
package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"scout/internal/logging"
	"scout/internal/scoutcore/audit"
	"scout/internal/scoutcore/facts"
	"scout/internal/scoutcore/llm"
)

// Decision is the sum-typed result of validate_and_compress: either pass
// (carrying a compressed, grounded brief) or escalate (carrying the raw
// fact bundle untouched).
type Decision string

const (
	Pass     Decision = "pass"
	Escalate Decision = "escalate"
)

// DefaultMaxAttempts is the bounded retry budget.
const DefaultMaxAttempts = 2

// DefaultConfidenceThreshold is the minimum confidence_score to pass.
const DefaultConfidenceThreshold = 0.75

// GateDecision is the gate's typed result. Content is either the
// compressed brief (Pass) or the raw fact bundle (Escalate) - never a
// degraded compression on escalate.
type GateDecision struct {
	Decision    Decision
	Content     string
	Confidence  float64
	Gaps        []string
	Attempts    int
	InputTokens int
	OutputTokens int
}

// replyEnvelope is the typed shape the middle-manager's JSON reply must
// take. Never let the raw LLM string cross into decision logic beyond this
// parse step.
type replyEnvelope struct {
	Brief      string   `json:"brief"`
	Confidence float64  `json:"confidence_score"`
	Gaps       []string `json:"gaps"`
}

// Config configures one Gate instance.
type Config struct {
	MaxAttempts         int
	ConfidenceThreshold float64
	Model               string // middle-manager model id, e.g. "llama-3.3-70b-versatile"
}

// Gate runs validate_and_compress against a middle-manager llm.Client.
type Gate struct {
	client Client
	log    *audit.Log
	cfg    Config
}

// Client is the subset of llm.Client the gate needs; declared locally so
// tests can supply a mock without constructing a real llm.Client.
type Client interface {
	Call(ctx context.Context, req llm.Request) (llm.Response, error)
}

// New builds a Gate. Zero-value Config fields fall back to the package
// defaults.
func New(client Client, log *audit.Log, cfg Config) *Gate {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	return &Gate{client: client, log: log, cfg: cfg}
}

// ValidateAndCompress runs the bounded compressing -> validating retry
// loop. The fact bundle given to the model is serialized from factsList,
// or rawTLDRContext as a fallback when no facts were hydrated.
// querySymbols is an optional hint list used only to build the prompt,
// not to alter control flow.
func (g *Gate) ValidateAndCompress(ctx context.Context, question string, factsList []*facts.ModuleFacts, rawTLDRContext string, querySymbols []string) GateDecision {
	rawBundle := serializeFacts(factsList, rawTLDRContext)

	var gaps []string
	conservative := false

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		g.auditAttempt(attempt)

		prompt := buildCompressionPrompt(question, rawBundle, querySymbols, conservative)
		resp, err := g.client.Call(ctx, llm.Request{
			Prompt:    prompt,
			MaxTokens: 2048,
			Model:     g.cfg.Model,
			TaskType:  "gate_compress_attempt",
		})
		if err != nil {
			logging.GateWarn("gate: attempt %d transport failure: %v", attempt, err)
			continue
		}

		reply, err := parseReply(resp.Content)
		if err != nil {
			logging.GateWarn("gate: attempt %d malformed reply: %v", attempt, err)
			continue
		}

		gaps = reply.Gaps
		if !grounded(reply.Brief, factsList, rawBundle) {
			logging.GateDebug("gate: attempt %d ungrounded brief, retrying conservatively", attempt)
			conservative = true
			continue
		}

		if reply.Confidence >= g.cfg.ConfidenceThreshold && !hasCriticalGap(gaps) {
			decision := GateDecision{
				Decision:     Pass,
				Content:      reply.Brief,
				Confidence:   reply.Confidence,
				Gaps:         gaps,
				Attempts:     attempt,
				InputTokens:  resp.InputTokens,
				OutputTokens: resp.OutputTokens,
			}
			g.auditFinal(decision)
			return decision
		}

		conservative = true
	}

	decision := GateDecision{
		Decision: Escalate,
		Content:  rawBundle,
		Gaps:     gaps,
		Attempts: g.cfg.MaxAttempts,
	}
	g.auditFinal(decision)
	return decision
}

func (g *Gate) auditAttempt(attempt int) {
	if g.log == nil {
		return
	}
	_ = g.log.Append(audit.Event{
		EventType: "gate_attempt",
		Metadata:  map[string]any{"attempt": attempt},
	})
}

func (g *Gate) auditFinal(d GateDecision) {
	if g.log == nil {
		return
	}
	eventType := "gate_compress"
	if d.Decision == Escalate {
		eventType = "gate_escalate"
	}
	_ = g.log.Append(audit.Event{
		EventType:    eventType,
		InputTokens:  d.InputTokens,
		OutputTokens: d.OutputTokens,
		Metadata: map[string]any{
			"confidence": d.Confidence,
			"attempts":   d.Attempts,
			"gaps":       d.Gaps,
		},
	})
}

// buildCompressionPrompt enumerates facts (or raw TLDR context as
// fallback) and asks the model for a brief, confidence score, and gaps.
func buildCompressionPrompt(question, rawBundle string, querySymbols []string, conservative bool) string {
	var sb strings.Builder
	sb.WriteString("You are a compression layer. Given the following facts, produce a JSON object ")
	sb.WriteString(`{"brief": string, "confidence_score": number in [0,1], "gaps": [string]}.` + "\n")
	sb.WriteString("Every claim in brief must be directly traceable to the facts below. ")
	sb.WriteString("List anything requested but not present as a gap marker.\n")
	if conservative {
		sb.WriteString("Be more conservative than your previous attempt: lower confidence unless you are certain, and list every uncertainty as a gap.\n")
	}
	if len(querySymbols) > 0 {
		sb.WriteString("Symbols of interest: " + strings.Join(querySymbols, ", ") + "\n")
	}
	sb.WriteString("\nQuestion: " + question + "\n\nFacts:\n" + rawBundle)
	return sb.String()
}

// parseReply extracts and parses the JSON envelope from a possibly
// markdown-wrapped LLM response.
func parseReply(response string) (*replyEnvelope, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object found in reply")
	}
	var env replyEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return nil, fmt.Errorf("JSON parse failed: %w", err)
	}
	if env.Confidence < 0 || env.Confidence > 1 {
		return nil, fmt.Errorf("confidence_score %v out of [0,1]", env.Confidence)
	}
	return &env, nil
}

func extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}

// hasCriticalGap treats any non-empty gap marker as critical; the gate
// has no gradation of gap severity.
func hasCriticalGap(gaps []string) bool {
	return len(gaps) > 0
}

// grounded verifies every sentence-level claim in brief appears to draw on
// tokens present in the input (facts or raw bundle). This is a best-effort
// lexical check, not a semantic one: at least 60% of the words of at least
// 4 characters in brief must occur somewhere in the raw bundle (a brief
// with no such words passes), which is how the gate rejects wholesale
// fabrication without needing a second LLM call.
func grounded(brief string, factsList []*facts.ModuleFacts, rawBundle string) bool {
	if strings.TrimSpace(brief) == "" {
		return false
	}
	haystack := strings.ToLower(rawBundle)
	words := strings.FieldsFunc(strings.ToLower(brief), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	total, matched := 0, 0
	for _, w := range words {
		if len(w) < 4 {
			continue
		}
		total++
		if strings.Contains(haystack, w) {
			matched++
		}
	}
	if total == 0 {
		return true
	}
	return float64(matched)/float64(total) >= 0.6
}

// serializeFacts renders factsList as a deterministic fact enumeration, or
// falls back to rawTLDRContext when no facts were hydrated.
func serializeFacts(factsList []*facts.ModuleFacts, rawTLDRContext string) string {
	if len(factsList) == 0 {
		return rawTLDRContext
	}
	var sb strings.Builder
	for _, mf := range factsList {
		sb.WriteString("# " + mf.Path + "\n")
		for _, name := range mf.Symbols.Names() {
			sym, _ := mf.Symbols.Get(name)
			sb.WriteString(fmt.Sprintf("- %s %s defined_at=%d used_at=%v\n", sym.Kind, sym.Name, sym.DefinedAt, sym.UsedAt))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
