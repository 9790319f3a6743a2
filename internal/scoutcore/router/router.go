// Package router implements the Big-Brain Router: it routes a gate
// decision to the cheap flash model on pass or the expensive pro model on
// escalate, assembles the synthesis prompt, and falls back from pro to
// flash on transient provider failure (escalate path only, never the
// reverse).
package router

import (
	"context"
	"fmt"
	"strings"

	"scout/internal/logging"
	"scout/internal/scoutcore/audit"
	"scout/internal/scoutcore/gate"
	"scout/internal/scoutcore/llm"
)

// Response is the Big-Brain Router's result: the synthesized answer plus
// which model actually produced it (post any fallback).
type Response struct {
	Content      string
	Model        string
	CostUSD      float64
	InputTokens  int
	OutputTokens int
}

// Config names the two model tiers.
type Config struct {
	FlashModel string
	ProModel   string
}

// DefaultConfig names the two Gemini tiers used across scoutcore.
func DefaultConfig() Config {
	return Config{FlashModel: "gemini-2.5-flash", ProModel: "gemini-2.5-pro"}
}

// Client is the subset of llm.Client the router needs.
type Client interface {
	Call(ctx context.Context, req llm.Request) (llm.Response, error)
}

// Router dispatches gate decisions to the appropriate model tier.
type Router struct {
	client Client
	log    *audit.Log
	cfg    Config
}

// New builds a Router. A zero-value Config falls back to DefaultConfig.
func New(client Client, log *audit.Log, cfg Config) *Router {
	if cfg.FlashModel == "" || cfg.ProModel == "" {
		cfg = DefaultConfig()
	}
	return &Router{client: client, log: log, cfg: cfg}
}

// CallBigBrainGated synthesizes an answer from question and decision,
// routing to the flash model on a gate pass and the pro model on an
// escalate, with a pro-to-flash fallback if the pro call fails.
func (r *Router) CallBigBrainGated(ctx context.Context, question string, decision gate.GateDecision) (Response, error) {
	model := r.cfg.FlashModel
	if decision.Decision == gate.Escalate {
		model = r.cfg.ProModel
	}

	prompt := buildSynthesisPrompt(question, decision)

	resp, err := r.client.Call(ctx, llm.Request{
		Prompt:    prompt,
		MaxTokens: 4096,
		Model:     model,
		TaskType:  "big_brain_synthesis",
	})

	if err != nil && decision.Decision == gate.Escalate && model == r.cfg.ProModel {
		logging.RouterWarn("router: pro model failed on escalate path, falling back to flash: %v", err)
		model = r.cfg.FlashModel
		resp, err = r.client.Call(ctx, llm.Request{
			Prompt:    prompt,
			MaxTokens: 4096,
			Model:     model,
			TaskType:  "big_brain_synthesis",
		})
	}

	if err != nil {
		logging.RouterError("router: big brain call failed model=%s: %v", model, err)
		return Response{}, fmt.Errorf("llm_error: %w", err)
	}

	tier := modelTier(model, r.cfg)
	if decision.Decision == gate.Pass {
		logging.Router("gate_synthesis model=%s confidence=%.2f", tier, decision.Confidence)
	} else {
		logging.Router("gate_synthesis model=%s reason=escalate", tier)
	}
	r.auditSynthesis(decision, model, tier, resp)

	return Response{
		Content:      resp.Content,
		Model:        model,
		CostUSD:      resp.CostUSD,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// auditSynthesis records the routing decision itself (which tier served
// the answer, at what confidence) as a gate_synthesis event, distinct from
// the big_brain_synthesis transport event AuditingClient already appended
// for the underlying LLM call.
func (r *Router) auditSynthesis(decision gate.GateDecision, model, tier string, resp llm.Response) {
	if r.log == nil {
		return
	}
	_ = r.log.Append(audit.Event{
		EventType:    "gate_synthesis",
		Model:        model,
		Cost:         resp.CostUSD,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Metadata: map[string]any{
			"tier":       tier,
			"decision":   string(decision.Decision),
			"confidence": decision.Confidence,
		},
	})
}

func modelTier(model string, cfg Config) string {
	if model == cfg.ProModel {
		return "pro"
	}
	return "flash"
}

// buildSynthesisPrompt assembles the decision content, every gap marker,
// the question, and an uncertainty-acknowledgment directive when gaps are
// present.
func buildSynthesisPrompt(question string, decision gate.GateDecision) string {
	var sb strings.Builder
	sb.WriteString(decision.Content)
	sb.WriteString("\n\n")
	if len(decision.Gaps) > 0 {
		sb.WriteString("Known gaps (information requested but not found):\n")
		for _, g := range decision.Gaps {
			sb.WriteString("- " + g + "\n")
		}
		sb.WriteString("\nAcknowledge these uncertainties explicitly in your answer; do not fabricate anything to fill them.\n\n")
	}
	sb.WriteString("Question: " + question + "\n")
	return sb.String()
}
