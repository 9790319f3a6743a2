package gate

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"scout/internal/scoutcore/audit"
	"scout/internal/scoutcore/facts"
	"scout/internal/scoutcore/llm"
)

func sampleFacts() []*facts.ModuleFacts {
	mf := facts.NewModuleFacts("widget.go")
	mf.Symbols.Set("Widget", facts.SymbolFact{Kind: facts.KindFunction, Name: "Widget", DefinedAt: 10})
	mf.Recompute()
	return []*facts.ModuleFacts{mf}
}

type mockClient struct {
	replies []llm.Response
	call    int
}

func (m *mockClient) Call(ctx context.Context, req llm.Request) (llm.Response, error) {
	if m.call >= len(m.replies) {
		m.call++
		return llm.Response{}, fmt.Errorf("no more scripted replies")
	}
	r := m.replies[m.call]
	m.call++
	return r, nil
}

func openLog(t *testing.T) *audit.Log {
	t.Helper()
	log, err := audit.Open(filepath.Join(t.TempDir(), "audit.jsonl"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return log
}

func TestValidateAndCompress_HighConfidencePassesOnFirstAttempt(t *testing.T) {
	log := openLog(t)
	mock := &mockClient{replies: []llm.Response{
		{Content: `{"brief": "Widget is defined at line 10.", "confidence_score": 0.85, "gaps": []}`},
	}}

	g := New(mock, log, Config{Model: "llama-3.3-70b-versatile"})
	decision := g.ValidateAndCompress(context.Background(), "what is Widget?", sampleFacts(), "", nil)

	if decision.Decision != Pass {
		t.Fatalf("expected pass, got %s", decision.Decision)
	}
	if decision.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %v", decision.Confidence)
	}

	events, err := log.LastEvents(10, "")
	if err != nil {
		t.Fatalf("LastEvents: %v", err)
	}
	var compress, attempts int
	for _, ev := range events {
		switch ev.EventType {
		case "gate_compress":
			compress++
		case "gate_attempt":
			attempts++
		}
	}
	if compress != 1 {
		t.Errorf("expected exactly one gate_compress event, got %d", compress)
	}
	if attempts != 1 {
		t.Errorf("expected exactly one gate_attempt event, got %d", attempts)
	}
}

func TestValidateAndCompress_LowConfidenceEscalatesAfterMaxAttempts(t *testing.T) {
	log := openLog(t)
	lowConfidenceReply := llm.Response{Content: `{"brief": "Widget defined at line 10.", "confidence_score": 0.50, "gaps": ["[GAP] return type unknown"]}`}
	mock := &mockClient{replies: []llm.Response{lowConfidenceReply, lowConfidenceReply}}

	g := New(mock, log, Config{Model: "llama-3.3-70b-versatile"})
	decision := g.ValidateAndCompress(context.Background(), "what is Widget?", sampleFacts(), "", nil)

	if decision.Decision != Escalate {
		t.Fatalf("expected escalate after exhausting attempts, got %s", decision.Decision)
	}
	if decision.Attempts != DefaultMaxAttempts {
		t.Errorf("expected %d attempts, got %d", DefaultMaxAttempts, decision.Attempts)
	}
	if decision.Content == "" {
		t.Error("expected escalate content to carry the raw fact bundle")
	}

	events, err := log.LastEvents(10, "")
	if err != nil {
		t.Fatalf("LastEvents: %v", err)
	}
	var escalate int
	for _, ev := range events {
		if ev.EventType == "gate_escalate" {
			escalate++
		}
	}
	if escalate != 1 {
		t.Errorf("expected exactly one gate_escalate event, got %d", escalate)
	}
}

func TestValidateAndCompress_MalformedReplyRetries(t *testing.T) {
	log := openLog(t)
	mock := &mockClient{replies: []llm.Response{
		{Content: "not json at all"},
		{Content: `{"brief": "Widget is defined at line 10.", "confidence_score": 0.9, "gaps": []}`},
	}}

	g := New(mock, log, Config{Model: "llama-3.3-70b-versatile"})
	decision := g.ValidateAndCompress(context.Background(), "what is Widget?", sampleFacts(), "", nil)

	if decision.Decision != Pass {
		t.Fatalf("expected pass after retry past a malformed reply, got %s", decision.Decision)
	}
}

func TestValidateAndCompress_EscalateCarriesRawBundleNotDegradedBrief(t *testing.T) {
	log := openLog(t)
	reply := llm.Response{Content: `{"brief": "unrelated nonsense about zzz qqq", "confidence_score": 0.9, "gaps": []}`}
	mock := &mockClient{replies: []llm.Response{reply, reply}}

	g := New(mock, log, Config{Model: "llama-3.3-70b-versatile"})
	decision := g.ValidateAndCompress(context.Background(), "what is Widget?", sampleFacts(), "", nil)

	if decision.Decision != Escalate {
		t.Fatalf("expected ungrounded brief to force escalate, got %s", decision.Decision)
	}
	if decision.Content == "unrelated nonsense about zzz qqq" {
		t.Error("escalate content must be the raw fact bundle, never the ungrounded brief")
	}
}
