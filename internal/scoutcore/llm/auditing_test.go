package llm

import (
	"context"
	"path/filepath"
	"testing"

	"scout/internal/scoutcore/audit"
)

type fakeClient struct {
	resp Response
	err  error
}

func (f *fakeClient) Call(ctx context.Context, req Request) (Response, error) {
	return f.resp, f.err
}

func TestAuditingClient_EmitsEventWithTaskType(t *testing.T) {
	log, err := audit.Open(filepath.Join(t.TempDir(), "audit.jsonl"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	inner := &fakeClient{resp: Response{Content: "hi", CostUSD: 0.01, Model: "gemini-2.5-flash", InputTokens: 10, OutputTokens: 5}}
	client := NewAuditingClient(inner, log)

	_, err = client.Call(context.Background(), Request{TaskType: "gate_compress", Model: "gemini-2.5-flash"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	events, err := log.LastEvents(10, "")
	if err != nil {
		t.Fatalf("LastEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType != "gate_compress" {
		t.Errorf("expected task_type preserved as event_type, got %s", events[0].EventType)
	}
}
