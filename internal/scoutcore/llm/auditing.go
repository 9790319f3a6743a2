package llm

import (
	"context"
	"time"

	"scout/internal/scoutcore/audit"
)

// AuditingClient wraps a Client and emits one audit.Event per call,
// success or failure, with task_type preserved as the event type.
type AuditingClient struct {
	underlying Client
	log        *audit.Log
}

// NewAuditingClient wraps underlying so every call also appends to log.
func NewAuditingClient(underlying Client, log *audit.Log) *AuditingClient {
	return &AuditingClient{underlying: underlying, log: log}
}

func (c *AuditingClient) Call(ctx context.Context, req Request) (Response, error) {
	resp, err := c.underlying.Call(ctx, req)

	ev := audit.Event{
		Timestamp:    time.Now().UTC(),
		EventType:    req.TaskType,
		Model:        resp.Model,
		Cost:         resp.CostUSD,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}
	if err != nil {
		ev.Metadata = map[string]any{"error": err.Error()}
	}
	_ = c.log.Append(ev)

	return resp, err
}
