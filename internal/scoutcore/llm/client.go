// Package llm implements the provider-agnostic LLM client and pricing
// contract: Call(prompt, system?, max_tokens, model, task_type) ->
// {content, cost_usd, model, input_tokens, output_tokens}, with cost and
// token accounting returned inline rather than tracked out of band.
package llm

import "context"

// Request is one call into an LLM provider.
type Request struct {
	Prompt       string
	System       string
	MaxTokens    int
	Model        string
	TaskType     string // e.g. "gate_compress", "big_brain_synthesis"
}

// Response is the result of a Client.Call, carrying enough accounting
// detail for the audit log and pricing table.
type Response struct {
	Content      string
	CostUSD      float64
	Model        string
	InputTokens  int
	OutputTokens int
}

// Client is the provider-agnostic contract every LLM backend implements.
type Client interface {
	Call(ctx context.Context, req Request) (Response, error)
}
