package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"scout/internal/logging"
)

// GeminiClient implements Client over Google's GenAI SDK. It backs both the
// flash and pro model tiers the router dispatches to; the model id is
// taken from each Request, not fixed at construction, since one client
// instance serves both tiers.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient builds a GeminiClient from an API key.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Call sends one prompt/system pair to the named model and returns content
// plus USD cost computed from the response's usage metadata. The call runs
// under its own 60s timeout on a context detached from ctx's cancellation
// and deadline, so a caller that gives up only discards the result.
func (c *GeminiClient) Call(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 60*time.Second)
	defer cancel()

	logging.LLMDebug("gemini: call model=%s task_type=%s prompt_len=%d", req.Model, req.TaskType, len(req.Prompt))

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	latency := time.Since(start)
	if err != nil {
		logging.LLMError("gemini: call failed model=%s task_type=%s after %v: %v", req.Model, req.TaskType, latency, err)
		return Response{Model: req.Model}, fmt.Errorf("gemini call failed: %w", err)
	}

	text := result.Text()
	var inputTokens, outputTokens int
	if result.UsageMetadata != nil {
		inputTokens = int(result.UsageMetadata.PromptTokenCount)
		outputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	cost, resolved := Price(req.Model, inputTokens, outputTokens)
	logging.LLMDebug("gemini: call ok model=%s resolved=%s latency=%v input_tokens=%d output_tokens=%d cost=%v",
		req.Model, resolved, latency, inputTokens, outputTokens, cost)

	return Response{
		Content:      text,
		CostUSD:      cost,
		Model:        req.Model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}
