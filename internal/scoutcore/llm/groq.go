package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scout/internal/logging"
)

// groqRequest/groqResponse mirror the OpenAI-compatible chat-completions
// wire format; Groq's API is OpenAI-compatible by design.
type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GroqClient implements Client against a Groq-compatible REST endpoint. It
// backs the Middle-Manager Gate's tier-1 ("~70B parameter") model.
type GroqClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGroqClient builds a GroqClient. baseURL defaults to Groq's public
// OpenAI-compatible endpoint when empty.
func NewGroqClient(apiKey, baseURL string) (*GroqClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq: API key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	return &GroqClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Call sends one chat-completion request, with a single retry after any
// failed attempt (transport error, non-200 status, or unparseable reply).
// The retry here is bounded to one attempt since the gate's own retry loop
// is the outer bound on total attempts. The call runs under its own 60s
// timeout on a context detached from ctx's cancellation and deadline, so a
// caller that gives up only discards the result.
func (c *GroqClient) Call(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 60*time.Second)
	defer cancel()

	system := req.System
	if strings.TrimSpace(system) == "" {
		system = "Respond in English. Be concise. Ground every claim in the provided facts only."
	}

	body := groqRequest{
		Model: req.Model,
		Messages: []groqMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: 0.1,
	}

	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Second)
		}

		resp, err := c.doRequest(ctx, body)
		if err != nil {
			lastErr = err
			logging.LLMWarn("groq: call attempt %d failed model=%s task_type=%s: %v", attempt, req.Model, req.TaskType, err)
			continue
		}

		cost, resolved := Price(req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		logging.LLMDebug("groq: call ok model=%s resolved=%s input_tokens=%d output_tokens=%d cost=%v",
			req.Model, resolved, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, cost)

		return Response{
			Content:      resp.content(),
			CostUSD:      cost,
			Model:        req.Model,
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}, nil
	}

	logging.LLMError("groq: call failed model=%s task_type=%s: %v", req.Model, req.TaskType, lastErr)
	return Response{Model: req.Model}, fmt.Errorf("groq call failed: %w", lastErr)
}

func (r *groqResponse) content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Message.Content)
}

func (c *GroqClient) doRequest(ctx context.Context, body groqRequest) (*groqResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed groqResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	return &parsed, nil
}
