package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the language-model collaborator the summary pipeline depends
// on. Both calls are single synchronous requests: no retry, failures
// propagate to the caller.
type Client interface {
	// GenerateJSON runs prompt in constrained-JSON mode and returns the raw
	// JSON payload the model produced.
	GenerateJSON(ctx context.Context, prompt string) ([]byte, error)
	// GenerateText runs prompt in free-text mode.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// OllamaClient talks to a local ollama server.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
	Stream   bool           `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// GenerateJSON uses the chat endpoint with format=json and temperature 0 so
// extraction output is deterministic and machine-parseable.
func (c *OllamaClient) GenerateJSON(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Format:   "json",
		Options:  map[string]any{"temperature": 0},
	}

	var resp chatResponse
	if err := c.post(ctx, "/api/chat", reqBody, &resp); err != nil {
		return nil, err
	}
	return []byte(resp.Message.Content), nil
}

func (c *OllamaClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
	}

	var resp generateResponse
	if err := c.post(ctx, "/api/generate", reqBody, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, reqBody any, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return nil
}
