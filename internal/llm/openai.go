package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hfarrukh/solaradvisor/internal/metrics"
)

const defaultChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// OpenAIChatClient calls an OpenAI-compatible /chat/completions endpoint.
// Groq and other compatible providers work via the endpoint override.
type OpenAIChatClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func NewOpenAIChatClient(apiKey, model, endpoint string, timeout time.Duration) *OpenAIChatClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if endpoint == "" {
		endpoint = defaultChatCompletionsURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIChatClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *OpenAIChatClient) Name() string { return "openai" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *OpenAIChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	started := time.Now()
	text, reason, err := c.complete(ctx, prompt)
	metrics.ObserveLLMRequest(c.Name(), started, err, reason)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, err
}

func (c *OpenAIChatClient) complete(ctx context.Context, prompt string) (string, string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", "marshal", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", "request", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "transport", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "read", fmt.Errorf("read chat completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "status", fmt.Errorf("chat completion status %d: %s", resp.StatusCode, raw)
	}

	var result chatResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", "decode", fmt.Errorf("decode chat completion response: %w", err)
	}
	if result.Error != nil {
		return "", "api", fmt.Errorf("chat completion error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", "empty", errors.New("no choices in chat completion response")
	}
	return result.Choices[0].Message.Content, "", nil
}
