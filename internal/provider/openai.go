package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAICompatible talks to any chat-completions endpoint that follows
// OpenAI's wire format — OpenAI itself, and the teacher's GitHub Models
// alias target, which is OpenAI-compatible end to end. Grounded on
// ai/providers/openai.Client.GenerateResponse, trimmed to the single
// non-streaming call path the dispatcher needs.
type OpenAICompatible struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	name       string
}

// NewOpenAICompatible builds a client against baseURL (default
// https://api.openai.com/v1) authenticated with apiKey, reporting as name
// in Response.Provider (e.g. "openai", "github_models").
func NewOpenAICompatible(name, baseURL, apiKey string) *OpenAICompatible {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAICompatible{
		httpClient: &http.Client{Timeout: 180 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		name:       name,
	}
}

func (c *OpenAICompatible) Name() string { return c.name }

type openAIChatRequest struct {
	Model       string             `json:"model"`
	Messages    []openAIChatMsg    `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
}

type openAIChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIChatMsg `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAICompatible) Complete(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, classifyHTTPError(c.name, 401, "API key not configured")
	}

	body, err := json.Marshal(openAIChatRequest{
		Model:       req.Model,
		Messages:    []openAIChatMsg{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("provider %s: encode request: %w", c.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("provider %s: build request: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, classifyTransportError(c.name, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, classifyTransportError(c.name, "read response", err)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return Response{}, classifyHTTPError(c.name, resp.StatusCode, "")
		}
		return Response{}, fmt.Errorf("provider %s: decode response: %w", c.name, err)
	}
	if resp.StatusCode >= 400 {
		msg := ""
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return Response{}, classifyHTTPError(c.name, resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, fmt.Errorf("provider %s: empty choices in response", c.name)
	}

	return Response{
		Text:             parsed.Choices[0].Message.Content,
		Provider:         c.name,
		Model:            req.Model,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		LatencyMS:        time.Since(start).Milliseconds(),
	}, nil
}
