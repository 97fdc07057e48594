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

// AnthropicBaseURL is Anthropic's default Messages API endpoint.
const AnthropicBaseURL = "https://api.anthropic.com/v1"

// anthropicAPIVersion is the header Anthropic's Messages API requires.
const anthropicAPIVersion = "2023-06-01"

// Anthropic talks to Anthropic's native Messages API, grounded on
// ai/providers/anthropic.Client.GenerateResponse.
type Anthropic struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewAnthropic(baseURL, apiKey string) *Anthropic {
	if baseURL == "" {
		baseURL = AnthropicBaseURL
	}
	return &Anthropic{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *Anthropic) Complete(ctx context.Context, req Request) (Response, error) {
	if a.apiKey == "" {
		return Response{}, classifyHTTPError("anthropic", 401, "API key not configured")
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     req.Model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return Response{}, fmt.Errorf("provider anthropic: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("provider anthropic: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	start := time.Now()
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, classifyTransportError("anthropic", "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, classifyTransportError("anthropic", "read response", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return Response{}, classifyHTTPError("anthropic", resp.StatusCode, "")
		}
		return Response{}, fmt.Errorf("provider anthropic: decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := ""
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return Response{}, classifyHTTPError("anthropic", resp.StatusCode, msg)
	}
	if len(parsed.Content) == 0 {
		return Response{}, fmt.Errorf("provider anthropic: empty content in response")
	}

	return Response{
		Text:             parsed.Content[0].Text,
		Provider:         "anthropic",
		Model:            req.Model,
		PromptTokens:     parsed.Usage.InputTokens,
		CompletionTokens: parsed.Usage.OutputTokens,
		LatencyMS:        time.Since(start).Milliseconds(),
	}, nil
}
