package provider

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Gemini talks to Vertex AI / the Gemini API via the google.golang.org/genai
// SDK, grounded on ai/providers/gemini.Client and the same SDK usage
// pattern as internal/rag/vector.GenAIEmbedder.
type Gemini struct {
	client *genai.Client
	name   string
}

// NewGemini wraps an already-configured *genai.Client. name distinguishes
// "vertex_ai" deployments from the public "gemini" API in Response.Provider.
func NewGemini(client *genai.Client, name string) *Gemini {
	if name == "" {
		name = "vertex_ai"
	}
	return &Gemini{client: client, name: name}
}

func (g *Gemini) Name() string { return g.name }

func (g *Gemini) Complete(ctx context.Context, req Request) (Response, error) {
	if g.client == nil {
		return Response{}, classifyHTTPError(g.name, 401, "client not configured")
	}

	start := time.Now()
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		t := req.Temperature
		cfg.Temperature = &t
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		// The genai SDK doesn't expose a structured status code the way
		// the REST providers' bodies do; treat backend failures as
		// transient (quota/5xx are overwhelmingly the cause) rather than
		// silently never retrying Gemini calls.
		return Response{}, classifyTransportError(g.name, "generate content", err)
	}
	text := result.Text()
	if text == "" {
		return Response{}, fmt.Errorf("provider %s: empty response text", g.name)
	}

	var promptTokens, completionTokens int
	if result.UsageMetadata != nil {
		promptTokens = int(result.UsageMetadata.PromptTokenCount)
		completionTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	return Response{
		Text:             text,
		Provider:         g.name,
		Model:            req.Model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		LatencyMS:        time.Since(start).Milliseconds(),
	}, nil
}
