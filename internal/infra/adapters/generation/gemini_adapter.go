package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/ports/adapter"
	"asklaw-backend/internal/infra/metrics"
)

var _ adapter.Generator = (*GeminiAdapter)(nil)

// GeminiAdapter generates answers through the official Gemini SDK.
type GeminiAdapter struct {
	client          *genai.Client
	model           string
	maxContextChars int
	maxOutputTokens int
}

func NewGeminiAdapter(ctx context.Context, apiKey, model string, maxContextChars, maxOutputTokens int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{
		client:          c,
		model:           model,
		maxContextChars: maxContextChars,
		maxOutputTokens: maxOutputTokens,
	}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) Generate(ctx context.Context, question, contextText string) (string, error) {
	prompt := BuildPrompt(question, contextText, g.maxContextChars)

	start := time.Now()
	chat, err := g.client.Chats.Create(
		ctx,
		g.model,
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(g.maxOutputTokens),
		},
		nil,
	)
	if err != nil {
		metrics.ObserveGeneration(g.Name(), g.model, 0, 0, int(time.Since(start)/time.Millisecond), false)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	latency := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveGeneration(g.Name(), g.model, 0, 0, latency, false)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}

	tokensIn, tokensOut := 0, 0
	if resp != nil && resp.UsageMetadata != nil {
		tokensIn = int(resp.UsageMetadata.PromptTokenCount)
		tokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	if tokensIn == 0 {
		tokensIn = PromptTokens(g.model, prompt)
	}

	if text == "" {
		metrics.ObserveGeneration(g.Name(), g.model, tokensIn, 0, latency, false)
		return "", fmt.Errorf("%w: empty candidate text", domain.ErrGenerationMalformed)
	}
	metrics.ObserveGeneration(g.Name(), g.model, tokensIn, tokensOut, latency, true)
	return text, nil
}
