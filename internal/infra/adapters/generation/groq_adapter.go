package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/ports/adapter"
	"asklaw-backend/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Generator = (*GroqAdapter)(nil)

// GroqAdapter calls Groq's OpenAI-compatible gateway.
// Base URL defaults to https://api.groq.com/openai/v1 (configurable).
// Chat completions path is the same as OpenAI: /chat/completions
// Authorization: Bearer <GROQ_API_KEY>
type GroqAdapter struct {
	apiKey          string
	base            string
	model           string
	maxContextChars int
	maxOutputTokens int
	client          *http.Client
}

func NewGroqAdapter(apiKey, model, base string, maxContextChars, maxOutputTokens int) (*GroqAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("groq api key empty")
	}
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	if base == "" {
		base = "https://api.groq.com/openai/v1"
	}
	return &GroqAdapter{
		apiKey:          apiKey,
		base:            strings.TrimRight(base, "/"),
		model:           model,
		maxContextChars: maxContextChars,
		maxOutputTokens: maxOutputTokens,
		client:          &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (g *GroqAdapter) Name() string { return "groq" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (g *GroqAdapter) Generate(ctx context.Context, question, contextText string) (string, error) {
	prompt := BuildPrompt(question, contextText, g.maxContextChars)

	reqBody := struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
		MaxTokens   int           `json:"max_tokens"`
	}{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
		MaxTokens:   g.maxOutputTokens,
	}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, g.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		metrics.ObserveGeneration(g.Name(), g.model, 0, 0, int(time.Since(start)/time.Millisecond), false)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		metrics.ObserveGeneration(g.Name(), g.model, 0, 0, int(time.Since(start)/time.Millisecond), false)
		return "", fmt.Errorf("%w: groq http %d", domain.ErrGenerationUnavailable, resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.ObserveGeneration(g.Name(), g.model, 0, 0, int(time.Since(start)/time.Millisecond), false)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationMalformed, err)
	}

	tokensIn := payload.Usage.PromptTokens
	if tokensIn == 0 {
		tokensIn = PromptTokens(g.model, prompt)
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			metrics.ObserveGeneration(g.Name(), g.model, tokensIn, payload.Usage.CompletionTokens,
				int(time.Since(start)/time.Millisecond), true)
			return c.Message.Content, nil
		}
	}
	metrics.ObserveGeneration(g.Name(), g.model, tokensIn, 0, int(time.Since(start)/time.Millisecond), false)
	return "", fmt.Errorf("%w: no choice content", domain.ErrGenerationMalformed)
}
