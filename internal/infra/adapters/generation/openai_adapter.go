package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"asklaw-backend/internal/domain"
	"asklaw-backend/internal/domain/ports/adapter"
	"asklaw-backend/internal/infra/metrics"
)

var _ adapter.Generator = (*OpenAIAdapter)(nil)

// OpenAIAdapter generates answers through the official OpenAI SDK.
type OpenAIAdapter struct {
	client          openai.Client
	model           string
	maxContextChars int
	maxOutputTokens int
}

func NewOpenAIAdapter(apiKey, model string, maxContextChars, maxOutputTokens int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAdapter{
		client:          openai.NewClient(option.WithAPIKey(apiKey)),
		model:           model,
		maxContextChars: maxContextChars,
		maxOutputTokens: maxOutputTokens,
	}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) Generate(ctx context.Context, question, contextText string) (string, error) {
	prompt := BuildPrompt(question, contextText, o.maxContextChars)

	start := time.Now()
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.2),
		MaxTokens:   openai.Int(int64(o.maxOutputTokens)),
	})
	latency := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveGeneration(o.Name(), o.model, 0, 0, latency, false)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	tokensIn := int(completion.Usage.PromptTokens)
	if tokensIn == 0 {
		tokensIn = PromptTokens(o.model, prompt)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		metrics.ObserveGeneration(o.Name(), o.model, tokensIn, 0, latency, false)
		return "", fmt.Errorf("%w: no choice content", domain.ErrGenerationMalformed)
	}

	metrics.ObserveGeneration(o.Name(), o.model, tokensIn, int(completion.Usage.CompletionTokens), latency, true)
	return completion.Choices[0].Message.Content, nil
}
