package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/robalobadob/idioms/apps/go-server/internal/prompts"
)

// OpenAIConfig configures the OpenAI chat completions adapter.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // optional, for OpenAI-compatible gateways
	IdiomModel string // default gpt-4o
	ScoreModel string // default gpt-3.5-turbo
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenAI talks to the chat completions API through the official SDK.
type OpenAI struct {
	client     openai.Client
	idiomModel string
	scoreModel string
	timeout    time.Duration
}

// NewOpenAI validates cfg and builds the adapter. SDK retries are disabled.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("openai api key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.IdiomModel == "" {
		cfg.IdiomModel = string(openai.ChatModelGPT4o)
	}
	if cfg.ScoreModel == "" {
		cfg.ScoreModel = string(openai.ChatModelGPT3_5Turbo)
	}
	return &OpenAI{
		client:     openai.NewClient(opts...),
		idiomModel: cfg.IdiomModel,
		scoreModel: cfg.ScoreModel,
		timeout:    cfg.Timeout,
	}, nil
}

// CompleteIdiomGeneration asks the idiom model for a JSON object.
func (o *OpenAI) CompleteIdiomGeneration(ctx context.Context, p prompts.Prompt) (string, error) {
	params := o.params(o.idiomModel, p)
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
	}
	return o.complete(ctx, params)
}

// CompleteGuessScoring asks the scoring model for a bare number.
func (o *OpenAI) CompleteGuessScoring(ctx context.Context, p prompts.Prompt) (string, error) {
	return o.complete(ctx, o.params(o.scoreModel, p))
}

func (o *OpenAI) params(model string, p prompts.Prompt) openai.ChatCompletionNewParams {
	msgs := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(p.System)}
	if p.User != "" {
		msgs = append(msgs, openai.UserMessage(p.User))
	}
	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
}

func (o *OpenAI) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", unavailable("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", unavailable("openai", errors.New("completion has no choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
