package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/robalobadob/idioms/apps/go-server/internal/prompts"
)

// AnthropicConfig configures the Anthropic messages adapter.
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string // default claude-sonnet-4-20250514
	MaxTokens  int64  // default 512
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Anthropic serves both operations from a single Claude model.
type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
}

// NewAnthropic validates cfg and builds the adapter. SDK retries are disabled.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("anthropic api key is required")
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
	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}, nil
}

// CompleteIdiomGeneration implements Provider.
func (a *Anthropic) CompleteIdiomGeneration(ctx context.Context, p prompts.Prompt) (string, error) {
	return a.complete(ctx, p)
}

// CompleteGuessScoring implements Provider.
func (a *Anthropic) CompleteGuessScoring(ctx context.Context, p prompts.Prompt) (string, error) {
	return a.complete(ctx, p)
}

func (a *Anthropic) complete(ctx context.Context, p prompts.Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
	}
	// The messages API needs a user turn; a system-only prompt becomes the user turn.
	user := p.User
	if user == "" {
		user = p.System
	} else if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}
	params.Messages = []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", unavailable("anthropic", err)
	}
	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}
