// internal/provider/provider.go
//
// Text-Generation Provider abstraction.
// Responsibilities:
//   - Define the two logical provider operations used by the game
//     (idiom generation and guess scoring) over rendered prompts.
//   - Classify every transport, timeout or provider-side failure as ErrUnavailable.
//   - Build the configured adapter (OpenAI or Anthropic) from config.Config.
//
// Adapters never retry; the player retries by asking again.

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/robalobadob/idioms/apps/go-server/internal/config"
	"github.com/robalobadob/idioms/apps/go-server/internal/prompts"
)

// ErrUnavailable covers network, transport, timeout and provider-side failures.
var ErrUnavailable = errors.New("text generation provider unavailable")

// DefaultTimeout bounds a single provider call when no timeout is configured.
const DefaultTimeout = 20 * time.Second

// Provider is the external text-completion service.
//
// CompleteIdiomGeneration returns raw text expected to hold a JSON object
// {"idiom": ..., "meaning": ...}. CompleteGuessScoring returns raw text expected
// to be a bare integer 0..100. Neither validates the shape of the reply.
type Provider interface {
	CompleteIdiomGeneration(ctx context.Context, p prompts.Prompt) (string, error)
	CompleteGuessScoring(ctx context.Context, p prompts.Prompt) (string, error)
}

// unavailable wraps a failure so callers can match it with errors.Is(err, ErrUnavailable).
func unavailable(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
}

// withTimeout applies d (or DefaultTimeout) on top of ctx.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// New builds the adapter selected by cfg.Provider.
// httpClient may be nil; tests pass httptest clients here.
func New(cfg config.Config, httpClient *http.Client) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.ProviderOpenAI, "":
		p, err := NewOpenAI(OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			IdiomModel: cfg.OpenAIIdiomModel,
			ScoreModel: cfg.OpenAIScoreModel,
			Timeout:    cfg.ProviderTimeout,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderAnthropic:
		p, err := NewAnthropic(AnthropicConfig{
			APIKey:     cfg.AnthropicKey,
			BaseURL:    cfg.AnthropicBaseURL,
			Model:      cfg.AnthropicModel,
			Timeout:    cfg.ProviderTimeout,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", cfg.Provider)
	}
}
