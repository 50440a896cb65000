// internal/idiom/generator.go
//
// Phrase Generator: asks the provider to invent an idiom that does not exist.
// Responsibilities:
//   - Render the generation prompt and issue exactly one provider request.
//   - Parse the structured reply {"idiom": ..., "meaning": ...}, tolerating code fences
//     and chatter around the JSON object.
//   - Classify failures: ErrGeneration for unusable output, provider.ErrUnavailable
//     (passed through) for transport failures.
//
// No retries are performed here.

package idiom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idioms/apps/go-server/internal/game"
	"github.com/robalobadob/idioms/apps/go-server/internal/prompts"
	"github.com/robalobadob/idioms/apps/go-server/internal/provider"
)

// ErrGeneration means the provider answered but the idiom could not be parsed.
var ErrGeneration = errors.New("could not parse provider output")

// Generator implements game.Generator over a provider.
type Generator struct {
	provider provider.Provider
	prompts  *prompts.Set
}

// NewGenerator wires a provider and prompt set.
func NewGenerator(p provider.Provider, ps *prompts.Set) *Generator {
	return &Generator{provider: p, prompts: ps}
}

// Generate returns a freshly invented idiom.
func (g *Generator) Generate(ctx context.Context) (game.Idiom, error) {
	prompt, err := g.prompts.Generation()
	if err != nil {
		return game.Idiom{}, err
	}
	raw, err := g.provider.CompleteIdiomGeneration(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("idiom generation request failed")
		return game.Idiom{}, err
	}
	id, err := Parse(raw)
	if err != nil {
		log.Warn().Str("raw", truncate(raw, 240)).Msg("idiom generation reply unusable")
		return game.Idiom{}, err
	}
	return id, nil
}

// Parse extracts an Idiom from raw provider text.
// Both fields must be present and non-blank.
func Parse(raw string) (game.Idiom, error) {
	var parsed struct {
		Idiom   string `json:"idiom"`
		Meaning string `json:"meaning"`
	}
	if err := json.Unmarshal([]byte(extractJSONPayload(raw)), &parsed); err != nil {
		return game.Idiom{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	id := game.Idiom{
		Phrase:  strings.TrimSpace(parsed.Idiom),
		Meaning: strings.TrimSpace(parsed.Meaning),
	}
	if id.Phrase == "" || id.Meaning == "" {
		return game.Idiom{}, fmt.Errorf("%w: missing idiom or meaning", ErrGeneration)
	}
	return id, nil
}

// extractJSONPayload strips markdown fences and anything outside the outermost braces.
func extractJSONPayload(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "{}"
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return trimmed[start : end+1]
	}
	return trimmed
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
