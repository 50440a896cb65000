// internal/scoring/evaluator.go
//
// Guess Evaluator: asks the provider how close a guess is to the true meaning.
// Responsibilities:
//   - Render the scoring prompt and issue exactly one provider request.
//   - Parse the reply as an integer score.
//   - Fail open to 0 when the reply is not a number (ErrParse is logged, never returned).
//   - Optionally clamp out-of-range numbers into [0,100].
//
// Transport failures pass through as provider.ErrUnavailable.

package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idioms/apps/go-server/internal/prompts"
	"github.com/robalobadob/idioms/apps/go-server/internal/provider"
)

// ErrParse marks a scoring reply that held no integer. Evaluate maps it to score 0.
var ErrParse = errors.New("scoring reply is not an integer")

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Evaluator implements game.Evaluator over a provider.
type Evaluator struct {
	provider provider.Provider
	prompts  *prompts.Set
	clamp    bool
}

// Option tunes an Evaluator.
type Option func(*Evaluator)

// WithClamp enables or disables clamping provider scores into [0,100].
func WithClamp(on bool) Option {
	return func(e *Evaluator) { e.clamp = on }
}

// NewEvaluator wires a provider and prompt set. Clamping is on by default.
func NewEvaluator(p provider.Provider, ps *prompts.Set, opts ...Option) *Evaluator {
	e := &Evaluator{provider: p, prompts: ps, clamp: true}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate scores candidateGuess against trueMeaning.
func (e *Evaluator) Evaluate(ctx context.Context, trueMeaning, candidateGuess string) (int, error) {
	prompt, err := e.prompts.Scoring(trueMeaning, candidateGuess)
	if err != nil {
		return 0, err
	}
	raw, err := e.provider.CompleteGuessScoring(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("guess scoring request failed")
		return 0, err
	}
	score, err := ParseScore(raw)
	if err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("scoring reply defaulted to 0")
		return 0, nil
	}
	if e.clamp {
		score = Clamp(score)
	}
	return score, nil
}

// ParseScore reads a leading integer the way a lenient integer parser would:
// surrounding whitespace is skipped, an optional sign is accepted, and digits are
// read until the first non-digit ("85%" → 85, "85.5" → 85). Anything else is ErrParse.
func ParseScore(raw string) (int, error) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	return n, nil
}

// Clamp forces score into [MinScore, MaxScore].
func Clamp(score int) int {
	switch {
	case score < MinScore:
		return MinScore
	case score > MaxScore:
		return MaxScore
	}
	return score
}
