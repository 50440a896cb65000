// internal/game/types.go
//
// Core type definitions for one idiom guessing session.
// Defines:
//   - Idiom: the fabricated phrase and its meaning for one round.
//   - Attempt: one scored guess or a forfeit.
//   - State: everything the player has done against the current idiom.
//   - Phase: coarse controller state (empty/loading/ready/revealed/error).
//   - Generator / Evaluator: the two provider-backed collaborators.

package game

import (
	"context"
	"errors"
)

// Idiom is the fabricated phrase-and-meaning pair presented for one round.
type Idiom struct {
	Phrase  string `json:"idiom" yaml:"idiom"`
	Meaning string `json:"meaning" yaml:"meaning"`
}

// Attempt is one evaluated guess, or the forfeit sentinel.
type Attempt struct {
	Text    string `json:"guess"`
	Score   int    `json:"score"`
	Forfeit bool   `json:"forfeit,omitempty"`
}

// ForfeitMarker is the text recorded for a forfeit attempt.
const ForfeitMarker = "gave up"

// DefaultRevealThreshold is the score at or above which the meaning is revealed.
const DefaultRevealThreshold = 90

// State is the per-idiom session data.
//
// Invariants:
//   - AttemptCount == len(History)
//   - BestScore == max(0, scores in History)
//   - Revealed is set by a forfeit or a score >= threshold, and cleared only by a new idiom.
type State struct {
	Idiom        *Idiom    `json:"-"`
	AttemptCount int       `json:"attempts"`
	BestScore    int       `json:"bestScore"`
	History      []Attempt `json:"history"`
	Revealed     bool      `json:"revealed"`
}

// Phase is the controller state.
type Phase string

const (
	PhaseEmpty    Phase = "empty"    // no idiom loaded yet
	PhaseLoading  Phase = "loading"  // new idiom requested
	PhaseReady    Phase = "ready"    // accepting guesses
	PhaseRevealed Phase = "revealed" // meaning disclosed; only a new idiom moves on
	PhaseError    Phase = "error"    // last idiom request failed; prior data kept
)

// Generator produces a new idiom. See internal/idiom.
type Generator interface {
	Generate(ctx context.Context) (Idiom, error)
}

// Evaluator scores a guess against the true meaning. See internal/scoring.
type Evaluator interface {
	Evaluate(ctx context.Context, trueMeaning, candidateGuess string) (int, error)
}

// ErrIgnored is wrapped by every reason an action is dropped without touching state.
var ErrIgnored = errors.New("action ignored")

var (
	ErrBlankGuess = ignored("guess is empty")
	ErrRevealed   = ignored("meaning already revealed")
	ErrBusy       = ignored("a request is already in flight")
	ErrNoIdiom    = ignored("no idiom loaded")
)

type ignoredError struct{ msg string }

func ignored(msg string) error { return &ignoredError{msg: msg} }

func (e *ignoredError) Error() string        { return e.msg }
func (e *ignoredError) Is(target error) bool { return target == ErrIgnored }
