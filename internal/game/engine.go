// internal/game/engine.go
//
// Session Controller for a single idiom guessing session.
// Responsibilities:
//   - Fetch a new idiom and reset the session state (StartNew).
//   - Validate, score and record guesses (SubmitGuess).
//   - Record forfeits (Forfeit) and decide when the meaning is revealed.
//   - Allow at most one outstanding request; anything arriving meanwhile is rejected.
//
// State transitions:
//   empty → loading → ready ⇄ ready → revealed
//   ready/revealed/error → loading on StartNew
//   loading → error when generation fails (previous idiom and history are kept)
//
// Notes:
//   - The mutex is never held across a provider call; the inFlight flag is the guard.
//   - Rejected actions return an error wrapping ErrIgnored and leave state untouched.

package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Session owns one player's state exclusively.
type Session struct {
	ID string

	gen       Generator
	eval      Evaluator
	threshold int
	now       func() time.Time

	mu       sync.Mutex
	state    State
	phase    Phase
	inFlight bool
	lastErr  error
	notice   string
	touched  time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithRevealThreshold overrides DefaultRevealThreshold.
func WithRevealThreshold(n int) Option {
	return func(s *Session) { s.threshold = n }
}

// WithID sets the session identifier (random hex otherwise).
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New constructs an empty session. Call StartNew to load the first idiom.
func New(gen Generator, eval Evaluator, opts ...Option) *Session {
	s := &Session{
		ID:        randomID(),
		gen:       gen,
		eval:      eval,
		threshold: DefaultRevealThreshold,
		now:       time.Now,
		phase:     PhaseEmpty,
		state:     State{History: []Attempt{}},
	}
	for _, o := range opts {
		o(s)
	}
	s.touched = s.now()
	return s
}

// Outcome describes the result of an accepted guess or forfeit.
type Outcome struct {
	Attempt  Attempt
	Revealed bool   // true when this action revealed the meaning
	Meaning  string // set only when Revealed
	Notice   string // user-facing success message, if any
}

// StartNew requests a new idiom and, on success, replaces the session with a fresh state.
// On failure the previous idiom and history are left as they were.
func (s *Session) StartNew(ctx context.Context) (Idiom, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Idiom{}, ErrBusy
	}
	s.inFlight = true
	s.phase = PhaseLoading
	s.touched = s.now()
	s.mu.Unlock()

	id, err := s.gen.Generate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.touched = s.now()
	if err != nil {
		s.phase = PhaseError
		s.lastErr = err
		return Idiom{}, err
	}
	s.state = State{Idiom: &id, History: []Attempt{}}
	s.phase = PhaseReady
	s.lastErr = nil
	s.notice = ""
	return id, nil
}

// SubmitGuess scores text against the current meaning and records the attempt.
// Blank text, a revealed meaning, a missing idiom or a request in flight are ignored.
func (s *Session) SubmitGuess(ctx context.Context, text string) (Outcome, error) {
	guess := normalizeGuess(text)

	s.mu.Lock()
	switch {
	case guess == "":
		s.mu.Unlock()
		return Outcome{}, ErrBlankGuess
	case s.inFlight:
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	case s.state.Idiom == nil:
		s.mu.Unlock()
		return Outcome{}, ErrNoIdiom
	case s.state.Revealed:
		s.mu.Unlock()
		return Outcome{}, ErrRevealed
	}
	s.inFlight = true
	idiom := s.state.Idiom
	s.touched = s.now()
	s.mu.Unlock()

	score, err := s.eval.Evaluate(ctx, idiom.Meaning, guess)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.touched = s.now()
	if err != nil {
		s.lastErr = err
		return Outcome{}, err
	}
	s.lastErr = nil
	if s.phase == PhaseError {
		s.phase = PhaseReady
	}

	a := Attempt{Text: guess, Score: score}
	out := Outcome{Attempt: a}
	s.record(a)
	if score >= s.threshold {
		s.reveal()
		s.notice = fmt.Sprintf("Excellent! The meaning is: %q", idiom.Meaning)
		out.Revealed = true
		out.Meaning = idiom.Meaning
		out.Notice = s.notice
	}
	return out, nil
}

// Forfeit records the forfeit sentinel and reveals the meaning. No provider call is made.
func (s *Session) Forfeit() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.inFlight:
		return Outcome{}, ErrBusy
	case s.state.Idiom == nil:
		return Outcome{}, ErrNoIdiom
	case s.state.Revealed:
		return Outcome{}, ErrRevealed
	}
	s.touched = s.now()
	a := Attempt{Text: ForfeitMarker, Score: 0, Forfeit: true}
	s.record(a)
	s.reveal()
	return Outcome{Attempt: a, Revealed: true, Meaning: s.state.Idiom.Meaning}, nil
}

// record appends a and keeps AttemptCount/BestScore consistent. Caller holds mu.
func (s *Session) record(a Attempt) {
	s.state.History = append(s.state.History, a)
	s.state.AttemptCount = len(s.state.History)
	if a.Score > s.state.BestScore {
		s.state.BestScore = a.Score
	}
}

// reveal marks the meaning as disclosed. Caller holds mu.
func (s *Session) reveal() {
	s.state.Revealed = true
	s.phase = PhaseRevealed
}

// Snapshot is a copy of the session safe to hand to presentation code.
type Snapshot struct {
	ID        string
	Phase     Phase
	Idiom     *Idiom
	State     State
	InFlight  bool
	LastError error
	Notice    string
	Touched   time.Time
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.History = append([]Attempt{}, s.state.History...)
	var id *Idiom
	if s.state.Idiom != nil {
		cp := *s.state.Idiom
		id = &cp
		st.Idiom = id
	}
	return Snapshot{
		ID:        s.ID,
		Phase:     s.phase,
		Idiom:     id,
		State:     st,
		InFlight:  s.inFlight,
		LastError: s.lastErr,
		Notice:    s.notice,
		Touched:   s.touched,
	}
}

// IdleSince reports when the session last changed or received an action.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// normalizeGuess trims whitespace and composes Unicode so equal guesses compare equal.
func normalizeGuess(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
