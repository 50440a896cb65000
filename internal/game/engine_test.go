package game

import (
	"context"
	"errors"
	"testing"
)

type stubGenerator struct {
	idioms []Idiom
	err    error
	calls  int
}

func (g *stubGenerator) Generate(context.Context) (Idiom, error) {
	g.calls++
	if g.err != nil {
		return Idiom{}, g.err
	}
	id := g.idioms[0]
	if len(g.idioms) > 1 {
		g.idioms = g.idioms[1:]
	}
	return id, nil
}

type stubEvaluator struct {
	scores  []int
	err     error
	guesses []string
	// block, when set, is waited on before answering.
	block   chan struct{}
	started chan struct{}
}

func (e *stubEvaluator) Evaluate(_ context.Context, _, guess string) (int, error) {
	if e.started != nil {
		e.started <- struct{}{}
	}
	if e.block != nil {
		<-e.block
	}
	if e.err != nil {
		return 0, e.err
	}
	e.guesses = append(e.guesses, guess)
	s := e.scores[0]
	e.scores = e.scores[1:]
	return s, nil
}

func newReadySession(t *testing.T, eval Evaluator) *Session {
	t.Helper()
	s := New(&stubGenerator{idioms: []Idiom{{Phrase: "to milk the hedgehog", Meaning: "to do something pointless"}}}, eval)
	if _, err := s.StartNew(context.Background()); err != nil {
		t.Fatalf("StartNew() error = %v", err)
	}
	return s
}

func checkInvariants(t *testing.T, s *Session) {
	t.Helper()
	st := s.Snapshot().State
	if st.AttemptCount != len(st.History) {
		t.Fatalf("attemptCount %d != len(history) %d", st.AttemptCount, len(st.History))
	}
	best := 0
	for _, a := range st.History {
		if a.Score > best {
			best = a.Score
		}
	}
	if st.BestScore != best {
		t.Fatalf("bestScore %d != max(history) %d", st.BestScore, best)
	}
}

func TestNewSessionIsEmpty(t *testing.T) {
	s := New(&stubGenerator{}, &stubEvaluator{})
	snap := s.Snapshot()
	if snap.Phase != PhaseEmpty || snap.Idiom != nil || len(snap.State.History) != 0 {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}
	if s.ID == "" {
		t.Fatal("expected a generated session id")
	}
	if _, err := s.SubmitGuess(context.Background(), "anything"); !errors.Is(err, ErrNoIdiom) {
		t.Fatalf("expected ErrNoIdiom, got %v", err)
	}
	if _, err := s.Forfeit(); !errors.Is(err, ErrNoIdiom) {
		t.Fatalf("expected ErrNoIdiom, got %v", err)
	}
}

func TestSequentialGuessesTrackBestScore(t *testing.T) {
	eval := &stubEvaluator{scores: []int{40, 70, 55}}
	s := newReadySession(t, eval)

	for _, g := range []string{"first", "second", "third"} {
		if _, err := s.SubmitGuess(context.Background(), g); err != nil {
			t.Fatalf("SubmitGuess(%q) error = %v", g, err)
		}
		checkInvariants(t, s)
	}

	st := s.Snapshot().State
	if st.BestScore != 70 || st.AttemptCount != 3 || len(st.History) != 3 {
		t.Fatalf("unexpected state %+v", st)
	}
	want := []Attempt{{Text: "first", Score: 40}, {Text: "second", Score: 70}, {Text: "third", Score: 55}}
	for i, a := range st.History {
		if a != want[i] {
			t.Fatalf("history[%d] = %+v, want %+v", i, a, want[i])
		}
	}
	if st.Revealed {
		t.Fatal("expected meaning to stay hidden")
	}
}

func TestHighScoreReveals(t *testing.T) {
	s := newReadySession(t, &stubEvaluator{scores: []int{90}})
	out, err := s.SubmitGuess(context.Background(), "pointless effort")
	if err != nil {
		t.Fatalf("SubmitGuess() error = %v", err)
	}
	if !out.Revealed || out.Meaning != "to do something pointless" || out.Notice == "" {
		t.Fatalf("expected reveal with meaning and notice, got %+v", out)
	}
	snap := s.Snapshot()
	if !snap.State.Revealed || snap.Phase != PhaseRevealed {
		t.Fatalf("expected revealed phase, got %+v", snap)
	}
	checkInvariants(t, s)
}

func TestCustomRevealThreshold(t *testing.T) {
	s := New(&stubGenerator{idioms: []Idiom{{Phrase: "p", Meaning: "m"}}}, &stubEvaluator{scores: []int{75}}, WithRevealThreshold(75), WithID("fixed"))
	if _, err := s.StartNew(context.Background()); err != nil {
		t.Fatalf("StartNew() error = %v", err)
	}
	out, _ := s.SubmitGuess(context.Background(), "g")
	if !out.Revealed {
		t.Fatal("expected reveal at custom threshold")
	}
	if s.ID != "fixed" {
		t.Fatalf("expected fixed id, got %q", s.ID)
	}
}

func TestGuessAfterRevealIsNoop(t *testing.T) {
	eval := &stubEvaluator{scores: []int{95, 10}}
	s := newReadySession(t, eval)
	_, _ = s.SubmitGuess(context.Background(), "exactly")

	if _, err := s.SubmitGuess(context.Background(), "again"); !errors.Is(err, ErrRevealed) || !errors.Is(err, ErrIgnored) {
		t.Fatalf("expected ErrRevealed, got %v", err)
	}
	if n := len(s.Snapshot().State.History); n != 1 {
		t.Fatalf("expected history unchanged, got %d entries", n)
	}
	if len(eval.guesses) != 1 {
		t.Fatalf("expected evaluator not called after reveal, got %v", eval.guesses)
	}
}

func TestBlankGuessIsNoop(t *testing.T) {
	eval := &stubEvaluator{}
	s := newReadySession(t, eval)
	for _, g := range []string{"", "   ", "\t\n"} {
		if _, err := s.SubmitGuess(context.Background(), g); !errors.Is(err, ErrBlankGuess) {
			t.Fatalf("SubmitGuess(%q): expected ErrBlankGuess, got %v", g, err)
		}
	}
	if len(s.Snapshot().State.History) != 0 {
		t.Fatal("expected empty history")
	}
}

func TestGuessIsTrimmedAndNormalized(t *testing.T) {
	eval := &stubEvaluator{scores: []int{10}}
	s := newReadySession(t, eval)
	// "e" + combining acute accent composes to "é".
	if _, err := s.SubmitGuess(context.Background(), "  cafe\u0301  "); err != nil {
		t.Fatalf("SubmitGuess() error = %v", err)
	}
	if got := s.Snapshot().State.History[0].Text; got != "caf\u00e9" {
		t.Fatalf("expected normalized guess, got %q", got)
	}
}

func TestForfeit(t *testing.T) {
	s := newReadySession(t, &stubEvaluator{scores: []int{60}})
	_, _ = s.SubmitGuess(context.Background(), "close-ish")

	out, err := s.Forfeit()
	if err != nil {
		t.Fatalf("Forfeit() error = %v", err)
	}
	if !out.Revealed || out.Attempt.Text != ForfeitMarker || out.Attempt.Score != 0 || !out.Attempt.Forfeit {
		t.Fatalf("unexpected forfeit outcome %+v", out)
	}
	st := s.Snapshot().State
	if !st.Revealed || st.AttemptCount != 2 || st.BestScore != 60 {
		t.Fatalf("unexpected state after forfeit %+v", st)
	}
	checkInvariants(t, s)

	if _, err := s.Forfeit(); !errors.Is(err, ErrRevealed) {
		t.Fatalf("expected second forfeit to be ignored, got %v", err)
	}
	if n := len(s.Snapshot().State.History); n != 2 {
		t.Fatalf("expected history unchanged after ignored forfeit, got %d", n)
	}
}

func TestUnparseableScoreRecordedAsZero(t *testing.T) {
	// The evaluator maps "unknown" to 0; the controller records it like any score.
	s := newReadySession(t, &stubEvaluator{scores: []int{0}})
	if _, err := s.SubmitGuess(context.Background(), "no clue"); err != nil {
		t.Fatalf("SubmitGuess() error = %v", err)
	}
	st := s.Snapshot().State
	if len(st.History) != 1 || st.History[0].Score != 0 || st.BestScore != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestEvaluatorFailureLeavesStateUnchanged(t *testing.T) {
	boom := errors.New("provider down")
	eval := &stubEvaluator{scores: []int{50}}
	s := newReadySession(t, eval)
	_, _ = s.SubmitGuess(context.Background(), "ok")

	eval.err = boom
	if _, err := s.SubmitGuess(context.Background(), "fails"); !errors.Is(err, boom) {
		t.Fatalf("expected evaluator error, got %v", err)
	}
	snap := s.Snapshot()
	if snap.State.AttemptCount != 1 || snap.State.BestScore != 50 || snap.LastError == nil {
		t.Fatalf("unexpected snapshot after failure %+v", snap)
	}
	if snap.InFlight {
		t.Fatal("in-flight flag must be cleared after failure")
	}
}

func TestStartNewResetsEvenAfterReveal(t *testing.T) {
	gen := &stubGenerator{idioms: []Idiom{{Phrase: "one", Meaning: "first"}, {Phrase: "two", Meaning: "second"}}}
	s := New(gen, &stubEvaluator{scores: []int{99}})
	_, _ = s.StartNew(context.Background())
	_, _ = s.SubmitGuess(context.Background(), "first")
	if !s.Snapshot().State.Revealed {
		t.Fatal("setup: expected reveal")
	}

	id, err := s.StartNew(context.Background())
	if err != nil {
		t.Fatalf("StartNew() error = %v", err)
	}
	snap := s.Snapshot()
	if id.Phrase != "two" || snap.Idiom.Phrase != "two" {
		t.Fatalf("expected new idiom, got %+v", snap.Idiom)
	}
	st := snap.State
	if st.AttemptCount != 0 || st.BestScore != 0 || st.Revealed || len(st.History) != 0 || snap.Notice != "" {
		t.Fatalf("expected fresh state, got %+v", snap)
	}
	if snap.Phase != PhaseReady {
		t.Fatalf("expected ready phase, got %s", snap.Phase)
	}
}

func TestStartNewFailureKeepsPriorIdiom(t *testing.T) {
	gen := &stubGenerator{idioms: []Idiom{{Phrase: "kept", Meaning: "kept meaning"}}}
	s := New(gen, &stubEvaluator{scores: []int{30, 45}})
	_, _ = s.StartNew(context.Background())
	_, _ = s.SubmitGuess(context.Background(), "guess")

	gen.err = errors.New("could not parse provider output")
	if _, err := s.StartNew(context.Background()); err == nil {
		t.Fatal("expected generation error")
	}
	snap := s.Snapshot()
	if snap.Phase != PhaseError {
		t.Fatalf("expected error phase, got %s", snap.Phase)
	}
	if snap.Idiom == nil || snap.Idiom.Phrase != "kept" || snap.State.AttemptCount != 1 {
		t.Fatalf("expected prior session retained, got %+v", snap)
	}
	// The retained idiom is still playable.
	if _, err := s.SubmitGuess(context.Background(), "another"); err != nil {
		t.Fatalf("SubmitGuess() after failed refresh error = %v", err)
	}
	if s.Snapshot().Phase != PhaseReady {
		t.Fatalf("expected ready phase after successful guess")
	}
}

func TestStartNewFailureOnEmptySession(t *testing.T) {
	s := New(&stubGenerator{err: errors.New("down")}, &stubEvaluator{})
	if _, err := s.StartNew(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	snap := s.Snapshot()
	if snap.Idiom != nil || snap.Phase != PhaseError {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestConcurrentActionsRejectedWhileInFlight(t *testing.T) {
	eval := &stubEvaluator{scores: []int{20}, block: make(chan struct{}), started: make(chan struct{})}
	s := newReadySession(t, eval)

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitGuess(context.Background(), "slow")
		done <- err
	}()
	<-eval.started

	if !s.Snapshot().InFlight {
		t.Fatal("expected in-flight flag while evaluating")
	}
	if _, err := s.SubmitGuess(context.Background(), "fast"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for concurrent guess, got %v", err)
	}
	if _, err := s.StartNew(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for concurrent new idiom, got %v", err)
	}
	if _, err := s.Forfeit(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for concurrent forfeit, got %v", err)
	}

	close(eval.block)
	if err := <-done; err != nil {
		t.Fatalf("slow guess error = %v", err)
	}
	st := s.Snapshot().State
	if len(st.History) != 1 || st.History[0].Text != "slow" {
		t.Fatalf("expected only the first guess recorded, got %+v", st.History)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newReadySession(t, &stubEvaluator{scores: []int{10}})
	_, _ = s.SubmitGuess(context.Background(), "g")
	snap := s.Snapshot()
	snap.State.History[0].Score = 100
	snap.Idiom.Meaning = "tampered"
	again := s.Snapshot()
	if again.State.History[0].Score != 10 || again.Idiom.Meaning != "to do something pointless" {
		t.Fatalf("snapshot mutation leaked into session: %+v", again)
	}
}
