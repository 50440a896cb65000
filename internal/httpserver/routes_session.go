// internal/httpserver/routes_session.go
//
// HTTP routes for server-hosted play sessions.
// Exposes four endpoints under /session:
//   - POST /session/new     → fetch a new idiom (creates or reuses the visitor's session)
//   - GET  /session         → current session view
//   - POST /session/guess   → score a guess against the hidden meaning
//   - POST /session/forfeit → give up and reveal the meaning
//
// Each visitor owns one session, found through the visitor cookie.
// The meaning never leaves the server until it has been revealed.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idioms/apps/go-server/internal/game"
	"github.com/robalobadob/idioms/apps/go-server/internal/scoring"
	"github.com/robalobadob/idioms/apps/go-server/internal/store"
)

const visitorCookieName = "idioms_visitor"

// mountSessions registers all /session routes.
func (s *Server) mountSessions(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleSessionGet)
		r.Post("/new", s.handleSessionNew)
		r.Post("/guess", s.handleSessionGuess)
		r.Post("/forfeit", s.handleSessionForfeit)
	})
}

// ensureVisitorID returns the visitor cookie value, issuing a new one if absent.
func (s *Server) ensureVisitorID(w http.ResponseWriter, r *http.Request) string {
	if id := visitorID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: func() http.SameSite {
			if s.opts.SecureCookies {
				return http.SameSiteNoneMode
			}
			return http.SameSiteLaxMode
		}(),
		Expires: time.Now().Add(30 * 24 * time.Hour),
	})
	return id
}

// visitorID reads the visitor cookie without issuing one.
func visitorID(r *http.Request) string {
	if c, err := r.Cookie(visitorCookieName); err == nil {
		return c.Value
	}
	return ""
}

// sessionFor looks up the caller's session.
func (s *Server) sessionFor(r *http.Request) (*game.Session, error) {
	id := visitorID(r)
	if id == "" {
		return nil, store.ErrNotFound
	}
	return s.store.Get(r.Context(), id)
}

// -----------------------------------------------------------------------------
// views

// attemptView is one history row; Band is the coarse label for Score.
type attemptView struct {
	Guess   string `json:"guess"`
	Score   int    `json:"score"`
	Band    string `json:"band"`
	Forfeit bool   `json:"forfeit,omitempty"`
}

// sessionView is what clients see of a session. Meaning stays empty until revealed.
type sessionView struct {
	ID        string        `json:"id"`
	Phase     game.Phase    `json:"phase"`
	Phrase    string        `json:"phrase,omitempty"`
	Meaning   string        `json:"meaning,omitempty"`
	Attempts  int           `json:"attempts"`
	BestScore int           `json:"bestScore"`
	History   []attemptView `json:"history"`
	Revealed  bool          `json:"revealed"`
	Notice    string        `json:"notice,omitempty"`
	LastError string        `json:"lastError,omitempty"`
}

func viewOf(snap game.Snapshot) sessionView {
	v := sessionView{
		ID:        snap.ID,
		Phase:     snap.Phase,
		Attempts:  snap.State.AttemptCount,
		BestScore: snap.State.BestScore,
		History:   make([]attemptView, 0, len(snap.State.History)),
		Revealed:  snap.State.Revealed,
		Notice:    snap.Notice,
	}
	if snap.Idiom != nil {
		v.Phrase = snap.Idiom.Phrase
		if snap.State.Revealed {
			v.Meaning = snap.Idiom.Meaning
		}
	}
	for _, a := range snap.State.History {
		v.History = append(v.History, attemptView{
			Guess:   a.Text,
			Score:   a.Score,
			Band:    string(scoring.BandFor(a.Score)),
			Forfeit: a.Forfeit,
		})
	}
	if snap.LastError != nil {
		v.LastError = snap.LastError.Error()
	}
	return v
}

// -----------------------------------------------------------------------------
// GET /session

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(r)
	if err != nil {
		writeError(w, statusFor(err), "no session")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess.Snapshot()))
}

// -----------------------------------------------------------------------------
// POST /session/new

// handleSessionNew reuses the visitor's session (so its in-flight guard applies)
// or creates one, then asks it for a new idiom.
func (s *Server) handleSessionNew(w http.ResponseWriter, r *http.Request) {
	vid := s.ensureVisitorID(w, r)

	sess, err := s.store.Get(r.Context(), vid)
	if errors.Is(err, store.ErrNotFound) {
		sess = game.New(s.gen, s.eval, game.WithRevealThreshold(s.opts.RevealThreshold))
		if err := s.store.Save(r.Context(), vid, sess); err != nil {
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	if _, err := sess.StartNew(r.Context()); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("start new idiom")
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess.Snapshot()))
}

// -----------------------------------------------------------------------------
// POST /session/guess

// sessionGuessReq is the request payload for /session/guess.
type sessionGuessReq struct {
	Guess string `json:"guess"`
}

// actionRes is returned by /session/guess and /session/forfeit.
type actionRes struct {
	Attempt  attemptView `json:"attempt"`
	Revealed bool        `json:"revealed"`
	Meaning  string      `json:"meaning,omitempty"`
	Notice   string      `json:"notice,omitempty"`
	Session  sessionView `json:"session"`
}

func actionOf(out game.Outcome, snap game.Snapshot) actionRes {
	return actionRes{
		Attempt: attemptView{
			Guess:   out.Attempt.Text,
			Score:   out.Attempt.Score,
			Band:    string(scoring.BandFor(out.Attempt.Score)),
			Forfeit: out.Attempt.Forfeit,
		},
		Revealed: out.Revealed,
		Meaning:  out.Meaning,
		Notice:   out.Notice,
		Session:  viewOf(snap),
	}
}

// handleSessionGuess scores one guess. Ignored actions answer 409 and leave state untouched.
func (s *Server) handleSessionGuess(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(r)
	if err != nil {
		writeError(w, statusFor(err), "no session")
		return
	}
	var p sessionGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	out, err := sess.SubmitGuess(r.Context(), p.Guess)
	if err != nil {
		if !errors.Is(err, game.ErrIgnored) {
			log.Warn().Err(err).Str("session", sess.ID).Msg("submit guess")
		}
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, actionOf(out, sess.Snapshot()))
}

// -----------------------------------------------------------------------------
// POST /session/forfeit

func (s *Server) handleSessionForfeit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(r)
	if err != nil {
		writeError(w, statusFor(err), "no session")
		return
	}
	out, err := sess.Forfeit()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, actionOf(out, sess.Snapshot()))
}
