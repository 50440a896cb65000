// internal/httpserver/server.go
//
// HTTP server wiring for the idiom guessing game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request log).
//   - Public endpoints: "/", "/health".
//   - Stateless game endpoints used by the browser client:
//       GET  /generate-idiom → {idiom, meaning}
//       POST /check-guess    → {score}
//     Both answer 500 {message} when the provider fails.
//   - Server-hosted session endpoints (see routes_session.go) for clients that
//     do not keep their own state.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so the visitor cookie works).
//   - Handler timeout is derived from the provider timeout so the provider always
//     gives up first and the client sees a proper JSON error.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idioms/apps/go-server/internal/game"
	"github.com/robalobadob/idioms/apps/go-server/internal/idiom"
	"github.com/robalobadob/idioms/apps/go-server/internal/provider"
	"github.com/robalobadob/idioms/apps/go-server/internal/store"
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	ClientOrigin    string        // default http://localhost:5173
	ProviderTimeout time.Duration // default provider.DefaultTimeout
	RevealThreshold int           // default game.DefaultRevealThreshold
	SecureCookies   bool          // Secure + SameSite=None visitor cookie (cross-site deployments)
}

// Server bundles router, session store and the two provider-backed components.
type Server struct {
	r     *chi.Mux
	store store.Store
	gen   game.Generator
	eval  game.Evaluator
	opts  Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, gen game.Generator, eval game.Evaluator, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = provider.DefaultTimeout
	}
	if opts.RevealThreshold <= 0 {
		opts.RevealThreshold = game.DefaultRevealThreshold
	}
	s := &Server{r: chi.NewRouter(), store: st, gen: gen, eval: eval, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                                      // one log line per request
	s.r.Use(chimw.Recoverer)                                    // recover from panics
	s.r.Use(chimw.Timeout(opts.ProviderTimeout + 5*time.Second)) // bound handler time
	s.r.Use(jsonContentType)                                    // default JSON responses
	s.r.Use(corsFor(opts.ClientOrigin))                         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"idioms-go","endpoints":["/health","GET /generate-idiom","POST /check-guess","/session/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Stateless endpoints; the browser keeps the session state.
	s.r.Get("/generate-idiom", s.handleGenerateIdiom)
	s.r.Post("/check-guess", s.handleCheckGuess)

	// Server-hosted sessions keyed by the visitor cookie.
	s.mountSessions(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("took", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// ------------------------------ GAME ---------------------------------------

// generateRes is the payload of GET /generate-idiom.
type generateRes struct {
	Idiom   string `json:"idiom"`
	Meaning string `json:"meaning"`
}

// handleGenerateIdiom asks the generator for one idiom.
func (s *Server) handleGenerateIdiom(w http.ResponseWriter, r *http.Request) {
	id, err := s.gen.Generate(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("generate idiom")
		writeMessage(w, http.StatusInternalServerError, "Error generating idiom")
		return
	}
	writeJSON(w, http.StatusOK, generateRes{Idiom: id.Phrase, Meaning: id.Meaning})
}

// checkGuessReq/Res payloads for POST /check-guess.
type checkGuessReq struct {
	Meaning string `json:"meaning"`
	Guess   string `json:"guess"`
}
type checkGuessRes struct {
	Score int `json:"score"`
}

// handleCheckGuess scores a guess against a meaning supplied by the client.
func (s *Server) handleCheckGuess(w http.ResponseWriter, r *http.Request) {
	var req checkGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Meaning) == "" || strings.TrimSpace(req.Guess) == "" {
		writeMessage(w, http.StatusBadRequest, "meaning and guess are required")
		return
	}
	score, err := s.eval.Evaluate(r.Context(), req.Meaning, strings.TrimSpace(req.Guess))
	if err != nil {
		log.Error().Err(err).Msg("check guess")
		writeMessage(w, http.StatusInternalServerError, "Error processing request")
		return
	}
	writeJSON(w, http.StatusOK, checkGuessRes{Score: score})
}

// ------------------------------- helpers -----------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeMessage is the {message} error shape of the stateless endpoints.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError is the {error} shape of the session endpoints.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrIgnored):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, idiom.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, provider.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
