// internal/httpserver/server.go
//
// HTTP server wiring for the CW Simon backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/catalog", "/timing".
//   - Game endpoints (optional auth): /game/new, /game/{id}/...
//   - Daily sequence endpoints (optional auth): mounted under /daily.
//   - Player endpoints (require auth): /auth/me, /settings/me, /keying/profile.
//   - Live keying stream: /keying/ws (websocket).
//
// Notes:
//   - Games live only in the session store; nothing about a game is written to the DB.
//   - Errors are JSON: {"error":"<code>","detail":"..."}.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cwsimon/internal/auth"
	"github.com/robalobadob/cwsimon/internal/config"
	"github.com/robalobadob/cwsimon/internal/keying"
	"github.com/robalobadob/cwsimon/internal/morse"
	"github.com/robalobadob/cwsimon/internal/settings"
	"github.com/robalobadob/cwsimon/internal/store"
	"github.com/robalobadob/cwsimon/internal/timing"
)

var endpoints = []string{
	"/health", "/catalog", "/timing",
	"POST /game/new", "GET /game/{id}", "POST /game/{id}/{action}",
	"/daily", "/auth/*", "/settings/me", "/keying/profile", "/keying/ws",
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Config   *config.Config
	Store    store.Store
	Auth     *auth.Service
	Settings *settings.Store
	Keying   *keying.Store
	// Now is the server clock handed to new sessions; defaults to time.Now.
	Now func() time.Time
}

// Server bundles the router and its collaborators.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	store    store.Store
	auth     *auth.Service
	settings *settings.Store
	keying   *keying.Store
	now      func() time.Time
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      d.Config,
		store:    d.Store,
		auth:     d.Auth,
		settings: d.Settings,
		keying:   d.Keying,
		now:      d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)       // zerolog line per request
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(corsFor(s.cfg.ClientOrigin))

	// Long-lived stream, outside the handler timeout.
	s.r.With(s.auth.Optional()).Get("/keying/ws", s.handleKeyingWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.RequestTimeout)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"service": "cwsimon-go", "endpoints": endpoints})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Get("/catalog", s.handleCatalog)
		r.Get("/timing", s.handleTiming)

		// Game endpoints: OPTIONAL AUTH (guests can play; players get their settings)
		r.With(s.auth.Optional()).Route("/game", s.mountGame)

		// Daily sequence: OPTIONAL AUTH
		s.mountDaily(r.With(s.auth.Optional()))

		// Auth + player data
		s.mountPlayerRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" "+r.URL.Path)
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ reference ----------------------------------

// handleCatalog lists every supported symbol with its code and pattern.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	type catalogEntry struct {
		morse.Entry
		Pattern []int `json:"pattern"`
	}
	all := morse.All()
	out := make([]catalogEntry, len(all))
	for i, e := range all {
		out[i] = catalogEntry{Entry: e, Pattern: morse.Pattern(e.Code)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbols":      out,
		"ditUnits":     morse.DitUnits,
		"dahUnits":     morse.DahUnits,
		"randomSubset": morse.NewChooser(symbolOpts(s.cfg.Symbols)...).String(),
	})
}

// handleTiming resolves timing options from the query string, e.g.
// /timing?letterWpm=20, falling back to the server defaults.
func (s *Server) handleTiming(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := timing.Options{
		LetterWPM:        queryFloat(q.Get("letterWpm")),
		WordWPM:          queryFloat(q.Get("wordWpm")),
		NoInputTimeoutMs: queryFloat(q.Get("noInputTimeoutMs")),
	}
	writeJSON(w, http.StatusOK, timing.NewConfig(opts.Merge(s.cfg.Timing.Options())))
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorBody{Error: code, Detail: detail})
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
