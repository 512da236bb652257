// internal/httpserver/routes_player.go
//
// Accounts and per-player data.
//   - POST /auth/signup, /auth/login, /auth/logout; GET /auth/me
//   - GET|PUT /settings/me      → preferred timing + random-draw subset
//   - GET|PUT /keying/profile   → saved keying histograms

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cwsimon/internal/auth"
	"github.com/robalobadob/cwsimon/internal/keying"
	"github.com/robalobadob/cwsimon/internal/settings"
	"github.com/robalobadob/cwsimon/internal/timing"
)

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type settingsReq struct {
	timing.Options
	Symbols string `json:"symbols"`
}

// mountPlayerRoutes registers authentication + gated routes.
func (s *Server) mountPlayerRoutes(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Require())
		r.Get("/auth/me", s.handleMe)
		r.Get("/settings/me", s.handleGetSettings)
		r.Put("/settings/me", s.handlePutSettings)
		r.Get("/keying/profile", s.handleGetKeyingProfile)
		r.Put("/keying/profile", s.handlePutKeyingProfile)
	})
}

// handleSignup creates a new user, signs a JWT and sets the auth cookie.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	u, err := s.auth.CreateUser(r.Context(), body.Username, body.Password)
	if err != nil {
		var ve *auth.ValidationError
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username_taken", "")
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, "invalid_signup", ve.Reason)
		default:
			log.Error().Err(err).Msg("create user")
			writeError(w, http.StatusInternalServerError, "signup_failed", "")
		}
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	log.Info().Str("user", u.ID).Msg("signup")
	writeJSON(w, http.StatusCreated, u)
}

// handleLogin authenticates the user and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	u, err := s.auth.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("authenticate")
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "")
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) issueToken(w http.ResponseWriter, u *auth.User) bool {
	tok, exp, err := s.auth.SignToken(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed", "")
		return false
	}
	s.auth.SetCookie(w, tok, exp)
	w.Header().Set("X-Auth-Token", tok)
	return true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.FromContext(r.Context()))
}

type settingsRes struct {
	settings.Settings
	Saved bool `json:"saved"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	st, err := s.settings.Get(r.Context(), me.ID)
	if err != nil && !errors.Is(err, settings.ErrNotFound) {
		log.Error().Err(err).Str("user", me.ID).Msg("load settings")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	if errors.Is(err, settings.ErrNotFound) {
		st.Timing = s.cfg.Timing
	}
	writeJSON(w, http.StatusOK, settingsRes{Settings: st, Saved: err == nil})
}

// handlePutSettings stores the coerced settings; invalid values fall back to
// the defaults exactly as a new game would.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	var body settingsReq
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	st, err := s.settings.Put(r.Context(), me.ID, settings.FromOptions(body.Options.Merge(s.cfg.Timing.Options()), body.Symbols))
	if err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("save settings")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, settingsRes{Settings: st, Saved: true})
}

type keyingProfileRes struct {
	keying.Profile
	Saved bool `json:"saved"`
}

func (s *Server) handleGetKeyingProfile(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	p, err := s.keying.Get(r.Context(), me.ID)
	if err != nil && !errors.Is(err, keying.ErrNoProfile) {
		log.Error().Err(err).Str("user", me.ID).Msg("load keying profile")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, keyingProfileRes{Profile: p, Saved: err == nil})
}

func (s *Server) handlePutKeyingProfile(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	var p keying.Profile
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_profile", err.Error())
		return
	}
	if err := s.keying.Put(r.Context(), me.ID, p); err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("save keying profile")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
