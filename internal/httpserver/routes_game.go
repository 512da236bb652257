// internal/httpserver/routes_game.go
//
// Game routes. The browser is the driver: it asks for a round, plays the
// returned timeline, reports when playback is done, then submits symbols.
//
//   - POST /game/new                    → create a session
//   - GET  /game/{id}                   → current snapshot (+ input deadline)
//   - POST /game/{id}/events            → generic {type, symbol} dispatch
//   - POST /game/{id}/round             → begin next round (+ playback timeline)
//   - POST /game/{id}/playback-finished → open the input window
//   - POST /game/{id}/input             → submit one symbol (+ match feedback)
//   - POST /game/{id}/timeout           → client-detected no-input timeout
//   - POST /game/{id}/tick              → server-clock timeout check
//   - POST /game/{id}/restart           → restart, optionally with a first symbol
//   - POST /game/{id}/reset             → back to idle

package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cwsimon/internal/auth"
	"github.com/robalobadob/cwsimon/internal/daily"
	"github.com/robalobadob/cwsimon/internal/game"
	"github.com/robalobadob/cwsimon/internal/morse"
	"github.com/robalobadob/cwsimon/internal/settings"
	"github.com/robalobadob/cwsimon/internal/store"
	"github.com/robalobadob/cwsimon/internal/timing"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/new", s.handleNewGame)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetGame)
		r.Delete("/", s.handleDeleteGame)
		r.Post("/events", s.handleEvent)
		r.Post("/round", s.handleRound)
		r.Post("/playback-finished", s.handlePlaybackFinished)
		r.Post("/input", s.handleInput)
		r.Post("/timeout", s.handleTimeout)
		r.Post("/tick", s.handleTick)
		r.Post("/restart", s.handleRestart)
		r.Post("/reset", s.handleReset)
	})
}

// newGameReq carries optional overrides; absent fields fall back to the
// player's saved settings, then to the server defaults.
type newGameReq struct {
	timing.Options
	Symbols string `json:"symbols"` // random-draw subset, e.g. "ETAN"
	Strict  bool   `json:"strict"`  // reject symbols outside the catalog
	Daily   bool   `json:"daily"`   // deal today's shared sequence
}

// gameRes is the common response of every game route.
type gameRes struct {
	GameID     string            `json:"gameId"`
	State      game.Snapshot     `json:"state"`
	Result     *game.MatchResult `json:"result,omitempty"`
	Timeline   []morse.Tone      `json:"timeline,omitempty"`
	TimelineMs int               `json:"timelineMs,omitempty"`
	TimedOut   *bool             `json:"timedOut,omitempty"`
	DeadlineMs *int64            `json:"deadlineMs,omitempty"`
	Symbols    string            `json:"symbols,omitempty"`
	Daily      string            `json:"daily,omitempty"`
}

// symbolReq is the body of routes that take an optional symbol.
type symbolReq struct {
	Symbol string `json:"symbol"`
}

// eventReq is the wire form of a game event.
type eventReq struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

// handleNewGame creates an in-memory session. Nothing is written to the DB.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	s.createGame(w, r, req)
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request, req newGameReq) {
	base := s.cfg.Timing.Options()
	symbols := s.cfg.Symbols
	if me := auth.FromContext(r.Context()); me != nil {
		st, err := s.settings.Get(r.Context(), me.ID)
		switch {
		case err == nil:
			base = st.Timing.Options()
			if st.Symbols != "" {
				symbols = morse.ParseSymbols(st.Symbols)
			}
		case !errors.Is(err, settings.ErrNotFound):
			log.Warn().Err(err).Str("user", me.ID).Msg("load settings")
		}
	}
	if req.Symbols != "" {
		symbols = morse.ParseSymbols(req.Symbols)
	}

	opts := game.Options{
		Timing: timing.NewConfig(req.Options.Merge(base)),
		Now:    s.now,
	}
	if req.Strict {
		opts.ValidateSymbol = morse.IsSupported
	}

	res := gameRes{}
	if req.Daily {
		date := s.now()
		opts.Chooser = daily.NewChooser(date, s.cfg.DailySalt, morse.All())
		opts.ValidateSymbol = morse.IsSupported
		res.Daily = daily.DateKey(date)
	} else {
		chooser := morse.NewChooser(symbolOpts(symbols)...)
		if len(chooser.Entries()) == 0 {
			writeError(w, http.StatusUnprocessableEntity, "invalid_configuration",
				"symbol subset "+strconv.Quote(strings.Join(symbols, ""))+" has no catalog symbols")
			return
		}
		opts.Chooser = func(game.State) string { return chooser.ChooseSymbol() }
		res.Symbols = chooser.String()
	}

	sess := game.NewSession(opts)
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return
	}
	log.Info().Str("gameId", sess.ID()).Bool("daily", req.Daily).Bool("strict", req.Strict).Msg("game created")

	res.GameID = sess.ID()
	res.State = sess.Snapshot()
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, "", func(sess *game.Session, res *gameRes) error {
		res.State = sess.Snapshot()
		return nil
	})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeGameError(w, id, "", nil, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleEvent is the generic dispatcher. A begin_round without a symbol draws
// from the session's chooser; an input also reports match feedback.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	ev, err := game.ParseEvent(req.Type, req.Symbol)
	if err != nil {
		s.writeGameError(w, chi.URLParam(r, "id"), game.EventType(req.Type), nil, err)
		return
	}
	s.withSession(w, r, ev.Type(), func(sess *game.Session, res *gameRes) error {
		switch e := ev.(type) {
		case game.Input:
			snap, result, err := sess.SubmitInput(e.Symbol)
			res.State, res.Result = snap, &result
			return err
		case game.BeginRound:
			snap, err := sess.BeginNextRound(e.NextSymbol)
			res.State = snap
			return err
		}
		snap, err := sess.Dispatch(ev)
		res.State = snap
		return err
	})
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	var req symbolReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	s.withSession(w, r, game.EventBeginRound, func(sess *game.Session, res *gameRes) error {
		snap, err := sess.BeginNextRound(req.Symbol)
		res.State = snap
		return err
	})
}

func (s *Server) handlePlaybackFinished(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, game.EventSequencePlaybackFinished, func(sess *game.Session, res *gameRes) error {
		snap, err := sess.FinishSequencePlayback()
		res.State = snap
		return err
	})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req symbolReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	s.withSession(w, r, game.EventInput, func(sess *game.Session, res *gameRes) error {
		snap, result, err := sess.SubmitInput(req.Symbol)
		res.State, res.Result = snap, &result
		return err
	})
}

func (s *Server) handleTimeout(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, game.EventTimeout, func(sess *game.Session, res *gameRes) error {
		snap, err := sess.MarkInputTimeout()
		res.State = snap
		return err
	})
}

// handleTick lets a driver that does not run its own timer ask the server to
// apply the no-input timeout. It never fails on a mode mismatch.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, game.EventTimeout, func(sess *game.Session, res *gameRes) error {
		snap, fired, err := sess.CheckTimeout()
		res.State, res.TimedOut = snap, &fired
		return err
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req symbolReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	s.withSession(w, r, game.EventRestart, func(sess *game.Session, res *gameRes) error {
		snap, err := sess.Restart(req.Symbol)
		res.State = snap
		return err
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, game.EventReset, func(sess *game.Session, res *gameRes) error {
		snap, err := sess.Reset()
		res.State = snap
		return err
	})
}

// withSession runs fn under the store's per-session lock and writes either
// the filled response or the mapped error. When the session ends up playing
// a sequence, the playback timeline is attached.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, ev game.EventType, fn func(*game.Session, *gameRes) error) {
	id := chi.URLParam(r, "id")
	res := gameRes{GameID: id}
	var mode *game.Mode
	err := s.store.Update(r.Context(), id, func(sess *game.Session) error {
		m := sess.Snapshot().Mode
		mode = &m
		if err := fn(sess, &res); err != nil {
			return err
		}
		if deadline, ok := sess.InputDeadline(); ok {
			ms := timing.Millis(deadline)
			res.DeadlineMs = &ms
		}
		return nil
	})
	if err != nil {
		s.writeGameError(w, id, ev, mode, err)
		return
	}
	if res.State.Mode == game.ModePlayingSequence {
		res.Timeline, res.TimelineMs = morse.Timeline(res.State.Sequence, res.State.Config.LetterUnitMs)
	}
	writeJSON(w, http.StatusOK, res)
}

// writeGameError maps session and game errors onto HTTP statuses. Rejected
// events are logged loudly: a correct driver never produces them.
func (s *Server) writeGameError(w http.ResponseWriter, id string, ev game.EventType, mode *game.Mode, err error) {
	status, code := gameErrorStatus(err)
	l := log.Warn().Err(err).Str("gameId", id).Str("event", string(ev))
	if mode != nil {
		l = l.Str("mode", string(*mode))
	}
	l.Int("status", status).Msg("game event rejected")
	writeError(w, status, code, err.Error())
}

func gameErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrInvalidEvent):
		return http.StatusBadRequest, "invalid_event"
	case errors.Is(err, game.ErrUnknownEvent):
		return http.StatusBadRequest, "unknown_event"
	case errors.Is(err, game.ErrIllegalTransition):
		return http.StatusConflict, "illegal_transition"
	case errors.Is(err, game.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity, "invalid_configuration"
	case errors.Is(err, game.ErrInvalidState):
		return http.StatusInternalServerError, "invalid_state"
	}
	return http.StatusInternalServerError, "internal"
}

// symbolOpts narrows a chooser only when a subset is configured.
func symbolOpts(symbols []string) []morse.ChooserOption {
	if len(symbols) == 0 {
		return nil
	}
	return []morse.ChooserOption{morse.WithSymbols(symbols...)}
}

// queryFloat parses an optional numeric query value; bad input is 0 (default).
func queryFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}
