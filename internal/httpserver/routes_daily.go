// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily sequence.
//   - GET  /daily     → today's date key and when it rolls over
//   - POST /daily/new → start a game dealing today's shared sequence
//
// The sequence is derived from date + salt (see package daily), so every
// player gets the same symbols for the day without anything being stored.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/cwsimon/internal/daily"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Post("/new", s.handleDailyNew)
	})
}

type dailyInfoRes struct {
	Date       string `json:"date"`
	ResetsAtMs int64  `json:"resetsAtMs"`
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	writeJSON(w, http.StatusOK, dailyInfoRes{
		Date:       daily.DateKey(now),
		ResetsAtMs: midnight.UnixMilli(),
	})
}

// handleDailyNew accepts the same optional timing overrides as /game/new.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	req.Daily = true
	s.createGame(w, r, req)
}
