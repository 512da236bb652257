// internal/httpserver/routes_keying.go
//
// GET /keying/ws: live paddle stream.
//
// The client sends one message per key transition, stamped with its own
// clock so network jitter does not distort the measurement:
//
//	{"type":"down"|"up"|"clear","atMs":1234.5}
//
// Each message is answered with the element/gap it produced and the running
// gap message. For signed-in players the stream's histograms are added to
// their saved profile when it closes.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cwsimon/internal/auth"
	"github.com/robalobadob/cwsimon/internal/keying"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 512
)

type keyingMsg struct {
	Type string  `json:"type"`
	AtMs float64 `json:"atMs"`
}

type keyingReply struct {
	DownMs      *int   `json:"downMs,omitempty"`
	UpMs        *int   `json:"upMs,omitempty"`
	Message     string `json:"message"`
	LastDownBin int    `json:"lastDownBin"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleKeyingWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Warn().Err(err).Msg("keying upgrade")
		return
	}

	tracker := keying.NewTracker()
	me := auth.FromContext(r.Context())

	send := make(chan keyingReply, 16)
	done := make(chan struct{})
	go writePump(conn, send, done)

	readPump(conn, tracker, send)
	close(send)
	<-done

	if me != nil {
		s.saveKeyingStream(me.ID, tracker)
	}
}

// saveKeyingStream adds the stream's counts to whatever is stored now, so a
// profile PUT during the stream is not overwritten.
func (s *Server) saveKeyingStream(userID string, tracker *keying.Tracker) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stored, err := s.keying.Get(ctx, userID)
	switch {
	case err == nil:
		tracker.Merge(stored)
	case !errors.Is(err, keying.ErrNoProfile):
		log.Warn().Err(err).Str("user", userID).Msg("load keying profile")
		return
	}
	if err := s.keying.Put(ctx, userID, tracker.Profile()); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("save keying profile")
	}
}

// readPump owns the tracker; it returns when the client goes away.
func readPump(conn *websocket.Conn, tracker *keying.Tracker, send chan<- keyingReply) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("keying stream closed")
			}
			return
		}
		send <- handleKeyingMsg(tracker, raw)
	}
}

func handleKeyingMsg(tracker *keying.Tracker, raw []byte) keyingReply {
	var msg keyingMsg
	var sample keying.Sample
	if err := json.Unmarshal(raw, &msg); err != nil {
		return keyingReply{Error: "bad_json", Message: tracker.Message(), LastDownBin: tracker.Down.LastBin}
	}
	switch msg.Type {
	case "down":
		sample = tracker.KeyDown(msg.AtMs)
	case "up":
		sample = tracker.KeyUp(msg.AtMs)
	case "clear":
		tracker.Clear()
	default:
		return keyingReply{Error: "unknown_type", Message: tracker.Message(), LastDownBin: tracker.Down.LastBin}
	}
	return keyingReply{
		DownMs:      sample.DownMs,
		UpMs:        sample.UpMs,
		Message:     tracker.Message(),
		LastDownBin: tracker.Down.LastBin,
	}
}

// writePump is the connection's only writer: replies plus keepalive pings.
func writePump(conn *websocket.Conn, send <-chan keyingReply, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()

	for {
		select {
		case reply, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(reply); err != nil {
				drain(conn, send)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				drain(conn, send)
				return
			}
		}
	}
}

// drain closes conn so readPump fails fast, then discards its pending replies
// until it stops sending.
func drain(conn *websocket.Conn, send <-chan keyingReply) {
	_ = conn.Close()
	for range send {
	}
}
