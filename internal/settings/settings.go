// internal/settings/settings.go
//
// Per-player game preferences (player_settings table).
// A player's saved timing becomes the base for their new games; explicit
// request fields still win over it.

package settings

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/robalobadob/cwsimon/internal/morse"
	"github.com/robalobadob/cwsimon/internal/timing"
)

var ErrNotFound = errors.New("settings: none saved")

// Settings is what a player can tune. Timing is stored already coerced.
type Settings struct {
	Timing    timing.Config `json:"timing"`
	Symbols   string        `json:"symbols"`
	UpdatedAt time.Time     `json:"updatedAt,omitempty"`
}

// FromOptions coerces raw options the same way a new game would.
func FromOptions(opts timing.Options, symbols string) Settings {
	return Settings{
		Timing:  timing.NewConfig(opts),
		Symbols: strings.Join(morse.ParseSymbols(symbols), ""),
	}
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Get returns the player's settings, or ErrNotFound with the defaults.
func (s *Store) Get(ctx context.Context, userID string) (Settings, error) {
	var (
		st         Settings
		sound      int
		updatedRaw string
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT letter_wpm, word_wpm, no_input_timeout_ms, losing_sound, symbols, updated_at
        FROM player_settings WHERE user_id=?`, userID,
	).Scan(&st.Timing.LetterWPM, &st.Timing.WordWPM, &st.Timing.NoInputTimeoutMs, &sound, &st.Symbols, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{Timing: timing.DefaultConfig()}, ErrNotFound
	}
	if err != nil {
		return st, err
	}
	on := sound != 0
	st.Timing = timing.NewConfig(timing.Options{
		LetterWPM:          st.Timing.LetterWPM,
		WordWPM:            st.Timing.WordWPM,
		NoInputTimeoutMs:   float64(st.Timing.NoInputTimeoutMs),
		LosingSoundEnabled: &on,
	})
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return st, nil
}

// Put upserts st for the player and returns what was stored.
func (s *Store) Put(ctx context.Context, userID string, st Settings) (Settings, error) {
	st.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	sound := 0
	if st.Timing.LosingSoundEnabled {
		sound = 1
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO player_settings (user_id, letter_wpm, word_wpm, no_input_timeout_ms, losing_sound, symbols, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            letter_wpm=excluded.letter_wpm,
            word_wpm=excluded.word_wpm,
            no_input_timeout_ms=excluded.no_input_timeout_ms,
            losing_sound=excluded.losing_sound,
            symbols=excluded.symbols,
            updated_at=excluded.updated_at`,
		userID, st.Timing.LetterWPM, st.Timing.WordWPM, st.Timing.NoInputTimeoutMs,
		sound, st.Symbols, st.UpdatedAt.Format(time.RFC3339),
	)
	return st, err
}
