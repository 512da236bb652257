package keying

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Profile is the persisted part of a Tracker.
type Profile struct {
	Down      Histogram `json:"down"`
	Up        Histogram `json:"up"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile captures the tracker's histograms.
func (t *Tracker) Profile() Profile {
	return Profile{Down: t.Down, Up: t.Up}
}

// Merge adds p's counts into t. A live LastBin wins over p's.
func (t *Tracker) Merge(p Profile) {
	for i := range t.Down.Bins {
		t.Down.Bins[i] += p.Down.Bins[i]
		t.Up.Bins[i] += p.Up.Bins[i]
	}
	if t.Down.LastBin < 0 {
		t.Down.LastBin = p.Down.LastBin
	}
	if t.Up.LastBin < 0 {
		t.Up.LastBin = p.Up.LastBin
	}
}

// Validate rejects negative counts and out-of-range last bins.
func (p Profile) Validate() error {
	for _, h := range []Histogram{p.Down, p.Up} {
		if h.LastBin < -1 || h.LastBin >= BinCount {
			return fmt.Errorf("lastBin %d out of range", h.LastBin)
		}
		for i, c := range h.Bins {
			if c < 0 {
				return fmt.Errorf("bin %d has negative count %d", i, c)
			}
		}
	}
	return nil
}

// ErrNoProfile is returned by Store.Get when a player has none yet.
var ErrNoProfile = errors.New("keying: no profile")

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Get loads a player's profile.
func (s *Store) Get(ctx context.Context, userID string) (Profile, error) {
	var (
		p          Profile
		down, up   string
		updatedRaw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT down_hist, up_hist, updated_at FROM keying_profiles WHERE user_id=?`, userID,
	).Scan(&down, &up, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{Down: NewHistogram(), Up: NewHistogram()}, ErrNoProfile
	}
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(down), &p.Down); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(up), &p.Up); err != nil {
		return p, err
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return p, nil
}

// Put stores p as the player's profile, replacing any previous one.
func (s *Store) Put(ctx context.Context, userID string, p Profile) error {
	down, err := json.Marshal(p.Down)
	if err != nil {
		return err
	}
	up, err := json.Marshal(p.Up)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO keying_profiles (user_id, down_hist, up_hist, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            down_hist=excluded.down_hist,
            up_hist=excluded.up_hist,
            updated_at=excluded.updated_at`,
		userID, string(down), string(up), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
