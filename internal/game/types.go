// internal/game/types.go
//
// Core type definitions for the Simon state machine.
// Defines:
//   - Mode: the four game modes.
//   - LossCause: why a game was lost.
//   - State: the immutable value replaced on every transition.

package game

import "fmt"

// Mode is the current phase of a game.
//   - "idle":             waiting for the next round to begin.
//   - "playing_sequence": the driver is playing the sequence back.
//   - "awaiting_input":   the player is reproducing the sequence.
//   - "lost":             the game ended; only a new round or reset leaves it.
type Mode string

const (
	ModeIdle            Mode = "idle"
	ModePlayingSequence Mode = "playing_sequence"
	ModeAwaitingInput   Mode = "awaiting_input"
	ModeLost            Mode = "lost"
)

// Valid reports whether m is one of the four modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeIdle, ModePlayingSequence, ModeAwaitingInput, ModeLost:
		return true
	}
	return false
}

// LossCause classifies a loss. The zero value means "not lost".
type LossCause string

const (
	LossNone     LossCause = ""
	LossMismatch LossCause = "mismatch"
	LossTimeout  LossCause = "timeout"
)

// State is one snapshot of a game. Transitions never modify a State in
// place; Reduce always returns a fresh value with its own Sequence slice.
type State struct {
	Mode            Mode      `json:"mode"`
	Sequence        []string  `json:"sequence"`
	SequenceIndex   int       `json:"sequenceIndex"`
	RoundsCompleted int       `json:"roundsCompleted"`
	LossCause       LossCause `json:"lossCause,omitempty"`
}

// NewState returns the canonical initial state.
func NewState() State {
	return State{Mode: ModeIdle, Sequence: []string{}}
}

// Clone deep-copies s so the caller can hold it safely.
func (s State) Clone() State {
	out := s
	out.Sequence = append(make([]string, 0, len(s.Sequence)), s.Sequence...)
	return out
}

// Expected returns the symbol the player must enter next, if any.
func (s State) Expected() (string, bool) {
	if s.SequenceIndex < 0 || s.SequenceIndex >= len(s.Sequence) {
		return "", false
	}
	return s.Sequence[s.SequenceIndex], true
}

// Validate checks the structural invariants of s.
func (s State) Validate() error {
	switch {
	case !s.Mode.Valid():
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidState, s.Mode)
	case s.SequenceIndex < 0 || s.SequenceIndex > len(s.Sequence):
		return fmt.Errorf("%w: sequenceIndex %d outside [0,%d]", ErrInvalidState, s.SequenceIndex, len(s.Sequence))
	case s.RoundsCompleted < 0:
		return fmt.Errorf("%w: negative roundsCompleted %d", ErrInvalidState, s.RoundsCompleted)
	case s.LossCause != LossNone && s.LossCause != LossMismatch && s.LossCause != LossTimeout:
		return fmt.Errorf("%w: unknown lossCause %q", ErrInvalidState, s.LossCause)
	case (s.Mode == ModeLost) != (s.LossCause != LossNone):
		return fmt.Errorf("%w: lossCause %q in mode %q", ErrInvalidState, s.LossCause, s.Mode)
	}
	return nil
}
