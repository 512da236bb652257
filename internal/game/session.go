// internal/game/session.go
//
// Session wraps the reducer with one mutable current-state cell.
// Responsibilities:
//   - Mirror the event vocabulary as methods (Reset, Restart, BeginNextRound, ...).
//   - Pick the next symbol through an injected Chooser when none is given.
//   - Track when the player last acted so a driver can detect no-input timeouts.
//   - Hand out deep copies only; callers never share the internal sequence.
//
// A Session is not safe for concurrent use: at most one call may be in flight.
// Stores that share sessions between goroutines serialize access themselves.

package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/cwsimon/internal/morse"
	"github.com/robalobadob/cwsimon/internal/timing"
)

// Chooser picks the symbol for the next round given the current state.
type Chooser func(State) string

// Options configures a Session. Zero values select defaults.
type Options struct {
	ID      string        // defaults to a random UUID
	Chooser Chooser       // nil: BeginNextRound needs an explicit symbol
	Timing  timing.Config // zero value: timing.DefaultConfig()
	Now     func() time.Time

	// ValidateSymbol, when set, rejects unsupported symbols before they are
	// appended to the sequence (e.g. morse.IsSupported).
	ValidateSymbol func(string) bool
}

// Snapshot is the externally visible view of a session.
type Snapshot struct {
	State
	LastInputAtMs *int64        `json:"lastInputAtMs"`
	Config        timing.Config `json:"config"`
}

type Session struct {
	id       string
	state    State
	lastAtMs *int64
	config   timing.Config
	choose   Chooser
	now      func() time.Time
	validate func(string) bool
}

func NewSession(opts Options) *Session {
	s := &Session{
		id:       opts.ID,
		state:    NewState(),
		config:   opts.Timing,
		choose:   opts.Chooser,
		now:      opts.Now,
		validate: opts.ValidateSymbol,
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.config == (timing.Config{}) {
		s.config = timing.DefaultConfig()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Config() timing.Config { return s.config }

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{State: s.state.Clone(), Config: s.config}
	if s.lastAtMs != nil {
		v := *s.lastAtMs
		snap.LastInputAtMs = &v
	}
	return snap
}

// Dispatch applies any event to the session.
func (s *Session) Dispatch(e Event) (Snapshot, error) {
	_, err := s.apply(e)
	return s.Snapshot(), err
}

func (s *Session) Reset() (Snapshot, error) {
	return s.Dispatch(Reset{})
}

// Restart resets the game; a non-empty symbol immediately begins round one.
func (s *Session) Restart(symbol string) (Snapshot, error) {
	return s.Dispatch(Restart{NextSymbol: symbol})
}

// BeginNextRound appends symbol, or the Chooser's pick when symbol is empty.
func (s *Session) BeginNextRound(symbol string) (Snapshot, error) {
	if symbol == "" {
		chosen, err := s.chooseSymbol()
		if err != nil {
			return s.Snapshot(), err
		}
		symbol = chosen
	}
	return s.Dispatch(BeginRound{NextSymbol: symbol})
}

func (s *Session) FinishSequencePlayback() (Snapshot, error) {
	return s.Dispatch(SequencePlaybackFinished{})
}

// SubmitInput applies one player symbol and reports how it matched.
func (s *Session) SubmitInput(symbol string) (Snapshot, MatchResult, error) {
	res, err := s.apply(Input{Symbol: symbol})
	return s.Snapshot(), res, err
}

func (s *Session) MarkInputTimeout() (Snapshot, error) {
	return s.Dispatch(Timeout{})
}

// CheckTimeout dispatches Timeout when the player has been silent for the
// configured no-input timeout. It is a no-op outside awaiting_input.
func (s *Session) CheckTimeout() (Snapshot, bool, error) {
	if s.state.Mode != ModeAwaitingInput || s.lastAtMs == nil {
		return s.Snapshot(), false, nil
	}
	now := timing.Millis(s.now())
	if !timing.IsTimedOut(float64(*s.lastAtMs), float64(now), float64(s.config.NoInputTimeoutMs)) {
		return s.Snapshot(), false, nil
	}
	snap, err := s.MarkInputTimeout()
	return snap, err == nil, err
}

// InputDeadline is when CheckTimeout will start reporting a timeout.
func (s *Session) InputDeadline() (time.Time, bool) {
	if s.state.Mode != ModeAwaitingInput || s.lastAtMs == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*s.lastAtMs).Add(s.config.NoInputTimeout()), true
}

func (s *Session) apply(e Event) (MatchResult, error) {
	if err := s.checkSymbol(e); err != nil {
		return MatchResult{}, err
	}

	var (
		next State
		res  MatchResult
		err  error
	)
	if in, ok := e.(Input); ok {
		next, res, err = applyInput(s.state, in.Symbol)
	} else {
		next, err = Reduce(s.state, e)
	}
	if err != nil {
		return res, err
	}
	s.state = next

	switch e.(type) {
	case Reset, Restart, BeginRound:
		s.lastAtMs = nil
	case SequencePlaybackFinished, Input:
		now := timing.Millis(s.now())
		s.lastAtMs = &now
	}
	return res, nil
}

// checkSymbol enforces ValidateSymbol for events that grow the sequence.
func (s *Session) checkSymbol(e Event) error {
	if s.validate == nil {
		return nil
	}
	var symbol string
	switch ev := e.(type) {
	case BeginRound:
		symbol = ev.NextSymbol
	case Restart:
		symbol = ev.NextSymbol
	default:
		return nil
	}
	if n := morse.Normalize(symbol); n != "" && !s.validate(n) {
		return fmt.Errorf("%w: unsupported sequence symbol %q", ErrInvalidEvent, symbol)
	}
	return nil
}

func (s *Session) chooseSymbol() (string, error) {
	if s.choose == nil {
		return "", fmt.Errorf("%w: no symbol provided and no symbol source configured", ErrInvalidConfiguration)
	}
	symbol := morse.Normalize(s.choose(s.state.Clone()))
	if symbol == "" {
		return "", fmt.Errorf("%w: chooser returned an empty symbol", ErrInvalidConfiguration)
	}
	if s.validate != nil && !s.validate(symbol) {
		return "", fmt.Errorf("%w: chooser returned unsupported symbol %q", ErrInvalidConfiguration, symbol)
	}
	return symbol, nil
}
