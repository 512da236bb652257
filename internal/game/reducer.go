// internal/game/reducer.go
//
// The Simon state machine.
//
// Reduce is a pure function (state, event) -> state. It performs no I/O, reads
// no clock and draws no random numbers: symbol choice and the scheduling of
// playback and timeouts belong to the caller.
//
// Transitions:
//   - Reset / Restart:           any mode → idle (Restart may chain a BeginRound).
//   - BeginRound:                idle|lost → playing_sequence (lost starts over).
//   - SequencePlaybackFinished:  playing_sequence → awaiting_input.
//   - Input:                     awaiting_input → awaiting_input | idle (round won) | lost (mismatch).
//   - Timeout:                   awaiting_input → lost (timeout).
//
// Illegal transitions are errors; losing is not.

package game

import (
	"fmt"
	"slices"

	"github.com/robalobadob/cwsimon/internal/morse"
)

// Reduce applies e to s. On error the returned state is s, unchanged.
// Reset and Restart never look at s, so they recover from any state.
func Reduce(s State, e Event) (State, error) {
	switch ev := e.(type) {
	case Reset:
		return NewState(), nil
	case Restart:
		if ev.NextSymbol == "" {
			return NewState(), nil
		}
		next, err := Reduce(NewState(), BeginRound{NextSymbol: ev.NextSymbol})
		if err != nil {
			return s, err
		}
		return next, nil
	}

	if e == nil {
		return s, fmt.Errorf("%w: event requires a type", ErrInvalidEvent)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}

	switch ev := e.(type) {
	case BeginRound:
		if err := requireMode(s, EventBeginRound, ModeIdle, ModeLost); err != nil {
			return s, err
		}
		symbol := morse.Normalize(ev.NextSymbol)
		if symbol == "" {
			return s, fmt.Errorf("%w: %s requires a non-empty nextSymbol", ErrInvalidEvent, EventBeginRound)
		}
		base := s.Clone()
		if s.Mode == ModeLost {
			base.Sequence = base.Sequence[:0]
			base.RoundsCompleted = 0
		}
		return State{
			Mode:            ModePlayingSequence,
			Sequence:        append(base.Sequence, symbol),
			SequenceIndex:   0,
			RoundsCompleted: base.RoundsCompleted,
		}, nil

	case SequencePlaybackFinished:
		if err := requireMode(s, EventSequencePlaybackFinished, ModePlayingSequence); err != nil {
			return s, err
		}
		next := s.Clone()
		next.Mode = ModeAwaitingInput
		next.SequenceIndex = 0
		next.LossCause = LossNone
		return next, nil

	case Input:
		next, _, err := applyInput(s, ev.Symbol)
		return next, err

	case Timeout:
		if err := requireMode(s, EventTimeout, ModeAwaitingInput); err != nil {
			return s, err
		}
		return withLoss(s, LossTimeout), nil
	}

	return s, fmt.Errorf("%w: %T", ErrUnknownEvent, e)
}

// applyInput is the Input transition plus the match feedback the session
// hands back to its caller.
func applyInput(s State, symbol string) (State, MatchResult, error) {
	actual := morse.Normalize(symbol)
	result := MatchResult{Actual: actual, Index: s.SequenceIndex}

	if err := requireMode(s, EventInput, ModeAwaitingInput); err != nil {
		return s, result, err
	}
	if actual == "" {
		return s, result, fmt.Errorf("%w: %s requires a non-empty symbol", ErrInvalidEvent, EventInput)
	}
	want, reason := compare(s.Sequence, s.SequenceIndex, actual)
	result.Expected = want
	switch reason {
	case ReasonOverflow:
		return s, result, fmt.Errorf("%w: no expected symbol at sequenceIndex %d", ErrInvalidState, s.SequenceIndex)
	case ReasonMismatch:
		result.Reason = ReasonMismatch
		return withLoss(s, LossMismatch), result, nil
	}

	result.OK = true
	next := s.Clone()
	next.LossCause = LossNone
	next.SequenceIndex++
	if next.SequenceIndex >= len(next.Sequence) {
		result.Complete = true
		next.Mode = ModeIdle
		next.SequenceIndex = 0
		next.RoundsCompleted++
	}
	return next, result, nil
}

func requireMode(s State, ev EventType, allowed ...Mode) error {
	if slices.Contains(allowed, s.Mode) {
		return nil
	}
	return &TransitionError{Event: ev, Mode: s.Mode, Allowed: allowed}
}

func withLoss(s State, cause LossCause) State {
	next := s.Clone()
	next.Mode = ModeLost
	next.LossCause = cause
	return next
}
