package game

import (
	"errors"
	"fmt"
	"strings"
)

// Integration errors. A correctly driven game never produces them; losing is
// reported through State.Mode, not through an error.
var (
	ErrInvalidEvent         = errors.New("invalid event")
	ErrIllegalTransition    = errors.New("illegal transition")
	ErrInvalidState         = errors.New("invalid state")
	ErrUnknownEvent         = errors.New("unknown event")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// TransitionError describes an event applied in a mode that does not accept it.
type TransitionError struct {
	Event   EventType
	Mode    Mode
	Allowed []Mode
}

func (e *TransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, m := range e.Allowed {
		allowed[i] = string(m)
	}
	return fmt.Sprintf("cannot apply event %q while mode is %q (allowed: %s)",
		e.Event, e.Mode, strings.Join(allowed, ", "))
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }
