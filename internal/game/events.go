package game

import "fmt"

// EventType is the wire name of an event.
type EventType string

const (
	EventReset                    EventType = "reset"
	EventRestart                  EventType = "restart"
	EventBeginRound               EventType = "begin_round"
	EventSequencePlaybackFinished EventType = "sequence_playback_finished"
	EventInput                    EventType = "input"
	EventTimeout                  EventType = "timeout"
)

// Event is the closed set of inputs Reduce accepts. Each variant carries only
// the payload it needs.
type Event interface {
	Type() EventType
	isEvent()
}

// Reset returns the game to its initial state. Always legal.
type Reset struct{}

// Restart is Reset, optionally followed by BeginRound{NextSymbol}.
// An empty NextSymbol means "no symbol".
type Restart struct{ NextSymbol string }

// BeginRound appends NextSymbol and starts playback.
type BeginRound struct{ NextSymbol string }

// SequencePlaybackFinished hands control to the player.
type SequencePlaybackFinished struct{}

// Input is one symbol entered by the player.
type Input struct{ Symbol string }

// Timeout reports that the player took too long.
type Timeout struct{}

func (Reset) Type() EventType                    { return EventReset }
func (Restart) Type() EventType                  { return EventRestart }
func (BeginRound) Type() EventType               { return EventBeginRound }
func (SequencePlaybackFinished) Type() EventType { return EventSequencePlaybackFinished }
func (Input) Type() EventType                    { return EventInput }
func (Timeout) Type() EventType                  { return EventTimeout }

func (Reset) isEvent()                    {}
func (Restart) isEvent()                  {}
func (BeginRound) isEvent()               {}
func (SequencePlaybackFinished) isEvent() {}
func (Input) isEvent()                    {}
func (Timeout) isEvent()                  {}

// ParseEvent builds an Event from its wire form. symbol is used by the
// variants that carry one and ignored otherwise.
func ParseEvent(typ, symbol string) (Event, error) {
	switch EventType(typ) {
	case "":
		return nil, fmt.Errorf("%w: event requires a type", ErrInvalidEvent)
	case EventReset:
		return Reset{}, nil
	case EventRestart:
		return Restart{NextSymbol: symbol}, nil
	case EventBeginRound:
		return BeginRound{NextSymbol: symbol}, nil
	case EventSequencePlaybackFinished:
		return SequencePlaybackFinished{}, nil
	case EventInput:
		return Input{Symbol: symbol}, nil
	case EventTimeout:
		return Timeout{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, typ)
}
