package game

import (
	"errors"
	"reflect"
	"testing"
)

func mustReduce(t *testing.T, s State, e Event) State {
	t.Helper()
	next, err := Reduce(s, e)
	if err != nil {
		t.Fatalf("Reduce(%s in %s): %v", e.Type(), s.Mode, err)
	}
	return next
}

func awaiting(seq ...string) State {
	return State{Mode: ModeAwaitingInput, Sequence: seq}
}

func TestRoundGrowth(t *testing.T) {
	s := mustReduce(t, NewState(), BeginRound{NextSymbol: "a"})
	if s.Mode != ModePlayingSequence || !reflect.DeepEqual(s.Sequence, []string{"A"}) || s.SequenceIndex != 0 {
		t.Fatalf("after BeginRound: %+v", s)
	}

	s = mustReduce(t, s, SequencePlaybackFinished{})
	if s.Mode != ModeAwaitingInput || s.SequenceIndex != 0 {
		t.Fatalf("after playback: %+v", s)
	}

	s = mustReduce(t, s, Input{Symbol: "a"})
	if s.Mode != ModeIdle || s.SequenceIndex != 0 || s.RoundsCompleted != 1 {
		t.Fatalf("after input: %+v", s)
	}
	if !reflect.DeepEqual(s.Sequence, []string{"A"}) {
		t.Fatalf("sequence changed: %v", s.Sequence)
	}

	s = mustReduce(t, s, BeginRound{NextSymbol: "b"})
	if s.Mode != ModePlayingSequence || !reflect.DeepEqual(s.Sequence, []string{"A", "B"}) {
		t.Fatalf("after second BeginRound: %+v", s)
	}
	if s.RoundsCompleted != 1 {
		t.Fatalf("roundsCompleted reset unexpectedly: %d", s.RoundsCompleted)
	}
}

func TestInputAdvancesWithinRound(t *testing.T) {
	s := mustReduce(t, awaiting("A", "B"), Input{Symbol: "a"})
	if s.Mode != ModeAwaitingInput || s.SequenceIndex != 1 || s.RoundsCompleted != 0 {
		t.Fatalf("after first input: %+v", s)
	}
	s = mustReduce(t, s, Input{Symbol: "B"})
	if s.Mode != ModeIdle || s.SequenceIndex != 0 || s.RoundsCompleted != 1 {
		t.Fatalf("after second input: %+v", s)
	}
}

func TestMismatchLoss(t *testing.T) {
	before := awaiting("A", "B")
	s := mustReduce(t, before, Input{Symbol: "x"})
	if s.Mode != ModeLost || s.LossCause != LossMismatch {
		t.Fatalf("want lost/mismatch, got %+v", s)
	}
	if !reflect.DeepEqual(s.Sequence, []string{"A", "B"}) || s.SequenceIndex != 0 {
		t.Fatalf("sequence/index changed: %+v", s)
	}
}

func TestTimeoutLoss(t *testing.T) {
	before := State{Mode: ModeAwaitingInput, Sequence: []string{"A", "B"}, SequenceIndex: 1, RoundsCompleted: 1}
	s := mustReduce(t, before, Timeout{})
	if s.Mode != ModeLost || s.LossCause != LossTimeout || s.SequenceIndex != 1 || s.RoundsCompleted != 1 {
		t.Fatalf("after timeout: %+v", s)
	}

	for _, st := range []State{
		NewState(),
		{Mode: ModePlayingSequence, Sequence: []string{"A"}},
		{Mode: ModeLost, Sequence: []string{"A"}, LossCause: LossMismatch},
	} {
		if _, err := Reduce(st, Timeout{}); !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("Timeout in %s: want ErrIllegalTransition, got %v", st.Mode, err)
		}
	}
}

func TestRecoveryFromLost(t *testing.T) {
	lost := State{Mode: ModeLost, Sequence: []string{"A", "B", "C"}, SequenceIndex: 2, RoundsCompleted: 2, LossCause: LossMismatch}
	s := mustReduce(t, lost, BeginRound{NextSymbol: "k"})
	if s.Mode != ModePlayingSequence || !reflect.DeepEqual(s.Sequence, []string{"K"}) || s.RoundsCompleted != 0 || s.LossCause != LossNone {
		t.Fatalf("after recovery: %+v", s)
	}
	if !reflect.DeepEqual(lost.Sequence, []string{"A", "B", "C"}) {
		t.Fatalf("previous state mutated: %v", lost.Sequence)
	}
}

func TestNormalization(t *testing.T) {
	s := mustReduce(t, awaiting("A"), Input{Symbol: " a "})
	if s.Mode != ModeIdle || s.RoundsCompleted != 1 {
		t.Fatalf("padded lowercase input should match: %+v", s)
	}
	s = mustReduce(t, NewState(), BeginRound{NextSymbol: "  q\n"})
	if s.Sequence[0] != "Q" {
		t.Fatalf("stored symbol not normalized: %q", s.Sequence[0])
	}
}

func TestResetIsCanonical(t *testing.T) {
	states := []State{
		NewState(),
		{Mode: ModePlayingSequence, Sequence: []string{"A"}},
		{Mode: ModeAwaitingInput, Sequence: []string{"A", "B"}, SequenceIndex: 1, RoundsCompleted: 1},
		{Mode: ModeLost, Sequence: []string{"A"}, LossCause: LossTimeout},
	}
	for _, st := range states {
		for _, ev := range []Event{Reset{}, Restart{}} {
			got := mustReduce(t, st, ev)
			if !reflect.DeepEqual(got, NewState()) {
				t.Errorf("%s from %s = %+v", ev.Type(), st.Mode, got)
			}
		}
	}
}

func TestResetRecoversFromMalformedState(t *testing.T) {
	malformed := []State{
		{},
		{Mode: "bogus", Sequence: []string{"A"}},
		{Mode: ModeIdle, LossCause: LossTimeout},
		{Mode: ModeLost},
		{Mode: ModeAwaitingInput, Sequence: []string{"A"}, SequenceIndex: 5},
		{Mode: ModeIdle, RoundsCompleted: -3},
	}
	for _, st := range malformed {
		for _, ev := range []Event{Reset{}, Restart{}} {
			got, err := Reduce(st, ev)
			if err != nil {
				t.Errorf("%s from %+v: %v", ev.Type(), st, err)
				continue
			}
			if !reflect.DeepEqual(got, NewState()) {
				t.Errorf("%s from %+v = %+v", ev.Type(), st, got)
			}
		}
		got, err := Reduce(st, Restart{NextSymbol: "k"})
		want := State{Mode: ModePlayingSequence, Sequence: []string{"K"}}
		if err != nil || !reflect.DeepEqual(got, want) {
			t.Errorf("Restart(k) from %+v = %+v, %v", st, got, err)
		}
	}
}

func TestRestartWithSymbol(t *testing.T) {
	st := State{Mode: ModeAwaitingInput, Sequence: []string{"A", "B"}, SequenceIndex: 1, RoundsCompleted: 1}
	got := mustReduce(t, st, Restart{NextSymbol: "e"})
	want := State{Mode: ModePlayingSequence, Sequence: []string{"E"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Restart(e) = %+v, want %+v", got, want)
	}

	if _, err := Reduce(st, Restart{NextSymbol: "   "}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("blank restart symbol: want ErrInvalidEvent, got %v", err)
	}
}

func TestIllegalTransitions(t *testing.T) {
	modes := map[Mode]State{
		ModeIdle:            NewState(),
		ModePlayingSequence: {Mode: ModePlayingSequence, Sequence: []string{"A"}},
		ModeAwaitingInput:   awaiting("A"),
		ModeLost:            {Mode: ModeLost, Sequence: []string{"A"}, LossCause: LossMismatch},
	}
	tests := []struct {
		event Event
		legal []Mode
	}{
		{Input{Symbol: "A"}, []Mode{ModeAwaitingInput}},
		{BeginRound{NextSymbol: "A"}, []Mode{ModeIdle, ModeLost}},
		{SequencePlaybackFinished{}, []Mode{ModePlayingSequence}},
		{Timeout{}, []Mode{ModeAwaitingInput}},
	}
	for _, tt := range tests {
		for mode, st := range modes {
			t.Run(string(tt.event.Type())+"/"+string(mode), func(t *testing.T) {
				legal := false
				for _, m := range tt.legal {
					legal = legal || m == mode
				}
				got, err := Reduce(st, tt.event)
				if legal {
					if err != nil {
						t.Fatalf("expected legal, got %v", err)
					}
					return
				}
				if !errors.Is(err, ErrIllegalTransition) {
					t.Fatalf("want ErrIllegalTransition, got %v", err)
				}
				var te *TransitionError
				if !errors.As(err, &te) || te.Mode != mode || te.Event != tt.event.Type() {
					t.Fatalf("unexpected TransitionError: %#v", te)
				}
				if !reflect.DeepEqual(got, st) {
					t.Fatalf("state changed on error: %+v", got)
				}
			})
		}
	}
}

func TestInvalidEvents(t *testing.T) {
	if _, err := Reduce(NewState(), BeginRound{}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("empty BeginRound: %v", err)
	}
	if _, err := Reduce(awaiting("A"), Input{Symbol: "  "}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("empty Input: %v", err)
	}
	if _, err := Reduce(NewState(), nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("nil event: %v", err)
	}
}

type wrappedTimeout struct{ Timeout }

func TestUnknownEvent(t *testing.T) {
	if _, err := Reduce(awaiting("A"), wrappedTimeout{}); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("want ErrUnknownEvent, got %v", err)
	}
}

func TestInvalidState(t *testing.T) {
	broken := []State{
		{Mode: "bogus"},
		{Mode: ModeIdle, SequenceIndex: 2, Sequence: []string{"A"}},
		{Mode: ModeIdle, RoundsCompleted: -1},
		{Mode: ModeLost},
		{Mode: ModeIdle, LossCause: LossTimeout},
	}
	for _, st := range broken {
		got, err := Reduce(st, Timeout{})
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("Reduce(%+v): want ErrInvalidState, got %v", st, err)
		}
		if !reflect.DeepEqual(got, st) {
			t.Errorf("state changed on error: %+v", got)
		}
	}

	// Awaiting input with nothing left to match.
	st := State{Mode: ModeAwaitingInput, Sequence: []string{}}
	if _, err := Reduce(st, Input{Symbol: "A"}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("empty sequence input: want ErrInvalidState, got %v", err)
	}
}

func TestReduceDoesNotAliasInput(t *testing.T) {
	st := State{Mode: ModeIdle, Sequence: make([]string, 1, 8), RoundsCompleted: 1}
	st.Sequence[0] = "A"
	next := mustReduce(t, st, BeginRound{NextSymbol: "B"})
	next.Sequence[0] = "Z"
	if st.Sequence[0] != "A" {
		t.Fatal("new state shares backing array with the old one")
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		typ, symbol string
		want        Event
		err         error
	}{
		{"reset", "", Reset{}, nil},
		{"restart", "k", Restart{NextSymbol: "k"}, nil},
		{"begin_round", "a", BeginRound{NextSymbol: "a"}, nil},
		{"sequence_playback_finished", "", SequencePlaybackFinished{}, nil},
		{"input", "e", Input{Symbol: "e"}, nil},
		{"timeout", "ignored", Timeout{}, nil},
		{"", "", nil, ErrInvalidEvent},
		{"jump", "", nil, ErrUnknownEvent},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got, err := ParseEvent(tt.typ, tt.symbol)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("event = %#v, want %#v", got, tt.want)
			}
		})
	}
}
