package game

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/cwsimon/internal/morse"
	"github.com/robalobadob/cwsimon/internal/timing"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(opts Options) (*Session, *fakeClock) {
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	opts.Now = clock.Now
	return NewSession(opts), clock
}

func TestSessionFullRound(t *testing.T) {
	picks := []string{"e", "t"}
	s, _ := newTestSession(Options{Chooser: func(st State) string {
		return picks[len(st.Sequence)]
	}})

	snap, err := s.BeginNextRound("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(snap.Sequence, []string{"E"}) || snap.Mode != ModePlayingSequence {
		t.Fatalf("round 1: %+v", snap)
	}
	if _, err := s.FinishSequencePlayback(); err != nil {
		t.Fatal(err)
	}
	snap, res, err := s.SubmitInput("e")
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK || !res.Complete || snap.Mode != ModeIdle || snap.RoundsCompleted != 1 {
		t.Fatalf("round 1 input: %+v / %+v", res, snap)
	}

	snap, err = s.BeginNextRound("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(snap.Sequence, []string{"E", "T"}) {
		t.Fatalf("round 2 sequence: %v", snap.Sequence)
	}
}

func TestSessionExplicitSymbolBypassesChooser(t *testing.T) {
	called := false
	s, _ := newTestSession(Options{Chooser: func(State) string { called = true; return "A" }})
	snap, err := s.BeginNextRound("k")
	if err != nil {
		t.Fatal(err)
	}
	if called || snap.Sequence[0] != "K" {
		t.Fatalf("chooser called=%v sequence=%v", called, snap.Sequence)
	}
}

func TestSessionChooserErrors(t *testing.T) {
	s, _ := newTestSession(Options{})
	if _, err := s.BeginNextRound(""); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("no chooser: want ErrInvalidConfiguration, got %v", err)
	}

	s, _ = newTestSession(Options{Chooser: func(State) string { return "  " }})
	snap, err := s.BeginNextRound("")
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("empty chooser result: want ErrInvalidConfiguration, got %v", err)
	}
	if snap.Mode != ModeIdle || len(snap.Sequence) != 0 {
		t.Fatalf("state changed on error: %+v", snap)
	}

	s, _ = newTestSession(Options{
		Chooser:        func(State) string { return "?" },
		ValidateSymbol: morse.IsSupported,
	})
	snap, err = s.BeginNextRound("")
	if !errors.Is(err, ErrInvalidConfiguration) || errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("unsupported chooser result: want ErrInvalidConfiguration, got %v", err)
	}
	if snap.Mode != ModeIdle || len(snap.Sequence) != 0 {
		t.Fatalf("state changed on error: %+v", snap)
	}
}

func TestSessionChooserGetsCopy(t *testing.T) {
	s, _ := newTestSession(Options{Chooser: func(st State) string {
		if len(st.Sequence) > 0 {
			st.Sequence[0] = "Z"
		}
		return "A"
	}})
	s.BeginNextRound("")
	s.FinishSequencePlayback()
	s.SubmitInput("A")
	s.BeginNextRound("")
	if got := s.Snapshot().Sequence; !reflect.DeepEqual(got, []string{"A", "A"}) {
		t.Fatalf("chooser mutated internal state: %v", got)
	}
}

func TestSessionSnapshotIsDeepCopy(t *testing.T) {
	s, _ := newTestSession(Options{})
	s.BeginNextRound("a")
	snap := s.Snapshot()
	snap.Sequence[0] = "Z"
	if s.Snapshot().Sequence[0] != "A" {
		t.Fatal("snapshot shares the sequence slice")
	}
}

func TestSessionStrictSymbols(t *testing.T) {
	s, _ := newTestSession(Options{ValidateSymbol: morse.IsSupported})
	if _, err := s.BeginNextRound("?"); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("unsupported symbol: want ErrInvalidEvent, got %v", err)
	}
	if _, err := s.Restart("AB"); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("unsupported restart symbol: want ErrInvalidEvent, got %v", err)
	}
	if _, err := s.BeginNextRound("7"); err != nil {
		t.Fatalf("supported symbol rejected: %v", err)
	}

	lax, _ := newTestSession(Options{})
	if _, err := lax.BeginNextRound("?"); err != nil {
		t.Fatalf("without validation any symbol is accepted: %v", err)
	}
}

func TestSessionLastInputTracking(t *testing.T) {
	s, clock := newTestSession(Options{})
	s.BeginNextRound("a")
	if s.Snapshot().LastInputAtMs != nil {
		t.Fatal("lastInputAtMs should be nil during playback")
	}

	s.FinishSequencePlayback()
	start := timing.Millis(clock.Now())
	if got := s.Snapshot().LastInputAtMs; got == nil || *got != start {
		t.Fatalf("lastInputAtMs after playback = %v, want %d", got, start)
	}

	clock.Advance(time.Second)
	s.SubmitInput("a")
	if got := s.Snapshot().LastInputAtMs; got == nil || *got != start+1000 {
		t.Fatalf("lastInputAtMs after input = %v", got)
	}

	s.Reset()
	if s.Snapshot().LastInputAtMs != nil {
		t.Fatal("Reset should clear lastInputAtMs")
	}
}

func TestSessionCheckTimeout(t *testing.T) {
	cfg := timing.NewConfig(timing.Options{NoInputTimeoutMs: 2000})
	s, clock := newTestSession(Options{Timing: cfg})

	if _, fired, err := s.CheckTimeout(); fired || err != nil {
		t.Fatalf("idle session should not time out: %v %v", fired, err)
	}

	s.BeginNextRound("a")
	s.FinishSequencePlayback()
	deadline, ok := s.InputDeadline()
	if !ok || !deadline.Equal(clock.Now().Add(2*time.Second)) {
		t.Fatalf("deadline = %v,%v", deadline, ok)
	}

	clock.Advance(1999 * time.Millisecond)
	if _, fired, _ := s.CheckTimeout(); fired {
		t.Fatal("timed out one ms early")
	}
	clock.Advance(time.Millisecond)
	snap, fired, err := s.CheckTimeout()
	if err != nil || !fired {
		t.Fatalf("expected timeout at the boundary: %v %v", fired, err)
	}
	if snap.Mode != ModeLost || snap.LossCause != LossTimeout {
		t.Fatalf("after timeout: %+v", snap)
	}
	if _, ok := s.InputDeadline(); ok {
		t.Fatal("no deadline once lost")
	}
}

func TestSessionInputResetsTimeoutWindow(t *testing.T) {
	cfg := timing.NewConfig(timing.Options{NoInputTimeoutMs: 1000})
	s, clock := newTestSession(Options{Timing: cfg})
	s.BeginNextRound("a")
	s.FinishSequencePlayback()
	s.SubmitInput("a")
	s.BeginNextRound("b")
	s.FinishSequencePlayback()

	clock.Advance(900 * time.Millisecond)
	s.SubmitInput("a")
	clock.Advance(900 * time.Millisecond)
	if _, fired, _ := s.CheckTimeout(); fired {
		t.Fatal("input should restart the timeout window")
	}
}

func TestSessionMismatchFeedback(t *testing.T) {
	s, _ := newTestSession(Options{})
	s.BeginNextRound("a")
	s.FinishSequencePlayback()
	snap, res, err := s.SubmitInput("n")
	if err != nil {
		t.Fatal(err)
	}
	want := MatchResult{Reason: ReasonMismatch, Expected: "A", Actual: "N"}
	if res != want {
		t.Fatalf("result = %+v, want %+v", res, want)
	}
	if snap.Mode != ModeLost || snap.LossCause != LossMismatch {
		t.Fatalf("snapshot = %+v", snap)
	}

	if _, _, err := s.SubmitInput("a"); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("input after loss: want ErrIllegalTransition, got %v", err)
	}
}

func TestSessionRestartKeepsConfig(t *testing.T) {
	cfg := timing.NewConfig(timing.Options{LetterWPM: 20})
	s, _ := newTestSession(Options{Timing: cfg, ID: "fixed"})
	snap, err := s.Restart("s")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Mode != ModePlayingSequence || snap.Config != cfg || s.ID() != "fixed" {
		t.Fatalf("restart: %+v id=%s", snap, s.ID())
	}
	snap, _ = s.Restart("")
	if snap.Mode != ModeIdle || len(snap.Sequence) != 0 || snap.Config != cfg {
		t.Fatalf("restart without symbol: %+v", snap)
	}
}

func TestSessionDefaults(t *testing.T) {
	s := NewSession(Options{})
	if s.ID() == "" {
		t.Fatal("session id should default to a uuid")
	}
	if s.Config() != timing.DefaultConfig() {
		t.Fatalf("config = %+v", s.Config())
	}
	if other := NewSession(Options{}); other.ID() == s.ID() {
		t.Fatal("session ids should be unique")
	}
}
