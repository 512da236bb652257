// internal/keying/tracker.go
//
// Keying tracker: measures how a human works the paddle.
// Responsibilities:
//   - Time key-down (element) and key-up (gap) durations from caller-supplied timestamps.
//   - Bucket both into fixed-width histograms.
//   - Build the gap message ("<ms>+<ms>+...") used to replay a captured rhythm.
//
// Gaps longer than IdleResetMs are treated as the player pausing, not keying,
// and are left out of the gap histogram and message.

package keying

import (
	"math"
	"strconv"
	"strings"

	"github.com/robalobadob/cwsimon/internal/morse"
)

const (
	BinCount    = 50
	BinWidthMs  = 8
	MaxSampleMs = 400
	IdleResetMs = 640
)

// Histogram counts samples in BinCount buckets of BinWidthMs.
type Histogram struct {
	Bins    [BinCount]int `json:"bins"`
	LastBin int           `json:"lastBin"`
}

// NewHistogram returns an empty histogram with no last bin.
func NewHistogram() Histogram {
	return Histogram{LastBin: -1}
}

// Add records ms. Samples outside [0,MaxSampleMs] are dropped; the last bin
// also absorbs the top of the range. It returns the bin used, or -1.
func (h *Histogram) Add(ms int) int {
	if ms < 0 || ms > MaxSampleMs {
		return -1
	}
	bin := ms / BinWidthMs
	if bin > BinCount-1 {
		bin = BinCount - 1
	}
	h.Bins[bin]++
	h.LastBin = bin
	return bin
}

// Total is the number of recorded samples.
func (h *Histogram) Total() int {
	n := 0
	for _, c := range h.Bins {
		n += c
	}
	return n
}

// Max is the largest bin count, used to scale a rendering.
func (h *Histogram) Max() int {
	m := 0
	for _, c := range h.Bins {
		if c > m {
			m = c
		}
	}
	return m
}

// Sample is what a key transition produced.
type Sample struct {
	DownMs *int `json:"downMs,omitempty"`
	UpMs   *int `json:"upMs,omitempty"`
}

// Tracker is the per-paddle keying state. Not safe for concurrent use.
type Tracker struct {
	down     bool
	downAt   float64
	upAt     float64
	released bool
	message  strings.Builder

	Down Histogram
	Up   Histogram
}

func NewTracker() *Tracker {
	return &Tracker{Down: NewHistogram(), Up: NewHistogram()}
}

// KeyDown registers a press at nowMs. Repeated presses are ignored.
func (t *Tracker) KeyDown(nowMs float64) Sample {
	var s Sample
	if t.down {
		return s
	}
	if t.released {
		raw := nowMs - t.upAt
		if raw <= IdleResetMs {
			up := int(math.Round(raw))
			t.message.WriteString(strconv.Itoa(up))
			t.message.WriteByte('+')
			t.Up.Add(up)
			s.UpMs = &up
		}
	}
	t.downAt = nowMs
	t.down = true
	return s
}

// KeyUp registers a release at nowMs. Stray releases are ignored.
func (t *Tracker) KeyUp(nowMs float64) Sample {
	var s Sample
	if !t.down {
		return s
	}
	d := int(math.Round(nowMs - t.downAt))
	t.down = false
	t.Down.Add(d)
	t.upAt = nowMs
	t.released = true
	s.DownMs = &d
	return s
}

// IsDown reports whether the key is currently pressed.
func (t *Tracker) IsDown() bool { return t.down }

// Message is the captured gap message.
func (t *Tracker) Message() string { return t.message.String() }

// Clear drops the message and key state. Histograms are kept.
func (t *Tracker) Clear() {
	t.message.Reset()
	t.down = false
	t.released = false
	t.downAt = 0
	t.upAt = 0
}

// ParseKeySequence turns a "+"-separated duration list into key steps.
// Even positions are key-down, odd positions key-up. An empty part is a
// zero-length step, so a captured "80+40+" ends with one. Parts that are not
// numbers are skipped without shifting that alternation.
func ParseKeySequence(s string) []morse.Tone {
	if s == "" {
		return nil
	}
	var out []morse.Tone
	for i, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			part = "0"
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		out = append(out, morse.Tone{On: i%2 == 0, Ms: int(math.Round(v))})
	}
	return out
}
