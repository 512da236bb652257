// internal/timing/timing.go
//
// Timing model for Morse playback and input timeouts.
//   - WPM ↔ base unit conversions (PARIS standard: 1 unit = 1200/WPM ms).
//   - Config bundle derived from letter/word WPM and the no-input timeout.
//   - Timeout detection against a caller-supplied "now".
//
// Nothing here reads the wall clock.

package timing

import (
	"math"
	"time"
)

const (
	DefaultWPM              = 8
	DefaultNoInputTimeoutMs = 5000

	// MinUnitMs bounds how fast playback may get.
	MinUnitMs = 10

	msPerUnitAtOneWPM = 1200
	wordGapUnits      = 7
)

// WPMToUnitMs converts words-per-minute to the base unit in milliseconds.
// Non-positive or non-finite input falls back to DefaultWPM.
func WPMToUnitMs(wpm float64) int {
	if !finite(wpm) || wpm <= 0 {
		wpm = DefaultWPM
	}
	unit := int(math.Round(msPerUnitAtOneWPM / wpm))
	if unit < MinUnitMs {
		return MinUnitMs
	}
	return unit
}

// UnitMsToWPM is the inverse of WPMToUnitMs, never below 1.
func UnitMsToWPM(unitMs float64) int {
	if !finite(unitMs) || unitMs <= 0 {
		unitMs = float64(WPMToUnitMs(DefaultWPM))
	}
	wpm := int(math.Round(msPerUnitAtOneWPM / unitMs))
	if wpm < 1 {
		return 1
	}
	return wpm
}

// IsTimedOut reports whether at least timeoutMs elapsed between lastInputAtMs
// and nowMs. Non-finite timestamps never time out. An invalid timeout falls
// back to DefaultNoInputTimeoutMs; any timeout is at least 1ms.
func IsTimedOut(lastInputAtMs, nowMs, timeoutMs float64) bool {
	if !finite(lastInputAtMs) || !finite(nowMs) {
		return false
	}
	timeout := coerce(timeoutMs, DefaultNoInputTimeoutMs)
	return nowMs-lastInputAtMs >= timeout
}

// Millis converts t to epoch milliseconds, the unit every timestamp here uses.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// coerce replaces zero or non-finite values with def and clamps the result
// to at least 1.
func coerce(v, def float64) float64 {
	if !finite(v) || v == 0 {
		v = def
	}
	return math.Max(1, v)
}
