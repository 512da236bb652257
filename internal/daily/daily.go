// internal/daily/daily.go
//
// Daily sequence: every player of a given UTC day is dealt the same symbols.
// Round k of the day uses HMAC-SHA256(salt, "YYYY-MM-DD#k") to pick from the
// catalog, so the sequence is stable for the day but not guessable without
// the salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/robalobadob/cwsimon/internal/game"
	"github.com/robalobadob/cwsimon/internal/morse"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SymbolIndex returns a deterministic index in [0,n) for round of date.
func SymbolIndex(date time.Time, salt string, round, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "#" + strconv.Itoa(round)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Sequence returns the first rounds symbols of date's sequence.
func Sequence(date time.Time, salt string, entries []morse.Entry, rounds int) []string {
	if len(entries) == 0 || rounds <= 0 {
		return []string{}
	}
	out := make([]string, rounds)
	for k := range out {
		out[k] = entries[SymbolIndex(date, salt, k, len(entries))].Symbol
	}
	return out
}

// NewChooser returns a game.Chooser that deals date's sequence. The round is
// the length of the current sequence; after a loss the next round starts the
// day over, matching the reducer dropping the lost sequence.
func NewChooser(date time.Time, salt string, entries []morse.Entry) game.Chooser {
	pool := append([]morse.Entry(nil), entries...)
	return func(s game.State) string {
		if len(pool) == 0 {
			return ""
		}
		round := len(s.Sequence)
		if s.Mode == game.ModeLost {
			round = 0
		}
		return pool[SymbolIndex(date, salt, round, len(pool))].Symbol
	}
}
