package game

import "github.com/robalobadob/cwsimon/internal/morse"

// MatchReason explains a rejected symbol. The zero value means accepted.
type MatchReason string

const (
	ReasonNone     MatchReason = ""
	ReasonMismatch MatchReason = "mismatch"
	ReasonOverflow MatchReason = "overflow"
	ReasonLost     MatchReason = "lost"
)

// MatchResult is the feedback for one entered symbol.
// Expected is "" when no symbol was expected at Index.
type MatchResult struct {
	OK       bool        `json:"ok"`
	Reason   MatchReason `json:"reason,omitempty"`
	Expected string      `json:"expected,omitempty"`
	Actual   string      `json:"actual"`
	Index    int         `json:"index"`
	Complete bool        `json:"complete"`
}

// compare checks an already normalized symbol against expected[index].
func compare(expected []string, index int, actual string) (string, MatchReason) {
	if index < 0 || index >= len(expected) {
		return "", ReasonOverflow
	}
	want := expected[index]
	if actual != want {
		return want, ReasonMismatch
	}
	return want, ReasonNone
}

// Matcher incrementally checks entered symbols against a fixed sequence.
// Once a symbol is rejected the matcher stays lost until Reset.
type Matcher struct {
	expected []string
	index    int
	lost     bool
}

// NewMatcher captures a normalized copy of expected.
func NewMatcher(expected []string) *Matcher {
	seq := make([]string, len(expected))
	for i, s := range expected {
		seq[i] = morse.Normalize(s)
	}
	return &Matcher{expected: seq}
}

// Push checks the next symbol.
func (m *Matcher) Push(symbol string) MatchResult {
	actual := morse.Normalize(symbol)
	if m.lost {
		want, _ := compare(m.expected, m.index, actual)
		return MatchResult{Reason: ReasonLost, Expected: want, Actual: actual, Index: m.index}
	}
	want, reason := compare(m.expected, m.index, actual)
	if reason != ReasonNone {
		m.lost = true
		return MatchResult{Reason: reason, Expected: want, Actual: actual, Index: m.index}
	}
	m.index++
	return MatchResult{
		OK:       true,
		Expected: want,
		Actual:   actual,
		Index:    m.index - 1,
		Complete: m.index >= len(m.expected),
	}
}

// Reset rewinds to the first symbol and clears the lost flag.
func (m *Matcher) Reset() {
	m.index = 0
	m.lost = false
}

func (m *Matcher) Expected() []string { return append([]string(nil), m.expected...) }
func (m *Matcher) Index() int         { return m.index }
func (m *Matcher) IsLost() bool       { return m.lost }
func (m *Matcher) IsComplete() bool   { return m.index >= len(m.expected) }
