package morse

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/samber/lo"
)

// Chooser draws random entries from a fixed subset of the catalog.
// A Chooser never mutates its subset after construction.
type Chooser struct {
	entries []Entry
	intN    func(n int) int
}

// ChooserOption customizes a Chooser.
type ChooserOption func(*Chooser)

// WithIntN replaces the random source. intN must return a value in [0,n);
// out-of-range values are clamped into the subset.
func WithIntN(intN func(n int) int) ChooserOption {
	return func(c *Chooser) {
		if intN != nil {
			c.intN = intN
		}
	}
}

// WithSymbols restricts the chooser to the given symbols. Unknown and
// duplicate symbols are dropped; catalog order is preserved.
func WithSymbols(symbols ...string) ChooserOption {
	return func(c *Chooser) {
		wanted := lo.Map(symbols, func(s string, _ int) string { return Normalize(s) })
		c.entries = lo.Filter(All(), func(e Entry, _ int) bool {
			return lo.Contains(wanted, e.Symbol)
		})
	}
}

// NewChooser returns a Chooser over the whole catalog unless narrowed by opts.
func NewChooser(opts ...ChooserOption) *Chooser {
	c := &Chooser{entries: All(), intN: cryptoIntN}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entries returns a copy of the chooser's subset.
func (c *Chooser) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// ChooseEntry draws one entry. ok is false when the subset is empty.
func (c *Chooser) ChooseEntry() (Entry, bool) {
	n := len(c.entries)
	if n == 0 {
		return Entry{}, false
	}
	i := c.intN(n)
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	return c.entries[i], true
}

// ChooseSymbol draws one symbol, or "" when the subset is empty.
func (c *Chooser) ChooseSymbol() string {
	e, ok := c.ChooseEntry()
	if !ok {
		return ""
	}
	return e.Symbol
}

// ParseSymbols splits a subset list such as "ETAN" or "e, t, a, n" into
// single symbols.
func ParseSymbols(list string) []string {
	var out []string
	for _, r := range list {
		s := Normalize(string(r))
		if s == "" || s == "," {
			continue
		}
		out = append(out, s)
	}
	return lo.Uniq(out)
}

// cryptoIntN draws from [0,n) with crypto/rand.
func cryptoIntN(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}

// String lists the subset symbols, e.g. "ETAN".
func (c *Chooser) String() string {
	var b strings.Builder
	for _, e := range c.entries {
		b.WriteString(e.Symbol)
	}
	return b.String()
}
