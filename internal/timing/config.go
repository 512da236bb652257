package timing

import (
	"math"
	"time"
)

// Options are the raw, possibly invalid settings a caller supplies.
// Zero values mean "use the default".
type Options struct {
	LetterWPM        float64 `json:"letterWpm,omitempty"`
	WordWPM          float64 `json:"wordWpm,omitempty"`
	NoInputTimeoutMs float64 `json:"noInputTimeoutMs,omitempty"`
	// LosingSoundEnabled defaults to true when nil.
	LosingSoundEnabled *bool `json:"losingSoundEnabled,omitempty"`
}

// Config is the immutable, validated timing bundle.
type Config struct {
	LetterWPM          float64 `json:"letterWpm"`
	WordWPM            float64 `json:"wordWpm"`
	NoInputTimeoutMs   int64   `json:"noInputTimeoutMs"`
	LosingSoundEnabled bool    `json:"losingSoundEnabled"`

	LetterUnitMs int `json:"letterUnitMs"`
	WordGapMs    int `json:"wordGapMs"`
}

// NewConfig coerces opts and derives the unit and gap lengths.
func NewConfig(opts Options) Config {
	cfg := Config{
		LetterWPM:          coerce(opts.LetterWPM, DefaultWPM),
		WordWPM:            coerce(opts.WordWPM, DefaultWPM),
		NoInputTimeoutMs:   int64(math.Round(coerce(opts.NoInputTimeoutMs, DefaultNoInputTimeoutMs))),
		LosingSoundEnabled: true,
	}
	if opts.LosingSoundEnabled != nil {
		cfg.LosingSoundEnabled = *opts.LosingSoundEnabled
	}
	cfg.LetterUnitMs = WPMToUnitMs(cfg.LetterWPM)
	cfg.WordGapMs = wordGapUnits * WPMToUnitMs(cfg.WordWPM)
	return cfg
}

// DefaultConfig is NewConfig with no overrides.
func DefaultConfig() Config { return NewConfig(Options{}) }

// Options returns the inputs that reproduce c through NewConfig.
func (c Config) Options() Options {
	sound := c.LosingSoundEnabled
	return Options{
		LetterWPM:          c.LetterWPM,
		WordWPM:            c.WordWPM,
		NoInputTimeoutMs:   float64(c.NoInputTimeoutMs),
		LosingSoundEnabled: &sound,
	}
}

// Merge overlays the non-zero fields of o on top of base.
func (o Options) Merge(base Options) Options {
	out := base
	if o.LetterWPM != 0 {
		out.LetterWPM = o.LetterWPM
	}
	if o.WordWPM != 0 {
		out.WordWPM = o.WordWPM
	}
	if o.NoInputTimeoutMs != 0 {
		out.NoInputTimeoutMs = o.NoInputTimeoutMs
	}
	if o.LosingSoundEnabled != nil {
		out.LosingSoundEnabled = o.LosingSoundEnabled
	}
	return out
}

func (c Config) NoInputTimeout() time.Duration {
	return time.Duration(c.NoInputTimeoutMs) * time.Millisecond
}
