// internal/morse/catalog.go
//
// Static Morse catalog for the Simon trainer.
// Responsibilities:
//   - Map the 36 trainable symbols (A–Z, 0–9) to their Morse codes.
//   - Convert codes to unit patterns ('.' = 1 unit, '-' = 3 units).
//   - Normalize symbols the same way everywhere (trim + uppercase).
//
// Lookups never fail loudly: an unknown symbol is reported as ok=false and the
// caller decides what that means.

package morse

import "strings"

// Entry pairs a symbol with its Morse code.
type Entry struct {
	Symbol string `json:"symbol"`
	Code   string `json:"code"`
}

const (
	DitUnits = 1
	DahUnits = 3
)

// catalog is kept in display order: letters first, then digits.
var catalog = [...]Entry{
	{"A", ".-"}, {"B", "-..."}, {"C", "-.-."}, {"D", "-.."}, {"E", "."},
	{"F", "..-."}, {"G", "--."}, {"H", "...."}, {"I", ".."}, {"J", ".---"},
	{"K", "-.-"}, {"L", ".-.."}, {"M", "--"}, {"N", "-."}, {"O", "---"},
	{"P", ".--."}, {"Q", "--.-"}, {"R", ".-."}, {"S", "..."}, {"T", "-"},
	{"U", "..-"}, {"V", "...-"}, {"W", ".--"}, {"X", "-..-"}, {"Y", "-.--"},
	{"Z", "--.."},
	{"0", "-----"}, {"1", ".----"}, {"2", "..---"}, {"3", "...--"}, {"4", "....-"},
	{"5", "....."}, {"6", "-...."}, {"7", "--..."}, {"8", "---.."}, {"9", "----."},
}

var bySymbol map[string]string

func init() {
	bySymbol = make(map[string]string, len(catalog))
	for _, e := range catalog {
		bySymbol[e.Symbol] = e.Code
	}
}

// Normalize trims surrounding whitespace and uppercases s.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Lookup returns the Morse code for symbol. Lookups are case-insensitive.
func Lookup(symbol string) (string, bool) {
	code, ok := bySymbol[Normalize(symbol)]
	return code, ok
}

// IsSupported reports whether symbol normalizes to a catalog entry.
func IsSupported(symbol string) bool {
	_, ok := Lookup(symbol)
	return ok
}

// All returns a copy of the catalog in stable order (A–Z, then 0–9).
func All() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog[:])
	return out
}

// Len is the number of catalog entries.
func Len() int { return len(catalog) }

// Pattern converts a Morse code string to unit lengths.
// Any character other than '-' counts as a dit.
func Pattern(code string) []int {
	out := make([]int, 0, len(code))
	for _, c := range code {
		if c == '-' {
			out = append(out, DahUnits)
		} else {
			out = append(out, DitUnits)
		}
	}
	return out
}

// PatternOfSymbol looks up symbol and returns its unit pattern.
func PatternOfSymbol(symbol string) ([]int, bool) {
	code, ok := Lookup(symbol)
	if !ok {
		return nil, false
	}
	return Pattern(code), true
}
