package morse

import (
	"reflect"
	"testing"
)

func TestCatalogOrderAndSize(t *testing.T) {
	all := All()
	if len(all) != 36 {
		t.Fatalf("expected 36 entries, got %d", len(all))
	}
	if all[0].Symbol != "A" || all[25].Symbol != "Z" || all[26].Symbol != "0" || all[35].Symbol != "9" {
		t.Errorf("unexpected order: first=%s z=%s zero=%s last=%s", all[0].Symbol, all[25].Symbol, all[26].Symbol, all[35].Symbol)
	}

	// Callers get a copy.
	all[0].Code = "mutated"
	if code, _ := Lookup("A"); code != ".-" {
		t.Errorf("catalog was mutated through All(): %q", code)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		code string
		ok   bool
	}{
		{"A", ".-", true},
		{"a", ".-", true},
		{"  k ", "-.-", true},
		{"0", "-----", true},
		{"9", "----.", true},
		{"?", "", false},
		{"", "", false},
		{"AB", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			code, ok := Lookup(tt.in)
			if ok != tt.ok || code != tt.code {
				t.Errorf("Lookup(%q) = %q,%v want %q,%v", tt.in, code, ok, tt.code, tt.ok)
			}
		})
	}
}

func TestPattern(t *testing.T) {
	if got := Pattern("-.-"); !reflect.DeepEqual(got, []int{3, 1, 3}) {
		t.Errorf("Pattern(-.-) = %v", got)
	}
	if got := Pattern(""); len(got) != 0 {
		t.Errorf("Pattern(\"\") = %v", got)
	}
	got, ok := PatternOfSymbol("e")
	if !ok || !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("PatternOfSymbol(e) = %v,%v", got, ok)
	}
	if _, ok := PatternOfSymbol("#"); ok {
		t.Error("PatternOfSymbol(#) should not be found")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  x\t"); got != "X" {
		t.Errorf("Normalize = %q", got)
	}
	if !IsSupported(" q ") {
		t.Error("q should be supported")
	}
	if IsSupported(" ") {
		t.Error("blank should not be supported")
	}
}

func TestChooserClampsAndSubsets(t *testing.T) {
	c := NewChooser(WithIntN(func(n int) int { return n + 5 }))
	if got := c.ChooseSymbol(); got != "9" {
		t.Errorf("high draw should clamp to last entry, got %q", got)
	}
	c = NewChooser(WithIntN(func(int) int { return -3 }))
	if got := c.ChooseSymbol(); got != "A" {
		t.Errorf("negative draw should clamp to first entry, got %q", got)
	}

	sub := NewChooser(WithSymbols("t", "E", "t", "#"), WithIntN(func(int) int { return 1 }))
	if sub.String() != "ET" {
		t.Errorf("subset = %q, want catalog order ET", sub.String())
	}
	if got := sub.ChooseSymbol(); got != "T" {
		t.Errorf("ChooseSymbol = %q", got)
	}

	empty := NewChooser(WithSymbols())
	if _, ok := empty.ChooseEntry(); ok {
		t.Error("empty chooser should not yield an entry")
	}
	if empty.ChooseSymbol() != "" {
		t.Error("empty chooser should yield empty symbol")
	}
}

func TestChooserDefaultRandomStaysInCatalog(t *testing.T) {
	c := NewChooser()
	for i := 0; i < 100; i++ {
		if s := c.ChooseSymbol(); !IsSupported(s) {
			t.Fatalf("draw %d produced unsupported symbol %q", i, s)
		}
	}
}

func TestParseSymbols(t *testing.T) {
	got := ParseSymbols("e, t,a n e")
	if !reflect.DeepEqual(got, []string{"E", "T", "A", "N"}) {
		t.Errorf("ParseSymbols = %v", got)
	}
}

func TestTimeline(t *testing.T) {
	tones, total := Timeline([]string{"a", "?", "e"}, 100)
	want := []Tone{
		{On: true, Ms: 100},
		{On: false, Ms: 100},
		{On: true, Ms: 300},
		{On: false, Ms: 300},
		{On: true, Ms: 100},
	}
	if !reflect.DeepEqual(tones, want) {
		t.Errorf("Timeline = %+v", tones)
	}
	if total != 900 {
		t.Errorf("total = %d, want 900", total)
	}
	if tones, total := Timeline(nil, 100); len(tones) != 0 || total != 0 {
		t.Errorf("empty Timeline = %v,%d", tones, total)
	}
}
