package morse

// Tone is one step of a keying schedule: the key is down (On) or up for Ms.
type Tone struct {
	On bool `json:"on"`
	Ms int  `json:"ms"`
}

const (
	elementGapUnits = 1
	symbolGapUnits  = 3
)

// Timeline builds the schedule a driver follows to play symbols back:
// each element keyed for pattern×unitMs, one unit between elements and three
// units between symbols. Unknown symbols are skipped. The total duration is
// returned alongside the steps.
func Timeline(symbols []string, unitMs int) ([]Tone, int) {
	if unitMs < 1 {
		unitMs = 1
	}
	var (
		out   []Tone
		total int
	)
	add := func(on bool, ms int) {
		out = append(out, Tone{On: on, Ms: ms})
		total += ms
	}
	first := true
	for _, s := range symbols {
		pattern, ok := PatternOfSymbol(s)
		if !ok {
			continue
		}
		if !first {
			add(false, symbolGapUnits*unitMs)
		}
		first = false
		for i, units := range pattern {
			if i > 0 {
				add(false, elementGapUnits*unitMs)
			}
			add(true, units*unitMs)
		}
	}
	return out, total
}
