// Package overlay decides, for every token on a canvas, whether a distance
// label exists, is visible, and what it shows.
package overlay

// Trigger names one independent reason a label could be shown.
type Trigger int

const (
	TriggerHover Trigger = iota
	TriggerHighlightAll
	TriggerTargeted
)

// Triggers is the per-token set of active reasons. The reasons are
// independent: clearing one never touches another, and the label is a
// candidate for visibility as long as any one of them is set.
type Triggers struct {
	Hover        bool
	HighlightAll bool
	Targeted     bool
}

func (t *Triggers) Set(tr Trigger, active bool) {
	switch tr {
	case TriggerHover:
		t.Hover = active
	case TriggerHighlightAll:
		t.HighlightAll = active
	case TriggerTargeted:
		t.Targeted = active
	}
}

func (t Triggers) Has(tr Trigger) bool {
	switch tr {
	case TriggerHover:
		return t.Hover
	case TriggerHighlightAll:
		return t.HighlightAll
	case TriggerTargeted:
		return t.Targeted
	}
	return false
}

// Any reports whether at least one trigger is set.
func (t Triggers) Any() bool {
	return t.Hover || t.HighlightAll || t.Targeted
}
