package assessment

import "fmt"

// Category is the display category of a candidate's status pill.
type Category string

const (
	CategoryToAssess     Category = "to_assess"
	CategoryDisqualified Category = "disqualified"
	CategoryRemoved      Category = "removed"
	CategoryQualified    Category = "qualified"
	CategoryNotAvailable Category = "not_available"
)

// StatusPill is what a status renderer shows for a candidate.
type StatusPill struct {
	Category Category `json:"category" yaml:"category"`
	// Step is the 1-based step the candidate is to be assessed at, 0 when not shown.
	Step int `json:"step,omitempty" yaml:"step,omitempty"`
}

// Label renders the pill as text, e.g. "to_assess: step 2".
func (p StatusPill) Label() string {
	if p.Step > 0 {
		return fmt.Sprintf("%s: step %d", p.Category, p.Step)
	}
	return string(p.Category)
}

// Present maps the overall status and position of a candidate to a status pill. The first
// matching rule wins: to assess, disqualified, removed, qualified, then not available.
// Only the to-assess category carries a step, and only when the position is a step index.
func Present(status CandidateStatus, position Position) StatusPill {
	switch {
	case status.IsToAssess():
		pill := StatusPill{Category: CategoryToAssess}
		if index, ok := position.Index(); ok {
			pill.Step = index + 1
		}
		return pill
	case status.IsDisqualified():
		return StatusPill{Category: CategoryDisqualified}
	case status.IsRemoved():
		return StatusPill{Category: CategoryRemoved}
	case status.IsQualified():
		return StatusPill{Category: CategoryQualified}
	default:
		return StatusPill{Category: CategoryNotAvailable}
	}
}
