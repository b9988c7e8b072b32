package assessment

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is where a candidate currently is in a pipeline: the index of the first step that
// blocks them, or completed when no step blocks. Completed is not the same as undecided.
type Position struct {
	index     int
	completed bool
}

// Completed is the position of a candidate that no step blocks.
var Completed = Position{completed: true}

// AtStep returns the position for the step at index in the ordered steps.
func AtStep(index int) Position {
	return Position{index: index}
}

func (p Position) IsCompleted() bool { return p.completed }

// Index returns the step index and false when the position is completed.
func (p Position) Index() (int, bool) {
	if p.completed {
		return 0, false
	}
	return p.index, true
}

// Reaches reports whether a candidate at p has reached the step at index.
func (p Position) Reaches(index int) bool {
	return p.completed || p.index >= index
}

func (p Position) String() string {
	if p.completed {
		return "completed"
	}
	return strconv.Itoa(p.index)
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	if strings.EqualFold(value, "completed") {
		*p = Completed
		return nil
	}
	index, err := strconv.Atoi(value)
	if err != nil || index < 0 {
		return fmt.Errorf("invalid position %q", string(text))
	}
	*p = AtStep(index)
	return nil
}

// CurrentPosition scans steps in sort order and returns the first one whose decision is
// Unsuccessful or NoDecision. A step missing from decisions is undecided. Hold never blocks.
func CurrentPosition(steps []Step, decisions map[StepID]StepDecision) Position {
	for index, step := range OrderSteps(steps) {
		decision, ok := decisions[step.ID]
		if !ok {
			decision = StepNoDecision
		}
		if decision.Blocks() {
			return AtStep(index)
		}
	}
	return Completed
}
