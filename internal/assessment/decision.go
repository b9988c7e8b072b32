package assessment

import (
	"fmt"
	"strings"
)

// Decision is the outcome recorded for a single criterion of a single step.
type Decision int

const (
	DecisionUnset Decision = iota
	DecisionHold
	DecisionSuccessful
	DecisionUnsuccessful
)

var decisionNames = map[Decision]string{
	DecisionUnset:        "unset",
	DecisionHold:         "hold",
	DecisionSuccessful:   "successful",
	DecisionUnsuccessful: "unsuccessful",
}

func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the lowercase names. An empty value decodes to DecisionUnset.
func (d *Decision) UnmarshalText(text []byte) error {
	value := strings.ToLower(strings.TrimSpace(string(text)))
	if value == "" {
		*d = DecisionUnset
		return nil
	}
	for decision, name := range decisionNames {
		if name == value {
			*d = decision
			return nil
		}
	}
	return fmt.Errorf("unknown decision %q", string(text))
}

// Outcome maps a recorded decision onto the step level. Unset means nothing was decided yet.
func (d Decision) Outcome() StepDecision {
	switch d {
	case DecisionHold:
		return StepHold
	case DecisionSuccessful:
		return StepSuccessful
	case DecisionUnsuccessful:
		return StepUnsuccessful
	default:
		return StepNoDecision
	}
}

// StepDecision is the aggregated outcome of one step for one candidate.
type StepDecision int

const (
	StepNoDecision StepDecision = iota
	StepHold
	StepSuccessful
	StepUnsuccessful
)

// StepDecisions lists every step decision from the least to the most severe.
var StepDecisions = []StepDecision{StepSuccessful, StepHold, StepNoDecision, StepUnsuccessful}

var stepDecisionNames = map[StepDecision]string{
	StepNoDecision:   "no_decision",
	StepHold:         "hold",
	StepSuccessful:   "successful",
	StepUnsuccessful: "unsuccessful",
}

func (d StepDecision) String() string {
	if name, ok := stepDecisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("step_decision(%d)", int(d))
}

func (d StepDecision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *StepDecision) UnmarshalText(text []byte) error {
	value := strings.ToLower(strings.TrimSpace(string(text)))
	for decision, name := range stepDecisionNames {
		if name == value {
			*d = decision
			return nil
		}
	}
	return fmt.Errorf("unknown step decision %q", string(text))
}

// Severity orders step decisions: Unsuccessful > NoDecision > Hold > Successful.
func (d StepDecision) Severity() int {
	switch d {
	case StepUnsuccessful:
		return 3
	case StepNoDecision:
		return 2
	case StepHold:
		return 1
	case StepSuccessful:
		return 0
	default:
		// unknown values are treated as undecided
		return 2
	}
}

// Blocks reports whether the decision stops a candidate at its step. Hold does not block.
func (d StepDecision) Blocks() bool {
	return d == StepUnsuccessful || d == StepNoDecision
}

// Worst returns the more severe of two decisions.
func Worst(a, b StepDecision) StepDecision {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}
