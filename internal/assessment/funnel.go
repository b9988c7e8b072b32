package assessment

// DecisionCounts tallies step decisions for one step.
type DecisionCounts struct {
	NoDecision   int `json:"no_decision" yaml:"no_decision"`
	Hold         int `json:"hold" yaml:"hold"`
	Successful   int `json:"successful" yaml:"successful"`
	Unsuccessful int `json:"unsuccessful" yaml:"unsuccessful"`
}

// Add counts one decision. Unknown decisions count as NoDecision.
func (c *DecisionCounts) Add(d StepDecision) {
	switch d {
	case StepHold:
		c.Hold++
	case StepSuccessful:
		c.Successful++
	case StepUnsuccessful:
		c.Unsuccessful++
	default:
		c.NoDecision++
	}
}

// Get returns the bucket for d.
func (c DecisionCounts) Get(d StepDecision) int {
	switch d {
	case StepHold:
		return c.Hold
	case StepSuccessful:
		return c.Successful
	case StepUnsuccessful:
		return c.Unsuccessful
	default:
		return c.NoDecision
	}
}

func (c DecisionCounts) Total() int {
	return c.NoDecision + c.Hold + c.Successful + c.Unsuccessful
}

// Aggregate tallies per-step decisions across candidates with cascading eligibility.
//
// A candidate is counted at the step with ordered index i when its position is completed or at
// least i, so a candidate who moved past a step is still counted there with the decision they
// earned. Eligibility is evaluated per step from the stored position only. The candidate set is
// the key set of positions; a missing decision counts as NoDecision.
func Aggregate(steps []Step, decisions map[CandidateID]map[StepID]StepDecision, positions map[CandidateID]Position) map[StepID]DecisionCounts {
	counts := make(map[StepID]DecisionCounts, len(steps))
	for index, step := range OrderSteps(steps) {
		var bucket DecisionCounts
		for candidateID, position := range positions {
			if !position.Reaches(index) {
				continue
			}
			decision, ok := decisions[candidateID][step.ID]
			if !ok {
				decision = StepNoDecision
			}
			bucket.Add(decision)
		}
		counts[step.ID] = bucket
	}
	return counts
}
