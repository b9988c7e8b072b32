package dataset

import (
	"fmt"

	"github.com/spigell/assessment-funnel/internal/assessment"
)

// Mismatch is an expectation from the pipeline document that the evaluation did not meet.
type Mismatch struct {
	Candidate assessment.CandidateID
	// Step is empty for a position mismatch.
	Step     assessment.StepID
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	if m.Step == "" {
		return fmt.Sprintf("candidate %s: expected position %s, got %s", m.Candidate, m.Expected, m.Actual)
	}
	return fmt.Sprintf("candidate %s at step %s: expected %s, got %s", m.Candidate, m.Step, m.Expected, m.Actual)
}

// Verify compares the evaluation with the expectations of the pipeline. Mismatches come in
// candidate order, the position first, then decisions in step order.
func (p *Pipeline) Verify(e *assessment.Evaluation) []Mismatch {
	var mismatches []Mismatch

	for _, candidate := range p.Candidates {
		expectation, ok := p.Expectations[candidate.ID]
		if !ok {
			continue
		}

		if expectation.Position != nil {
			actual := e.Positions[candidate.ID]
			if actual != *expectation.Position {
				mismatches = append(mismatches, Mismatch{
					Candidate: candidate.ID,
					Expected:  expectation.Position.String(),
					Actual:    actual.String(),
				})
			}
		}

		for _, step := range e.Steps {
			expected, ok := expectation.Decisions[step.ID]
			if !ok {
				continue
			}
			actual, ok := e.Decisions[candidate.ID][step.ID]
			if !ok {
				actual = assessment.StepNoDecision
			}
			if actual != expected {
				mismatches = append(mismatches, Mismatch{
					Candidate: candidate.ID,
					Step:      step.ID,
					Expected:  expected.String(),
					Actual:    actual.String(),
				})
			}
		}
	}

	return mismatches
}
