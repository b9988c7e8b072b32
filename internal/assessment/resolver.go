package assessment

// Resolve aggregates the criterion-level results of a candidate into a single decision for step.
//
// Results for other steps are ignored. When the candidate has no result at all for the step the step
// is undecided. Otherwise every criterion the step requires is checked and the most severe outcome
// wins: Unsuccessful, then NoDecision, then Hold. A missing or unset result counts as NoDecision.
// With nothing severe found the step is Successful, which includes a step without requirements.
func Resolve(step Step, results []Result) StepDecision {
	subset := resultsForStep(step.ID, results)
	if len(subset) == 0 {
		return StepNoDecision
	}

	decision := StepSuccessful
	for _, criterion := range step.Criteria() {
		decision = Worst(decision, criterionOutcome(criterion, subset))
	}
	return decision
}

// ResolveAll resolves every step for one candidate.
func ResolveAll(steps []Step, results []Result) map[StepID]StepDecision {
	decisions := make(map[StepID]StepDecision, len(steps))
	for _, step := range steps {
		decisions[step.ID] = Resolve(step, results)
	}
	return decisions
}

// criterionOutcome inspects every result for criterion; duplicates all count.
func criterionOutcome(criterion Criterion, results []Result) StepDecision {
	found := false
	outcome := StepSuccessful
	for _, result := range results {
		if result.Criterion != criterion {
			continue
		}
		found = true
		outcome = Worst(outcome, result.Decision.Outcome())
	}
	if !found {
		return StepNoDecision
	}
	return outcome
}

func resultsForStep(id StepID, results []Result) []Result {
	var subset []Result
	for _, result := range results {
		if result.StepID == id {
			subset = append(subset, result)
		}
	}
	return subset
}
