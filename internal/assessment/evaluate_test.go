package assessment

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// pipelineSteps returns three steps with two required skills each, the first one being
// the application screening.
func pipelineSteps() []Step {
	return []Step{
		{ID: "assessment", SortOrder: 3, RequiredSkills: []SkillID{"leadership", "judgement"}},
		{ID: "screening", SortOrder: 1, Kind: KindApplicationScreening, RequiredSkills: []SkillID{"communication", "analysis"}},
		{ID: "exam", SortOrder: 2, RequiredSkills: []SkillID{"writing", "policy"}},
	}
}

func allSuccessful() []Result {
	var results []Result
	for _, step := range pipelineSteps() {
		for _, skill := range step.RequiredSkills {
			results = append(results, skillResult(step.ID, skill, DecisionSuccessful))
		}
	}
	return append(results, educationResult("screening", DecisionSuccessful))
}

// withDecision returns all-successful results with the decision for skill at step replaced.
func withDecision(step StepID, skill SkillID, d Decision) []Result {
	results := allSuccessful()
	for i := range results {
		if results[i].StepID == step && results[i].Criterion == SkillCriterion(skill) {
			results[i].Decision = d
		}
	}
	return results
}

func withoutSkill(results []Result, step StepID, skill SkillID) []Result {
	kept := results[:0]
	for _, result := range results {
		if result.StepID == step && result.Criterion == SkillCriterion(skill) {
			continue
		}
		kept = append(kept, result)
	}
	return kept
}

func scenarioCandidates() []Candidate {
	return []Candidate{
		{ID: "X", Status: StatusQualifiedAvailable, Results: allSuccessful()},
		{ID: "Y", Status: StatusUnderAssessment, Results: withDecision("exam", "writing", DecisionHold)},
		{ID: "Z", Status: StatusUnderAssessment, Results: withoutSkill(withDecision("assessment", "leadership", DecisionHold), "assessment", "judgement")},
		{ID: "W", Status: StatusNewApplication},
		{ID: "V", Status: StatusScreenedOutAssessment, Results: withDecision("exam", "policy", DecisionUnsuccessful)},
	}
}

func TestEvaluateScenario(t *testing.T) {
	t.Parallel()

	e := Evaluate(pipelineSteps(), scenarioCandidates())

	order := []StepID{"screening", "exam", "assessment"}
	for i, step := range e.Steps {
		if step.ID != order[i] {
			t.Fatalf("step %d: expected %s, got %s", i, order[i], step.ID)
		}
	}

	expectDecisions := map[CandidateID][]StepDecision{
		"X": {StepSuccessful, StepSuccessful, StepSuccessful},
		"Y": {StepSuccessful, StepHold, StepSuccessful},
		"Z": {StepSuccessful, StepSuccessful, StepNoDecision},
		"W": {StepNoDecision, StepNoDecision, StepNoDecision},
		"V": {StepSuccessful, StepUnsuccessful, StepSuccessful},
	}
	for id, expect := range expectDecisions {
		for i, stepID := range order {
			if got := e.Decisions[id][stepID]; got != expect[i] {
				t.Fatalf("%s at %s: expected %s, got %s", id, stepID, expect[i], got)
			}
		}
	}

	expectPositions := map[CandidateID]Position{
		"X": Completed,
		"Y": Completed,
		"Z": AtStep(2),
		"W": AtStep(0),
		"V": AtStep(1),
	}
	for id, expect := range expectPositions {
		if got := e.Positions[id]; got != expect {
			t.Fatalf("%s: expected position %s, got %s", id, expect, got)
		}
	}

	expectCounts := map[StepID]DecisionCounts{
		"screening":  {Successful: 4, NoDecision: 1},
		"exam":       {Successful: 2, Hold: 1, Unsuccessful: 1},
		"assessment": {Successful: 2, NoDecision: 1},
	}
	for id, expect := range expectCounts {
		if got := e.Counts[id]; got != expect {
			t.Fatalf("%s: expected counts %+v, got %+v", id, expect, got)
		}
	}

	expectPills := map[CandidateID]StatusPill{
		"X": {Category: CategoryQualified},
		"Y": {Category: CategoryToAssess},
		"Z": {Category: CategoryToAssess, Step: 3},
		"W": {Category: CategoryToAssess, Step: 1},
		"V": {Category: CategoryDisqualified},
	}
	for id, expect := range expectPills {
		if got := e.Pills[id]; got != expect {
			t.Fatalf("%s: expected pill %+v, got %+v", id, expect, got)
		}
	}
}

func TestEvaluateEmptyPipeline(t *testing.T) {
	t.Parallel()

	e := Evaluate(nil, []Candidate{{ID: "A", Results: allSuccessful()}})
	if len(e.Counts) != 0 {
		t.Fatalf("expected no counts, got %d", len(e.Counts))
	}
	if len(e.Decisions["A"]) != 0 {
		t.Fatalf("expected no decisions, got %d", len(e.Decisions["A"]))
	}
	if !e.Positions["A"].IsCompleted() {
		t.Fatalf("expected completed position for empty pipeline")
	}
}

func TestEvaluateIgnoresUnknownSteps(t *testing.T) {
	t.Parallel()

	results := append(allSuccessful(), skillResult("ghost", "communication", DecisionUnsuccessful))
	e := Evaluate(pipelineSteps(), []Candidate{{ID: "A", Results: results}})
	if !e.Positions["A"].IsCompleted() {
		t.Fatalf("expected completed, got %s", e.Positions["A"])
	}
	if _, ok := e.Decisions["A"]["ghost"]; ok {
		t.Fatalf("did not expect a decision for an unknown step")
	}
}

func TestEvaluateEarliestFailureWins(t *testing.T) {
	t.Parallel()

	results := withDecision("exam", "writing", DecisionUnsuccessful)
	for i := range results {
		if results[i].StepID == "assessment" {
			results[i].Decision = DecisionUnsuccessful
		}
	}

	e := Evaluate(pipelineSteps(), []Candidate{{ID: "A", Results: results}})
	if got := e.Positions["A"]; got != AtStep(1) {
		t.Fatalf("expected position 1, got %s", got)
	}
}

func TestEvaluatorLogsFunnelSteps(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	ev := NewEvaluator(zap.New(core))

	candidates := append(scenarioCandidates(), Candidate{
		ID:      "U",
		Results: []Result{skillResult("ghost", "go", DecisionHold)},
	})
	e := ev.Evaluate(pipelineSteps(), candidates)
	if e.RunID == "" {
		t.Fatalf("expected run id to be set")
	}

	if warnings := observed.FilterMessage("ignoring result for unknown step").Len(); warnings != 1 {
		t.Fatalf("expected 1 warning, got %d", warnings)
	}

	steps := observed.FilterMessage("funnel step").All()
	if len(steps) != 3 {
		t.Fatalf("expected 3 funnel step entries, got %d", len(steps))
	}

	first := steps[0].ContextMap()
	if first["name"] != "screening" {
		t.Fatalf("expected first step to be screening, got %v", first["name"])
	}
	if first["run_id"] != e.RunID {
		t.Fatalf("expected run id %s, got %v", e.RunID, first["run_id"])
	}
	if first["reached"] != int64(6) {
		t.Fatalf("expected 6 candidates at screening, got %v", first["reached"])
	}
}

func TestNewEvaluatorWithNilLogger(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(nil).Evaluate(pipelineSteps(), nil)
	if len(e.Counts) != 3 {
		t.Fatalf("expected counts for 3 steps, got %d", len(e.Counts))
	}
}
