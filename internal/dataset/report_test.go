package dataset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/spigell/assessment-funnel/internal/assessment"
)

func loadReport(t *testing.T) *Report {
	t.Helper()

	p, err := LoadFromFile("testdata/pipeline.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewReport(p, assessment.Evaluate(p.Steps, p.Candidates))
}

func TestNewReport(t *testing.T) {
	t.Parallel()

	r := loadReport(t)

	if r.Pipeline != "policy-analyst" {
		t.Fatalf("unexpected pipeline name %q", r.Pipeline)
	}

	expectSteps := []struct {
		id     assessment.StepID
		counts assessment.DecisionCounts
	}{
		{id: "screening", counts: assessment.DecisionCounts{Successful: 1, Hold: 1, NoDecision: 1}},
		{id: "exam", counts: assessment.DecisionCounts{Successful: 1, Unsuccessful: 1}},
		{id: "interview", counts: assessment.DecisionCounts{Successful: 1}},
	}
	for i, want := range expectSteps {
		step := r.Steps[i]
		if step.ID != want.id || step.Number != i+1 {
			t.Fatalf("step %d: unexpected %+v", i, step)
		}
		if step.Counts != want.counts {
			t.Fatalf("%s: expected %+v, got %+v", want.id, want.counts, step.Counts)
		}
	}

	ids := strings.Join(r.CandidateIDs(), ",")
	if ids != "v,w,x" {
		t.Fatalf("expected candidates sorted by id, got %s", ids)
	}

	v := r.FindCandidate("v")
	if v == nil {
		t.Fatalf("expected candidate v")
	}
	if v.CurrentStep != "exam" || v.Position != assessment.AtStep(1) {
		t.Fatalf("unexpected position for v: %s at %s", v.Position, v.CurrentStep)
	}
	if v.Pill != (assessment.StatusPill{Category: assessment.CategoryToAssess, Step: 2}) {
		t.Fatalf("unexpected pill for v: %+v", v.Pill)
	}
	expectDecisions := []assessment.StepDecision{assessment.StepHold, assessment.StepUnsuccessful, assessment.StepNoDecision}
	for i, d := range expectDecisions {
		if v.Decisions[i] != d {
			t.Fatalf("v step %d: expected %s, got %s", i, d, v.Decisions[i])
		}
	}

	if r.FindCandidate("nobody") != nil {
		t.Fatalf("did not expect unknown candidate")
	}
}

func TestReportByStep(t *testing.T) {
	t.Parallel()

	byStep := loadReport(t).ReportByStep()

	if got := strings.Join(byStep.Completed, ","); got != "x" {
		t.Fatalf("expected x completed, got %s", got)
	}

	expect := map[string]string{
		"exam":      "v",
		"screening": "w",
	}
	if len(byStep.Blocked) != len(expect) {
		t.Fatalf("expected %d groups, got %d: %v", len(expect), len(byStep.Blocked), byStep.Blocked)
	}
	for key, ids := range expect {
		if got := strings.Join(byStep.Blocked[key], ","); got != ids {
			t.Fatalf("%s: expected %s, got %s", key, ids, got)
		}
	}
}

func TestReportByStepNamedCompleted(t *testing.T) {
	t.Parallel()

	p := &Pipeline{
		Steps: []assessment.Step{{ID: "completed", SortOrder: 1, RequiredSkills: []assessment.SkillID{"go"}}},
		Candidates: []assessment.Candidate{
			{ID: "done", Results: []assessment.Result{
				{StepID: "completed", Criterion: assessment.SkillCriterion("go"), Decision: assessment.DecisionSuccessful},
			}},
			{ID: "stuck"},
		},
	}

	byStep := NewReport(p, assessment.Evaluate(p.Steps, p.Candidates)).ReportByStep()

	if got := strings.Join(byStep.Completed, ","); got != "done" {
		t.Fatalf("expected only done to be completed, got %s", got)
	}
	if got := strings.Join(byStep.Blocked["completed"], ","); got != "stuck" {
		t.Fatalf("expected stuck blocked at the step named completed, got %s", got)
	}
}

func TestReportWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := loadReport(t).Write(&buf, FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	candidates := decoded["candidates"].([]any)
	x := candidates[2].(map[string]any)
	if x["position"] != "completed" {
		t.Fatalf("expected completed position, got %v", x["position"])
	}
	if _, ok := x["current_step"]; ok {
		t.Fatalf("did not expect current_step for completed candidate")
	}

	steps := decoded["steps"].([]any)
	kind := steps[0].(map[string]any)["kind"]
	if kind != "application-screening" {
		t.Fatalf("unexpected kind %v", kind)
	}
}

func TestReportWriteYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := loadReport(t).Write(&buf, FormatYAML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Steps []struct {
			ID     string         `yaml:"id"`
			Counts map[string]int `yaml:"counts"`
		} `yaml:"steps"`
		Candidates []struct {
			ID        string   `yaml:"id"`
			Decisions []string `yaml:"decisions"`
			Position  string   `yaml:"position"`
		} `yaml:"candidates"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}

	if decoded.Steps[0].Counts["no_decision"] != 1 {
		t.Fatalf("unexpected screening counts: %v", decoded.Steps[0].Counts)
	}
	w := decoded.Candidates[1]
	if w.ID != "w" || w.Position != "0" || w.Decisions[0] != "no_decision" {
		t.Fatalf("unexpected candidate w: %+v", w)
	}
}

func TestReportWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := loadReport(t).Write(&buf, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"NO DECISION", "2 (exam)", "to_assess: step 2", "completed", "qualified"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q, got:\n%s", want, out)
		}
	}
}

func TestReportWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	if err := loadReport(t).Write(&bytes.Buffer{}, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestReportFiles(t *testing.T) {
	t.Parallel()

	r := loadReport(t)

	name, err := r.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !json.Valid(data) {
		t.Fatalf("expected dumped report to be json")
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := r.ToFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(data), "pipeline: policy-analyst") {
		t.Fatalf("expected yaml report, got:\n%s", data)
	}
}

func TestReportDumpRemovesFileOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name, err := loadReport(t).dumpTo(dir, "xml")
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if name != "" {
		t.Fatalf("expected no file name on error, got %q", name)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected partial dump to be removed, found %d files", len(entries))
	}
}

func TestCandidateDetails(t *testing.T) {
	t.Parallel()

	r := loadReport(t)
	details := r.FindCandidate("v").Details(r.Steps)

	if details["step 2 exam"] != "unsuccessful" {
		t.Fatalf("unexpected exam decision: %v", details)
	}
	if details["position"] != "2 (exam)" {
		t.Fatalf("unexpected position: %v", details["position"])
	}
}
