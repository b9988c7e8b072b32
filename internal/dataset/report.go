package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/spigell/assessment-funnel/internal/assessment"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"

	completedLabel = "completed"
)

// Report is the rendered outcome of an evaluation in pipeline order.
type Report struct {
	Pipeline   string            `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
	RunID      string            `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Steps      []StepReport      `json:"steps" yaml:"steps"`
	Candidates []CandidateReport `json:"candidates" yaml:"candidates"`
}

type StepReport struct {
	ID     assessment.StepID         `json:"id" yaml:"id"`
	Number int                       `json:"number" yaml:"number"`
	Kind   assessment.StepKind       `json:"kind" yaml:"kind"`
	Counts assessment.DecisionCounts `json:"counts" yaml:"counts"`
}

type CandidateReport struct {
	ID     assessment.CandidateID     `json:"id" yaml:"id"`
	Status assessment.CandidateStatus `json:"status,omitempty" yaml:"status,omitempty"`
	// Decisions are aligned with Report.Steps.
	Decisions []assessment.StepDecision `json:"decisions" yaml:"decisions"`
	Position  assessment.Position       `json:"position" yaml:"position"`
	// CurrentStep is the step the candidate is blocked at, empty when completed.
	CurrentStep assessment.StepID     `json:"current_step,omitempty" yaml:"current_step,omitempty"`
	Pill        assessment.StatusPill `json:"pill" yaml:"pill"`
}

// NewReport builds a report. Candidates are sorted by ID.
func NewReport(p *Pipeline, e *assessment.Evaluation) *Report {
	r := &Report{
		Pipeline: p.Name,
		RunID:    e.RunID,
		Steps:    make([]StepReport, 0, len(e.Steps)),
	}

	for i, step := range e.Steps {
		r.Steps = append(r.Steps, StepReport{
			ID:     step.ID,
			Number: i + 1,
			Kind:   step.Kind,
			Counts: e.Counts[step.ID],
		})
	}

	r.Candidates = make([]CandidateReport, 0, len(p.Candidates))
	for _, candidate := range p.Candidates {
		position, ok := e.Positions[candidate.ID]
		if !ok {
			continue
		}

		cr := CandidateReport{
			ID:        candidate.ID,
			Status:    candidate.Status,
			Decisions: make([]assessment.StepDecision, 0, len(e.Steps)),
			Position:  position,
			Pill:      e.Pills[candidate.ID],
		}
		for _, step := range e.Steps {
			cr.Decisions = append(cr.Decisions, e.Decisions[candidate.ID][step.ID])
		}
		if index, ok := position.Index(); ok && index < len(e.Steps) {
			cr.CurrentStep = e.Steps[index].ID
		}
		r.Candidates = append(r.Candidates, cr)
	}

	sort.Slice(r.Candidates, func(i, j int) bool {
		return r.Candidates[i].ID < r.Candidates[j].ID
	})

	return r
}

// StepBreakdown lists candidate IDs by where they are in the pipeline. Finished candidates are
// kept apart from the steps, so a step may be named anything.
type StepBreakdown struct {
	Completed []string            `json:"completed" yaml:"completed"`
	Blocked   map[string][]string `json:"blocked" yaml:"blocked"`
}

// ReportByStep groups candidate IDs by the step they are blocked at.
func (r *Report) ReportByStep() StepBreakdown {
	breakdown := StepBreakdown{Blocked: make(map[string][]string)}
	for _, candidate := range r.Candidates {
		if candidate.Position.IsCompleted() {
			breakdown.Completed = append(breakdown.Completed, string(candidate.ID))
			continue
		}
		step := string(candidate.CurrentStep)
		breakdown.Blocked[step] = append(breakdown.Blocked[step], string(candidate.ID))
	}
	return breakdown
}

// FindCandidate returns the candidate report with the given id or nil.
func (r *Report) FindCandidate(id string) *CandidateReport {
	for i := range r.Candidates {
		if string(r.Candidates[i].ID) == id {
			return &r.Candidates[i]
		}
	}
	return nil
}

// CandidateIDs returns the candidate IDs in report order.
func (r *Report) CandidateIDs() []string {
	ids := make([]string, 0, len(r.Candidates))
	for _, candidate := range r.Candidates {
		ids = append(ids, string(candidate.ID))
	}
	return ids
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		return r.writeTable(w)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func (r *Report) writeTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "STEP\tID\tKIND\tREACHED\tSUCCESSFUL\tHOLD\tNO DECISION\tUNSUCCESSFUL")
	for _, step := range r.Steps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			step.Number, step.ID, step.Kind, step.Counts.Total(),
			step.Counts.Successful, step.Counts.Hold, step.Counts.NoDecision, step.Counts.Unsuccessful,
		)
	}
	fmt.Fprintln(tw)

	header := []string{"CANDIDATE"}
	for _, step := range r.Steps {
		header = append(header, string(step.ID))
	}
	header = append(header, "POSITION", "STATUS")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, candidate := range r.Candidates {
		row := []string{string(candidate.ID)}
		for _, decision := range candidate.Decisions {
			row = append(row, decision.String())
		}
		row = append(row, candidate.positionLabel(), candidate.Pill.Label())
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// positionLabel shows the 1-based step number.
func (c CandidateReport) positionLabel() string {
	index, ok := c.Position.Index()
	if !ok {
		return completedLabel
	}
	return fmt.Sprintf("%d (%s)", index+1, c.CurrentStep)
}

// DumpToTmpFile writes the report as JSON to a temporary file and returns its name.
func (r *Report) DumpToTmpFile() (string, error) {
	return r.dumpTo("", FormatJSON)
}

// dumpTo writes the report to a new temporary file in dir. The file is removed when
// writing fails.
func (r *Report) dumpTo(dir, format string) (name string, err error) {
	file, err := os.CreateTemp(dir, "report_*."+format)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(file.Name())
			name = ""
		}
	}()

	if err := r.Write(file, format); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ToFile writes the report to path, picking the format from the extension.
func (r *Report) ToFile(path string) (err error) {
	format := FormatJSON
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		format = FormatYAML
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return r.Write(file, format)
}

// Details returns a flat description of a candidate for interactive inspection.
func (c CandidateReport) Details(steps []StepReport) map[string]string {
	details := map[string]string{
		"status":   string(c.Status),
		"position": c.positionLabel(),
		"pill":     c.Pill.Label(),
	}
	for i, step := range steps {
		if i < len(c.Decisions) {
			details["step "+strconv.Itoa(step.Number)+" "+string(step.ID)] = c.Decisions[i].String()
		}
	}
	return details
}
