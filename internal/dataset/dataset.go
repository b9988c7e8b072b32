package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spigell/assessment-funnel/internal/assessment"
)

const educationCriterion = "education"

var (
	ErrMissingID          = errors.New("missing id")
	ErrDuplicateStep      = errors.New("duplicate step")
	ErrDuplicateOrder     = errors.New("duplicate sort order")
	ErrDuplicateCandidate = errors.New("duplicate candidate")
	ErrInvalidCriterion   = errors.New("invalid criterion")
	ErrUnknownStep        = errors.New("unknown step")
)

// Document is the raw pipeline document as written in a file.
type Document struct {
	Name       string            `mapstructure:"name"`
	Steps      []StepRecord      `mapstructure:"steps"`
	Candidates []CandidateRecord `mapstructure:"candidates"`
}

type StepRecord struct {
	ID             string              `mapstructure:"id"`
	SortOrder      int                 `mapstructure:"sort-order"`
	Kind           assessment.StepKind `mapstructure:"kind"`
	RequiredSkills []string            `mapstructure:"required-skills"`
}

type CandidateRecord struct {
	ID      string         `mapstructure:"id"`
	Status  string         `mapstructure:"status"`
	Results []ResultRecord `mapstructure:"results"`
	Expect  *ExpectRecord  `mapstructure:"expect"`
}

// ExpectRecord holds what a candidate is expected to end up with. Position is a step index
// or "completed"; decisions are keyed by step ID.
type ExpectRecord struct {
	Position  string                             `mapstructure:"position"`
	Decisions map[string]assessment.StepDecision `mapstructure:"decisions"`
}

// ResultRecord names either a skill or the education criterion.
type ResultRecord struct {
	ID        string              `mapstructure:"id"`
	Step      string              `mapstructure:"step"`
	Skill     string              `mapstructure:"skill"`
	Criterion string              `mapstructure:"criterion"`
	Decision  assessment.Decision `mapstructure:"decision"`
}

// Pipeline holds the engine records built from a document.
type Pipeline struct {
	Name       string
	Steps      []assessment.Step
	Candidates []assessment.Candidate
	// Expectations are only set for candidates with an expect block.
	Expectations map[assessment.CandidateID]Expectation
}

type Expectation struct {
	// Position is nil when no position is expected.
	Position  *assessment.Position
	Decisions map[assessment.StepID]assessment.StepDecision
}

// LoadFromFile reads a pipeline document in any format viper understands (yaml, json, toml, ...).
func LoadFromFile(path string) (*Pipeline, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading pipeline file %q: %w", path, err)
	}

	doc, err := Decode(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("decoding pipeline file %q: %w", path, err)
	}

	return doc.Pipeline()
}

// Decode converts a loosely typed document into a Document.
func Decode(raw map[string]any) (*Document, error) {
	var doc Document
	cfg := &mapstructure.DecoderConfig{
		Result:           &doc,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Pipeline validates the document and builds engine records from it. Results pointing to
// steps that are not in the document are kept; the engine ignores them.
func (d *Document) Pipeline() (*Pipeline, error) {
	p := &Pipeline{Name: strings.TrimSpace(d.Name)}

	ids := make(map[string]struct{}, len(d.Steps))
	orders := make(map[int]string, len(d.Steps))
	for i, record := range d.Steps {
		id := strings.TrimSpace(record.ID)
		if id == "" {
			return nil, fmt.Errorf("step #%d: %w", i+1, ErrMissingID)
		}
		if _, ok := ids[id]; ok {
			return nil, fmt.Errorf("step %q: %w", id, ErrDuplicateStep)
		}
		if other, ok := orders[record.SortOrder]; ok {
			return nil, fmt.Errorf("step %q: %w %d (also used by %q)", id, ErrDuplicateOrder, record.SortOrder, other)
		}
		ids[id] = struct{}{}
		orders[record.SortOrder] = id

		step := assessment.Step{
			ID:        assessment.StepID(id),
			SortOrder: record.SortOrder,
			Kind:      record.Kind,
		}
		for _, skill := range record.RequiredSkills {
			if skill = strings.TrimSpace(skill); skill != "" {
				step.RequiredSkills = append(step.RequiredSkills, assessment.SkillID(skill))
			}
		}
		p.Steps = append(p.Steps, step)
	}

	seen := make(map[string]struct{}, len(d.Candidates))
	for i, record := range d.Candidates {
		id := strings.TrimSpace(record.ID)
		if id == "" {
			return nil, fmt.Errorf("candidate #%d: %w", i+1, ErrMissingID)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("candidate %q: %w", id, ErrDuplicateCandidate)
		}
		seen[id] = struct{}{}

		candidate := assessment.Candidate{
			ID:     assessment.CandidateID(id),
			Status: assessment.NormalizeStatus(record.Status),
		}
		for j, result := range record.Results {
			criterion, err := result.criterion()
			if err != nil {
				return nil, fmt.Errorf("candidate %q result #%d: %w", id, j+1, err)
			}
			candidate.Results = append(candidate.Results, assessment.Result{
				ID:        strings.TrimSpace(result.ID),
				StepID:    assessment.StepID(strings.TrimSpace(result.Step)),
				Criterion: criterion,
				Decision:  result.Decision,
			})
		}
		p.Candidates = append(p.Candidates, candidate)

		if record.Expect != nil {
			expectation, err := record.Expect.expectation(p.Steps)
			if err != nil {
				return nil, fmt.Errorf("candidate %q expect: %w", id, err)
			}
			if p.Expectations == nil {
				p.Expectations = make(map[assessment.CandidateID]Expectation)
			}
			p.Expectations[candidate.ID] = expectation
		}
	}

	return p, nil
}

func (r ResultRecord) criterion() (assessment.Criterion, error) {
	skill := strings.TrimSpace(r.Skill)
	criterion := strings.ToLower(strings.TrimSpace(r.Criterion))

	switch {
	case skill != "" && criterion != "":
		return assessment.Criterion{}, fmt.Errorf("%w: both skill %q and criterion %q set", ErrInvalidCriterion, skill, criterion)
	case skill != "":
		return assessment.SkillCriterion(assessment.SkillID(skill)), nil
	case criterion == educationCriterion:
		return assessment.Education, nil
	case criterion != "":
		return assessment.Criterion{}, fmt.Errorf("%w: unknown criterion %q", ErrInvalidCriterion, criterion)
	default:
		return assessment.Criterion{}, fmt.Errorf("%w: neither skill nor criterion set", ErrInvalidCriterion)
	}
}

// expectation resolves the record against steps. Document keys may come lower-cased from the
// reader, so step IDs are matched case-insensitively.
func (r ExpectRecord) expectation(steps []assessment.Step) (Expectation, error) {
	var e Expectation

	if value := strings.TrimSpace(r.Position); value != "" {
		var position assessment.Position
		if err := position.UnmarshalText([]byte(value)); err != nil {
			return e, err
		}
		if index, ok := position.Index(); ok && index >= len(steps) {
			return e, fmt.Errorf("position %d is out of %d steps", index, len(steps))
		}
		e.Position = &position
	}

	for key, decision := range r.Decisions {
		id, ok := findStep(steps, key)
		if !ok {
			return e, fmt.Errorf("%w %q", ErrUnknownStep, key)
		}
		if e.Decisions == nil {
			e.Decisions = make(map[assessment.StepID]assessment.StepDecision, len(r.Decisions))
		}
		e.Decisions[id] = decision
	}

	return e, nil
}

func findStep(steps []assessment.Step, key string) (assessment.StepID, bool) {
	key = strings.TrimSpace(key)
	for _, step := range steps {
		if strings.EqualFold(string(step.ID), key) {
			return step.ID, true
		}
	}
	return "", false
}
