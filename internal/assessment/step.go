package assessment

import (
	"fmt"
	"sort"
	"strings"
)

type (
	StepID  string
	SkillID string
)

// StepKind distinguishes the application screening step from every other step.
type StepKind int

const (
	KindOther StepKind = iota
	KindApplicationScreening
)

func (k StepKind) String() string {
	switch k {
	case KindApplicationScreening:
		return "application-screening"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k StepKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts "application-screening" (also with underscores) and "other". Empty means other.
func (k *StepKind) UnmarshalText(text []byte) error {
	value := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(text))), "_", "-")
	switch value {
	case "application-screening", "screening":
		*k = KindApplicationScreening
	case "other", "":
		*k = KindOther
	default:
		return fmt.Errorf("unknown step kind %q", string(text))
	}
	return nil
}

// ExtraCriteria returns the criteria a step of this kind requires on top of its skills.
func (k StepKind) ExtraCriteria() []Criterion {
	if k == KindApplicationScreening {
		return []Criterion{Education}
	}
	return nil
}

// Criterion is what a result decides on: either a skill or the education requirement.
type Criterion struct {
	Skill     SkillID
	Education bool
}

// Education is the criterion checked on application screening steps only.
var Education = Criterion{Education: true}

// SkillCriterion returns the criterion for a skill.
func SkillCriterion(id SkillID) Criterion {
	return Criterion{Skill: id}
}

func (c Criterion) String() string {
	if c.Education {
		return "education"
	}
	return "skill:" + string(c.Skill)
}

// Step is one ordered stage of a hiring pipeline.
type Step struct {
	ID             StepID
	SortOrder      int
	Kind           StepKind
	RequiredSkills []SkillID
}

// Criteria returns the required skills followed by any criteria the step kind adds.
func (s Step) Criteria() []Criterion {
	extra := s.Kind.ExtraCriteria()
	criteria := make([]Criterion, 0, len(s.RequiredSkills)+len(extra))
	for _, skill := range s.RequiredSkills {
		criteria = append(criteria, SkillCriterion(skill))
	}
	return append(criteria, extra...)
}

// OrderSteps returns a copy of steps sorted by SortOrder. Equal orders keep their input order.
func OrderSteps(steps []Step) []Step {
	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})
	return ordered
}
