package assessment

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Evaluation is the outcome of evaluating a pipeline for a set of candidates.
type Evaluation struct {
	RunID string
	// Steps are the pipeline steps in sort order.
	Steps     []Step
	Decisions map[CandidateID]map[StepID]StepDecision
	Positions map[CandidateID]Position
	Counts    map[StepID]DecisionCounts
	Pills     map[CandidateID]StatusPill
}

// Evaluate resolves every step for every candidate, finds their positions, tallies the funnel and
// presents a status pill per candidate. When a candidate ID repeats, the last one wins.
func Evaluate(steps []Step, candidates []Candidate) *Evaluation {
	ordered := OrderSteps(steps)

	e := &Evaluation{
		Steps:     ordered,
		Decisions: make(map[CandidateID]map[StepID]StepDecision, len(candidates)),
		Positions: make(map[CandidateID]Position, len(candidates)),
		Pills:     make(map[CandidateID]StatusPill, len(candidates)),
	}

	for _, candidate := range candidates {
		decisions := ResolveAll(ordered, candidate.Results)
		position := CurrentPosition(ordered, decisions)

		e.Decisions[candidate.ID] = decisions
		e.Positions[candidate.ID] = position
		e.Pills[candidate.ID] = Present(candidate.Status, position)
	}

	e.Counts = Aggregate(ordered, e.Decisions, e.Positions)
	return e
}

// Evaluator runs Evaluate and logs the outcome of every funnel step.
type Evaluator struct {
	logger *zap.Logger
}

func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger}
}

// Evaluate evaluates the pipeline under a fresh run ID.
func (ev *Evaluator) Evaluate(steps []Step, candidates []Candidate) *Evaluation {
	runID := uuid.NewString()
	logger := ev.logger.With(zap.String("run_id", runID))

	logger.Debug("evaluating pipeline",
		zap.Int("steps", len(steps)),
		zap.Int("candidates", len(candidates)),
	)

	known := make(map[StepID]struct{}, len(steps))
	for _, step := range steps {
		known[step.ID] = struct{}{}
	}
	for _, candidate := range candidates {
		for _, result := range candidate.Results {
			if _, ok := known[result.StepID]; !ok {
				logger.Warn("ignoring result for unknown step",
					zap.String("candidate_id", string(candidate.ID)),
					zap.String("result_id", result.ID),
					zap.String("step_id", string(result.StepID)),
				)
			}
		}
	}

	e := Evaluate(steps, candidates)
	e.RunID = runID

	for index, step := range e.Steps {
		counts := e.Counts[step.ID]
		logger.Info("funnel step",
			zap.String("name", string(step.ID)),
			zap.Int("index", index),
			zap.Int("reached", counts.Total()),
			zap.Int("successful", counts.Successful),
			zap.Int("hold", counts.Hold),
			zap.Int("no_decision", counts.NoDecision),
			zap.Int("unsuccessful", counts.Unsuccessful),
		)
	}

	completed := 0
	for _, position := range e.Positions {
		if position.IsCompleted() {
			completed++
		}
	}
	logger.Info("pipeline evaluated",
		zap.Int("candidates", len(e.Positions)),
		zap.Int("completed", completed),
	)

	return e
}
