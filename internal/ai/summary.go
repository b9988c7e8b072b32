package ai

import (
	"context"

	"github.com/spigell/assessment-funnel/internal/dataset"
)

// Summary is a short narrative of an evaluated funnel.
type Summary struct {
	Text string
	Raw  string
}

type Summarizer interface {
	Summarize(ctx context.Context, report *dataset.Report) (*Summary, error)
}
