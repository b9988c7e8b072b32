package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/assessment-funnel/internal/ai"
	"github.com/spigell/assessment-funnel/internal/dataset"
	"github.com/spigell/assessment-funnel/internal/util"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultMaxSentences = 5
)

// Summarizer asks Gemini for a narrative of a funnel report.
type Summarizer struct {
	generator    contentGenerator
	logger       *zap.Logger
	maxLogLen    int
	maxSentences int
}

func NewSummarizer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Summarizer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Summarizer{
		generator:    generator,
		logger:       logger,
		maxLogLen:    maxLogLength,
		maxSentences: defaultMaxSentences,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, report *dataset.Report) (*ai.Summary, error) {
	if report == nil {
		return nil, errors.New("report is required")
	}
	if len(report.Steps) == 0 {
		return nil, errors.New("report has no steps to summarize")
	}

	byStep := report.ReportByStep()
	payload := struct {
		*dataset.Report
		BlockedByStep map[string][]string `json:"blocked_by_step"`
		Completed     []string            `json:"completed_candidates"`
	}{
		Report:        report,
		BlockedByStep: byStep.Blocked,
		Completed:     byStep.Completed,
	}

	message, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report payload: %w", err)
	}

	system := buildSystemPrompt(s.maxSentences)

	s.logger.Debug("gemini generate content request",
		zap.String("run_id", report.RunID),
		zap.Int("message_length", utf8.RuneCount(message)),
		zap.String("message_preview", util.TruncateForLog(string(message), s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, system, string(message))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini generate content response",
		zap.String("run_id", report.RunID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, s.maxLogLen)),
	)

	text := cleanResponse(raw)
	if text == "" {
		return nil, errors.New("gemini returned an empty summary")
	}

	return &ai.Summary{Text: text, Raw: raw}, nil
}

func buildSystemPrompt(maxSentences int) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Summarize the assessment funnel report in at most {{MAX_SENTENCES}} sentences."
	}
	return strings.ReplaceAll(template, "{{MAX_SENTENCES}}", strconv.Itoa(maxSentences))
}

// cleanResponse strips code fences and collapses blank lines.
func cleanResponse(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
