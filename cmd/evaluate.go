package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/assessment-funnel/internal/ai"
	"github.com/spigell/assessment-funnel/internal/ai/gemini"
	"github.com/spigell/assessment-funnel/internal/assessment"
	"github.com/spigell/assessment-funnel/internal/dataset"
	"github.com/spigell/assessment-funnel/internal/logger"
	"github.com/spigell/assessment-funnel/internal/metrics"
	"github.com/spigell/assessment-funnel/internal/secrets"
)

const (
	PromptShowReport       = "Show report"
	PromptReportByStep     = "Report by current step"
	PromptInspectCandidate = "Inspect a candidate"
	PromptReportToFile     = "Dump report to file"
	PromptSummarize        = "Summarize funnel with AI"
	PromptExit             = "Exit"
	PromptBack             = "back"
)

var errExit = errors.New("exit requested")

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a pipeline file and report decisions, positions and funnel counts",
	Run: func(cmd *cobra.Command, _ []string) {
		evaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("pipeline", "p", "", "pipeline file with steps, candidates and results (yaml, json or toml)")
	evaluateCmd.Flags().StringP("output", "o", "table", "report format: table, json or yaml")
	evaluateCmd.Flags().Bool("dump", false, "also dump the report as json to a temporary file")
	evaluateCmd.Flags().String("report-file", "", "also write the report to this file (yaml for .yaml/.yml, json otherwise)")
	evaluateCmd.Flags().String("metrics-file", "", "write funnel gauges to this file for the node exporter textfile collector")
	evaluateCmd.Flags().Bool("ai", false, "summarize the funnel with the configured AI provider")
	evaluateCmd.Flags().BoolP("interactive", "i", false, "choose report actions interactively")

	viper.BindPFlag("pipeline-file", evaluateCmd.Flags().Lookup("pipeline"))
	viper.BindPFlag("output.format", evaluateCmd.Flags().Lookup("output"))
	viper.BindPFlag("output.dump", evaluateCmd.Flags().Lookup("dump"))
	viper.BindPFlag("output.file", evaluateCmd.Flags().Lookup("report-file"))
	viper.BindPFlag("metrics.textfile", evaluateCmd.Flags().Lookup("metrics-file"))
	viper.BindPFlag("ai.enabled", evaluateCmd.Flags().Lookup("ai"))
}

// evaluate is the main command for the cli.
func evaluate(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		stdlog("creating a logger: %s", err)
	}
	defer log.Sync()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting the assessment-funnel", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if strings.TrimSpace(config.PipelineFile) == "" {
		log.Fatal("pipeline file is required",
			zap.String("hint", "use --pipeline, the 'pipeline-file' key or ASSESSMENT_PIPELINE_FILE"),
		)
	}

	pipeline, err := dataset.LoadFromFile(config.PipelineFile)
	if err != nil {
		log.Fatal("loading the pipeline", zap.Error(err))
	}

	log = logger.WithPipelineFields(log, pipeline.Name, config.PipelineFile)
	log.Info("pipeline loaded",
		zap.Int("steps", len(pipeline.Steps)),
		zap.Int("candidates", len(pipeline.Candidates)),
	)

	evaluation := assessment.NewEvaluator(log).Evaluate(pipeline.Steps, pipeline.Candidates)
	report := dataset.NewReport(pipeline, evaluation)
	mismatches := checkExpectations(log, pipeline, evaluation)

	if path := strings.TrimSpace(config.Metrics.Textfile); path != "" {
		funnel := metrics.NewFunnel(pipeline.Name)
		funnel.Observe(evaluation)
		if err := funnel.WriteToTextfile(path); err != nil {
			log.Fatal("exporting metrics", zap.Error(err))
		}
		log.Info("metrics written", zap.String("filename", path))
	}

	summarizer, err := prepareSummarizer(ctx, config.AI, log)
	if err != nil {
		log.Warn("skipping AI summary", zap.Error(err))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive {
		if err := printReport(ctx, log, config, report, summarizer); err != nil {
			log.Fatal("reporting", zap.Error(err))
		}
		if mismatches > 0 {
			log.Fatal("pipeline expectations are not met", zap.Int("mismatches", mismatches))
		}
		return
	}

	actions := []string{PromptShowReport, PromptReportByStep, PromptInspectCandidate, PromptReportToFile}
	if summarizer != nil {
		actions = append(actions, PromptSummarize)
	}
	actions = append(actions, PromptExit)

	prompt := promptui.Select{
		Label: "What next?",
		Items: actions,
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, log, config, report, summarizer); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func stdlog(format string, args ...any) {
	log.Fatalf(format, args...)
}

// checkExpectations logs every expectation of the pipeline file the evaluation did not meet
// and returns how many there were.
func checkExpectations(log *zap.Logger, pipeline *dataset.Pipeline, evaluation *assessment.Evaluation) int {
	if len(pipeline.Expectations) == 0 {
		return 0
	}

	mismatches := pipeline.Verify(evaluation)
	for _, mismatch := range mismatches {
		log.Warn("expectation not met",
			zap.String("candidate_id", string(mismatch.Candidate)),
			zap.String("step_id", string(mismatch.Step)),
			zap.String("expected", mismatch.Expected),
			zap.String("actual", mismatch.Actual),
		)
	}
	if len(mismatches) == 0 {
		log.Info("pipeline expectations met", zap.Int("candidates", len(pipeline.Expectations)))
	}
	return len(mismatches)
}

func printReport(ctx context.Context, log *zap.Logger, config *Config, report *dataset.Report, summarizer ai.Summarizer) error {
	if err := report.Write(os.Stdout, config.Output.Format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if path := strings.TrimSpace(config.Output.File); path != "" {
		if err := report.ToFile(path); err != nil {
			return fmt.Errorf("writing report to %q: %w", path, err)
		}
		log.Info("report written", zap.String("filename", path))
	}

	if config.Output.Dump {
		filename, err := report.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		log.Info("dumping report to file", zap.String("filename", filename))
	}

	if summarizer != nil {
		return summarize(ctx, log, summarizer, report)
	}
	return nil
}

func handleAction(ctx context.Context, action string, log *zap.Logger, config *Config, report *dataset.Report, summarizer ai.Summarizer) error {
	switch action {
	case PromptShowReport:
		return report.Write(os.Stdout, config.Output.Format)
	case PromptReportByStep:
		pretty, _ := json.MarshalIndent(report.ReportByStep(), "", "  ")
		log.Info(string(pretty), zap.Int("candidates count", len(report.Candidates)))
		return nil
	case PromptInspectCandidate:
		return inspectCandidates(log, report)
	case PromptReportToFile:
		filename, err := report.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		log.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptSummarize:
		return summarize(ctx, log, summarizer, report)
	case PromptExit:
		log.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func inspectCandidates(log *zap.Logger, report *dataset.Report) error {
	for {
		candidatePrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: append(report.CandidateIDs(), PromptBack),
			Size:  10,
		}

		_, selected, err := candidatePrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		candidate := report.FindCandidate(selected)
		if candidate == nil {
			return fmt.Errorf("there is no such candidate id %s", selected)
		}

		details := candidate.Details(report.Steps)
		keys := make([]string, 0, len(details))
		for key := range details {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fields := make([]zap.Field, 0, len(keys))
		for _, key := range keys {
			fields = append(fields, zap.String(key, details[key]))
		}
		log.Info("candidate", append([]zap.Field{zap.String("candidate_id", selected)}, fields...)...)
	}
}

func summarize(ctx context.Context, log *zap.Logger, summarizer ai.Summarizer, report *dataset.Report) error {
	if summarizer == nil {
		return errors.New("ai summarizer is not configured")
	}

	summary, err := summarizer.Summarize(ctx, report)
	if err != nil {
		// The report is already out; a failed narrative is not fatal.
		log.Warn("AI summary failed", zap.Error(err))
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n%s\n", summary.Text)
	return nil
}

func prepareSummarizer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Summarizer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai summary is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	aiLogger := logger.WithAIFields(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, aiLogger)
	if err != nil {
		return nil, fmt.Errorf("building gemini generator: %w", err)
	}

	return gemini.NewSummarizer(generator, logger.WithAIFields(log, "gemini", generator.Model()), cfg.Gemini.MaxLogLength), nil
}
