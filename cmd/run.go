package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jobsniper/jobsniper/internal/ai"
	"github.com/jobsniper/jobsniper/internal/ai/gemini"
	logutil "github.com/jobsniper/jobsniper/internal/logger"
	"github.com/jobsniper/jobsniper/internal/pipeline"
	"github.com/jobsniper/jobsniper/internal/posting"
	"github.com/jobsniper/jobsniper/internal/scoring"
	"github.com/jobsniper/jobsniper/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptReportByCompany = "Report by company"
	PromptResultsToFile   = "Dump results to file"
	PromptExit            = "Exit"
)

var errExit = errors.New("exit requested")

var resultPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptReportByCompany, PromptResultsToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rank collected postings against the configured resume",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("no-prompt", "y", false, "print the ranked results and exit without the interactive menu")
	runCmd.Flags().BoolP("deep", "a", false, "run the second-stage deep analysis pass (requires a Gemini credential)")

	viper.BindPFlag("ai.enabled", runCmd.Flags().Lookup("deep"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logutil.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobsniper", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Resume == nil || config.Resume.File == "" {
		logger.Fatal("resume file is required under resume.file to rank postings")
	}

	if config.Search == nil || config.Search.Input == "" {
		logger.Fatal("postings input file is required under search.input")
	}

	if len(config.Search.Roles) == 0 {
		logger.Fatal("at least one role is required under search.roles")
	}

	resume, err := posting.LoadResume(config.Resume.File, config.Resume.Years)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	logger.Info("loaded resume",
		zap.String("file", config.Resume.File),
		zap.Int("declared_years", resume.Years),
	)

	batch, err := collectPostings(ctx, config, logger)
	if err != nil {
		logger.Fatal("collecting postings", zap.Error(err))
	}

	if batch.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	apiKey := resolveAPIKey(config, logger)

	match := config.Match
	if match == nil {
		match = &MatchConfig{Dedup: true, Guardrail: true}
	}

	deepAnalysis := config.AI != nil && config.AI.Enabled

	pl := pipeline.New(
		pipeline.Config{
			Dedup:        match.Dedup,
			Guardrail:    match.Guardrail,
			DeepAnalysis: deepAnalysis,
			TopK:         match.TopK,
			ScoreWorkers: match.ScoreWorkers,
		},
		pipeline.Deps{
			Logger:   logger,
			Scorer:   prepareScorer(apiKey, config, logger),
			Analyzer: prepareAnalyzer(ctx, apiKey, config, logger),
		},
	)

	result, err := pl.Run(ctx, batch, resume)
	if err != nil {
		logger.Fatal("ranking failed", zap.Error(err))
	}

	logger.Info("run summary",
		zap.Int("postings", result.Postings.Len()),
		zap.Int("duplicates_removed", result.DuplicatesRemoved),
		zap.Int("guardrail_dropped", result.GuardrailDropped),
		zap.Int("deep_analyzed", result.DeepAnalyzed),
	)

	printRanked(result, logger)

	if cmd.Flag("no-prompt").Value.String() == "true" {
		return
	}

	for {
		_, action, err := resultPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, result, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func collectPostings(ctx context.Context, config *Config, logger *zap.Logger) (*posting.Postings, error) {
	collector := posting.NewFileCollector(config.Search.Input)

	batch := &posting.Postings{}
	for _, role := range config.Search.Roles {
		collected, err := collector.Collect(ctx, role, config.Search.Location)
		if err != nil {
			return nil, fmt.Errorf("collect %q: %w", role, err)
		}

		logger.Info("collected postings",
			zap.String("role", role),
			zap.Int("count", collected.Len()),
		)

		batch.Append(collected)
	}

	return batch, nil
}

// resolveAPIKey loads the Gemini credential. A missing credential is
// not fatal: scoring degrades and deep analysis reports it per row.
func resolveAPIKey(config *Config, logger *zap.Logger) string {
	keyFile := viper.GetString("ai.gemini.api-key-file")
	if config.AI != nil && config.AI.Gemini != nil && config.AI.Gemini.APIKeyFile != "" {
		keyFile = config.AI.Gemini.APIKeyFile
	}

	apiKey, err := secrets.Load("gemini api key", keyFile, viper.GetString("gemini-api-key"))
	if err != nil {
		logger.Warn("gemini credential not available",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file"),
		)
		return ""
	}

	return apiKey
}

func geminiConfig(config *Config) *GeminiConfig {
	if config.AI == nil || config.AI.Gemini == nil {
		return &GeminiConfig{}
	}
	return config.AI.Gemini
}

// prepareScorer wires the lazily-initialized embedding scorer. The
// factory runs at the scorer's first use; a failure there leaves the
// scorer degraded for the rest of the run.
func prepareScorer(apiKey string, config *Config, logger *zap.Logger) *scoring.Scorer {
	gcfg := geminiConfig(config)

	factory := func(ctx context.Context) (scoring.Embedder, error) {
		if apiKey == "" {
			return nil, errors.New("gemini api key is required for embeddings")
		}
		return gemini.NewEmbedder(ctx, apiKey, gcfg.EmbeddingModel)
	}

	return scoring.NewScorer(factory, logutil.WithCommonFields(logger, "gemini", gcfg.EmbeddingModel))
}

func prepareAnalyzer(ctx context.Context, apiKey string, config *Config, logger *zap.Logger) ai.Analyzer {
	if config.AI == nil || !config.AI.Enabled {
		return nil
	}

	gcfg := geminiConfig(config)
	analyzerLogger := logutil.WithCommonFields(logger, "gemini", gcfg.Model)

	var generator *gemini.Generator
	if apiKey == "" {
		logger.Warn("deep analysis requested without a credential; analyzed rows will be marked accordingly")
	} else {
		var err error
		generator, err = gemini.NewGenerator(ctx, apiKey, gcfg.Model)
		if err != nil {
			logger.Warn("building gemini generator", zap.Error(err))
			generator = nil
		}
	}

	interval := time.Duration(gcfg.RateIntervalSeconds) * time.Second

	if generator == nil {
		return gemini.NewAnalyzer(nil, interval, gcfg.MaxLogLength, analyzerLogger)
	}
	return gemini.NewAnalyzer(generator, interval, gcfg.MaxLogLength, analyzerLogger)
}

func printRanked(result *pipeline.Result, logger *zap.Logger) {
	for i, item := range result.Postings.Items {
		fields := []zap.Field{
			zap.Int("rank", i+1),
			zap.String("title", item.Title),
			zap.String("company", item.Company),
			zap.String("location", item.Location),
			zap.Float64("match_score", item.MatchScore),
			zap.Int("min_years_req", item.MinYearsRequired),
			zap.String("url", item.URL),
		}
		if item.Analysis != nil {
			fields = append(fields,
				zap.Int("ai_score", item.Analysis.MatchPercentage),
				zap.Strings("missing_skills", item.Analysis.MissingSkills),
				zap.String("reasoning", item.Analysis.Reasoning),
			)
		}

		logger.Info("ranked posting", fields...)
	}
}

func handleAction(action string, result *pipeline.Result, logger *zap.Logger) error {
	switch action {
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(result.Postings.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", result.Postings.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := result.Postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping results to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
