package cmd

import (
	"context"
	"log"
	"strings"

	"github.com/jobsniper/jobsniper/internal/ai/gemini"
	logutil "github.com/jobsniper/jobsniper/internal/logger"
	"github.com/jobsniper/jobsniper/internal/posting"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask the model for best-fit roles and estimated experience for the configured resume",
	Run: func(_ *cobra.Command, _ []string) {
		suggest()
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func suggest() {
	ctx := context.Background()

	logger, err := logutil.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Resume == nil || config.Resume.File == "" {
		logger.Fatal("resume file is required under resume.file")
	}

	resume, err := posting.LoadResume(config.Resume.File, 0)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	gcfg := geminiConfig(config)
	suggestLogger := logutil.WithCommonFields(logger, "gemini", gcfg.Model)

	var generator *gemini.Generator
	if apiKey := resolveAPIKey(config, logger); apiKey != "" {
		generator, err = gemini.NewGenerator(ctx, apiKey, gcfg.Model)
		if err != nil {
			logger.Warn("building gemini generator, falling back to default roles", zap.Error(err))
			generator = nil
		}
	}

	var suggester *gemini.Suggester
	if generator == nil {
		suggester = gemini.NewSuggester(nil, gcfg.MaxLogLength, suggestLogger)
	} else {
		suggester = gemini.NewSuggester(generator, gcfg.MaxLogLength, suggestLogger)
	}

	suggestion := suggester.SuggestRoles(ctx, resume.Text)

	logger.Info("suggested roles",
		zap.String("roles", strings.Join(suggestion.Roles, ", ")),
		zap.Int("estimated_years", suggestion.YearsOfExperience),
		zap.String("hint", "put the roles under search.roles and the years under resume.years"),
	)
}
