package gemini

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/jobsniper/jobsniper/internal/ai"
	"github.com/jobsniper/jobsniper/internal/logger"
)

//go:embed suggest_prompt.md
var suggestPromptTemplate string

const maxSuggestResumeRunes = 4000

// Suggester asks the model for the best-fit job titles and estimated
// years of experience for a resume.
type Suggester struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewSuggester(generator contentGenerator, maxLogLength int, log *zap.Logger) *Suggester {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Suggester{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// SuggestRoles infers search roles from the resume. Any failure falls
// back to a generic default set, so callers always get a usable result.
func (s *Suggester) SuggestRoles(ctx context.Context, resumeText string) *ai.RoleSuggestion {
	if s.generator == nil {
		return defaultSuggestion()
	}

	prompt := strings.ReplaceAll(suggestPromptTemplate, "{{RESUME}}", Truncate(resumeText, maxSuggestResumeRunes))

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn("gemini role suggestion failed", zap.Error(err))
		return defaultSuggestion()
	}

	s.logger.Debug("gemini role suggestion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	suggestion, err := parseSuggestion(raw)
	if err != nil {
		s.logger.Warn("parsing gemini role suggestion failed", zap.Error(err))
		return defaultSuggestion()
	}

	return suggestion
}

func parseSuggestion(raw string) (*ai.RoleSuggestion, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, err
	}

	suggestion := &ai.RoleSuggestion{}
	cfg := &mapstructure.DecoderConfig{
		Result:           suggestion,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, err
	}

	if len(suggestion.Roles) == 0 {
		return defaultSuggestion(), nil
	}

	return suggestion, nil
}

func defaultSuggestion() *ai.RoleSuggestion {
	return &ai.RoleSuggestion{
		Roles: []string{"Python Developer", "Data Analyst", "Software Engineer"},
	}
}
