package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/jobsniper/jobsniper/internal/ai"
	"github.com/jobsniper/jobsniper/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed analyze_prompt.md
var analyzePromptTemplate string

const (
	// Resume and description are truncated to this many runes before
	// being inserted into the prompt. The cut is silent and lossy; it
	// bounds cost and latency for very long documents.
	maxResumeRunes      = 3000
	maxDescriptionRunes = 3000

	// DefaultRateInterval keeps request spacing under the free-tier
	// 15 requests-per-minute ceiling.
	DefaultRateInterval = 4 * time.Second

	defaultMaxLogLength = 200

	// analysisFailedMarker is the single diagnostic entry placed in
	// MissingSkills when a call fails.
	analysisFailedMarker = "Error analyzing"

	missingCredentialReason = "credential missing"
)

// Analyzer is the second-stage deep analysis pass. It holds the one
// rate-limited gate to the generative service: calls are serialized and
// spaced at least rateInterval apart regardless of response latency.
type Analyzer struct {
	generator contentGenerator
	pacer     *pacer
	logger    *zap.Logger
	maxLogLen int
}

// NewAnalyzer builds an analyzer around the given generator. A nil
// generator means no credential was supplied: Analyze then returns the
// credential-missing row without ever calling out.
func NewAnalyzer(generator contentGenerator, rateInterval time.Duration, maxLogLength int, log *zap.Logger) *Analyzer {
	if rateInterval <= 0 {
		rateInterval = DefaultRateInterval
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		pacer:     newPacer(rateInterval),
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Analyze compares the resume against the description. It is total:
// every failure mode is folded into the returned DeepAnalysis.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, description string) *ai.DeepAnalysis {
	if a.generator == nil {
		return &ai.DeepAnalysis{MissingSkills: []string{}, Reasoning: missingCredentialReason}
	}

	if err := a.pacer.wait(ctx); err != nil {
		return failedAnalysis(err)
	}

	prompt := buildAnalyzePrompt(resumeText, description)

	a.logger.Debug("gemini analysis request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		a.logger.Warn("gemini analysis failed", zap.Error(err))
		return failedAnalysis(err)
	}

	a.logger.Debug("gemini analysis response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	analysis, err := parseAnalysis(raw)
	if err != nil {
		a.logger.Warn("parsing gemini analysis failed", zap.Error(err))
		return failedAnalysis(err)
	}

	return analysis
}

func buildAnalyzePrompt(resumeText, description string) string {
	prompt := strings.ReplaceAll(analyzePromptTemplate, "{{RESUME}}", Truncate(resumeText, maxResumeRunes))
	return strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", Truncate(description, maxDescriptionRunes))
}

func parseAnalysis(raw string) (*ai.DeepAnalysis, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	analysis := &ai.DeepAnalysis{}
	cfg := &mapstructure.DecoderConfig{
		Result:           analysis,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	if analysis.MissingSkills == nil {
		analysis.MissingSkills = []string{}
	}

	return analysis, nil
}

func failedAnalysis(err error) *ai.DeepAnalysis {
	return &ai.DeepAnalysis{
		MissingSkills: []string{analysisFailedMarker},
		Reasoning:     err.Error(),
	}
}

// extractJSON strips a markdown code fence, with an optional language
// tag, from around the model's JSON object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// Truncate cuts s to at most limit runes. It is exported so tests and
// callers can assert the exact prompt bound.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
