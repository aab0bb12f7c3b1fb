// Package pipeline orchestrates one ranking run: ingest, dedup,
// extract, guardrail, score, sort, optional deep analysis, final sort.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jobsniper/jobsniper/internal/ai"
	"github.com/jobsniper/jobsniper/internal/experience"
	"github.com/jobsniper/jobsniper/internal/filtering"
	"github.com/jobsniper/jobsniper/internal/posting"
)

const (
	// DefaultTopK bounds the deep-analysis pass: only this many of the
	// highest-scoring postings are sent to the generative service.
	DefaultTopK = 20

	defaultScoreWorkers = 4
)

// ErrEmptyBatch is the batch-level failure for a run with no postings.
var ErrEmptyBatch = errors.New("no postings to rank")

// Scorer is the local similarity stage. Implementations must be safe
// for concurrent use.
type Scorer interface {
	Score(ctx context.Context, resumeText, description string) float64
}

// Config carries the per-run toggles.
type Config struct {
	Dedup        bool
	Guardrail    bool
	DeepAnalysis bool
	TopK         int
	ScoreWorkers int
}

// Deps aggregates the pipeline's collaborators. Analyzer may be nil
// when deep analysis is disabled or no credential is available.
type Deps struct {
	Logger   *zap.Logger
	Scorer   Scorer
	Analyzer ai.Analyzer
}

// Result is the ranked batch handed back to the caller, plus the
// side-channel counters for display. It is never mutated after being
// returned.
type Result struct {
	Postings          *posting.Postings
	DuplicatesRemoved int
	GuardrailDropped  int
	DeepAnalyzed      int
}

type Pipeline struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.ScoreWorkers <= 0 {
		cfg.ScoreWorkers = defaultScoreWorkers
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Pipeline{cfg: cfg, deps: deps}
}

// Run transforms one collected batch into a ranked result set. The
// batch is consumed; each invocation produces a fresh Result and keeps
// no state for the next one. Per-posting problems degrade that posting
// only; Run fails as a whole only when the batch itself is unusable.
func (p *Pipeline) Run(ctx context.Context, batch *posting.Postings, resume *posting.Resume) (*Result, error) {
	if resume == nil {
		return nil, errors.New("resume is required")
	}
	if batch == nil || batch.Len() == 0 {
		return nil, ErrEmptyBatch
	}

	batch.Normalize()

	// Requirements are extracted for every posting, even with the
	// guardrail off, so the result table can always display them.
	for _, item := range batch.Items {
		item.MinYearsRequired = experience.Extract(item.Description)
	}

	deps := filtering.Deps{Logger: p.deps.Logger, CandidateYears: resume.Years}
	steps := []filtering.Filter{
		filtering.NewDedup(p.cfg.Dedup),
		filtering.NewGuardrail(p.cfg.Guardrail),
	}

	filtered, stats, err := filtering.Run(ctx, deps, steps, batch)
	if err != nil {
		return nil, err
	}

	p.scoreAll(ctx, filtered, resume.Text)
	filtered.SortByMatchScore()

	analyzed := 0
	if p.cfg.DeepAnalysis && p.deps.Analyzer != nil {
		analyzed = p.analyzeTop(ctx, filtered, resume.Text)
		filtered.SortByAnalysis()
	}

	p.deps.Logger.Info("ranking completed",
		zap.Int("postings", filtered.Len()),
		zap.Int("duplicates_removed", stats[filtering.DedupFilterName].Dropped),
		zap.Int("guardrail_dropped", stats[filtering.GuardrailFilterName].Dropped),
		zap.Int("deep_analyzed", analyzed),
	)

	return &Result{
		Postings:          filtered,
		DuplicatesRemoved: stats[filtering.DedupFilterName].Dropped,
		GuardrailDropped:  stats[filtering.GuardrailFilterName].Dropped,
		DeepAnalyzed:      analyzed,
	}, nil
}

// scoreAll computes match scores over a bounded worker pool. Results
// are written to each posting's own slot, so input order is intact when
// the workers finish and the following stable sort stays deterministic.
func (p *Pipeline) scoreAll(ctx context.Context, postings *posting.Postings, resumeText string) {
	if p.deps.Scorer == nil {
		p.deps.Logger.Warn("no scorer configured, all match scores degrade to 0")
		return
	}

	workers := p.cfg.ScoreWorkers
	if workers > postings.Len() {
		workers = postings.Len()
	}

	jobs := make(chan *posting.Posting)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				item.MatchScore = p.deps.Scorer.Score(ctx, resumeText, item.Description)
			}
		}()
	}

	for _, item := range postings.Items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
}

// analyzeTop runs the deep-analysis pass over the top-K postings,
// sequentially. Pacing between external calls is the analyzer's
// responsibility; failures come back as diagnostic rows, never errors.
func (p *Pipeline) analyzeTop(ctx context.Context, postings *posting.Postings, resumeText string) int {
	limit := p.cfg.TopK
	if limit > postings.Len() {
		limit = postings.Len()
	}

	for _, item := range postings.Items[:limit] {
		item.Analysis = p.deps.Analyzer.Analyze(ctx, resumeText, item.Description)

		p.deps.Logger.Debug("deep analysis",
			zap.String("title", item.Title),
			zap.String("company", item.Company),
			zap.Int("ai_score", item.Analysis.MatchPercentage),
		)
	}

	return limit
}
