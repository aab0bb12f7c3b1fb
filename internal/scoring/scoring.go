// Package scoring computes the local semantic match score between a
// resume and a posting description.
package scoring

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
)

// Embedder produces a fixed-dimension vector for a piece of text.
// Implementations may call a remote model or run a local one; scores are
// comparable only when both texts of a pair go through the same embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedderFactory builds the embedder on first use of the scorer.
type EmbedderFactory func(ctx context.Context) (Embedder, error)

// Scorer turns cosine similarity of two embeddings into a 0-100 match
// percentage. The embedder is initialized lazily, exactly once per
// instance. A failed initialization leaves the scorer permanently
// degraded: every subsequent call returns 0 instead of retrying.
type Scorer struct {
	factory EmbedderFactory
	logger  *zap.Logger

	once     sync.Once
	embedder Embedder
	healthy  bool
}

// NewScorer creates a scorer that obtains its embedder from factory at
// first use. A nil factory yields a scorer that is degraded from the
// start.
func NewScorer(factory EmbedderFactory, logger *zap.Logger) *Scorer {
	return &Scorer{
		factory: factory,
		logger:  logger,
	}
}

// Healthy reports whether the embedder initialized successfully. It
// forces initialization if it has not happened yet.
func (s *Scorer) Healthy(ctx context.Context) bool {
	s.init(ctx)
	return s.healthy
}

// Score returns the semantic similarity between the resume and the
// description as a percentage rounded to two decimal places.
//
// An empty description, a degraded embedder or a per-call embedding
// failure all yield 0 without error, so callers can score a whole batch
// unconditionally.
func (s *Scorer) Score(ctx context.Context, resumeText, description string) float64 {
	if description == "" {
		return 0
	}

	s.init(ctx)
	if !s.healthy {
		return 0
	}

	resumeVec, err := s.embedder.Embed(ctx, resumeText)
	if err != nil {
		s.warn("embedding resume failed", err)
		return 0
	}

	descVec, err := s.embedder.Embed(ctx, description)
	if err != nil {
		s.warn("embedding description failed", err)
		return 0
	}

	return round2(cosine(resumeVec, descVec) * 100)
}

func (s *Scorer) init(ctx context.Context) {
	s.once.Do(func() {
		if s.factory == nil {
			s.warn("no embedder factory configured", nil)
			return
		}

		embedder, err := s.factory(ctx)
		if err != nil {
			s.warn("embedder initialization failed, all scores degrade to 0", err)
			return
		}

		s.embedder = embedder
		s.healthy = true
	})
}

func (s *Scorer) warn(msg string, err error) {
	if s.logger == nil {
		return
	}
	if err != nil {
		s.logger.Warn(msg, zap.Error(err))
		return
	}
	s.logger.Warn(msg)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
