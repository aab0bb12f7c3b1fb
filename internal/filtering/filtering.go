// Package filtering runs the pre-scoring reduction steps of the
// ranking pipeline: deduplication and the experience guardrail.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobsniper/jobsniper/internal/posting"
)

// Filter represents a single filtering step applied to a batch.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger         *zap.Logger
	CandidateYears int
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially. Disabled filters are
// skipped but still reported, so callers always see every step's
// counters.
func Run(ctx context.Context, deps Deps, steps []Filter, p *posting.Postings) (*posting.Postings, map[string]Step, error) {
	results := make(map[string]Step, len(steps))

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			results[step.Name()] = Step{Initial: p.Len(), Left: p.Len()}
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		p = next
		results[step.Name()] = info
	}

	return p, results, nil
}
