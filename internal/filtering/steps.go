package filtering

import (
	"context"

	"github.com/jobsniper/jobsniper/internal/experience"
	"github.com/jobsniper/jobsniper/internal/posting"
)

const (
	DedupFilterName     = "dedup"
	GuardrailFilterName = "experience_guardrail"
)

type dedupFilter struct {
	disabled bool
	reason   string
}

// NewDedup creates a filter that collapses postings with identical
// title, company and location, keeping the first occurrence.
func NewDedup(enabled bool) Filter {
	return &dedupFilter{disabled: !enabled}
}

func (f *dedupFilter) Name() string { return DedupFilterName }

func (f *dedupFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *dedupFilter) IsEnabled() bool { return !f.disabled }

func (f *dedupFilter) Apply(_ context.Context, _ Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	removed := p.Dedup()
	return p, Step{Initial: initial, Dropped: removed, Left: p.Len()}, nil
}

type guardrailFilter struct {
	disabled bool
	reason   string
}

// NewGuardrail creates the experience guardrail step. It expects every
// posting to carry its extracted MinYearsRequired already; postings
// whose requirement exceeds the candidate's years plus the one-year
// tolerance are dropped. Undetermined requirements never drop.
func NewGuardrail(enabled bool) Filter {
	return &guardrailFilter{disabled: !enabled}
}

func (f *guardrailFilter) Name() string { return GuardrailFilterName }

func (f *guardrailFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *guardrailFilter) IsEnabled() bool { return !f.disabled }

func (f *guardrailFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()

	kept := make([]*posting.Posting, 0, initial)
	for _, item := range p.Items {
		if experience.MeetsRequirement(deps.CandidateYears, item.MinYearsRequired) {
			kept = append(kept, item)
		}
	}
	p.Items = kept

	return p, Step{Initial: initial, Dropped: initial - p.Len(), Left: p.Len()}, nil
}
