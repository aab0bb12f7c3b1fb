package filtering

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/jobsniper/jobsniper/internal/posting"
)

func TestRunDedupAndGuardrail(t *testing.T) {
	postings := &posting.Postings{Items: []*posting.Posting{
		{Title: "A", Company: "X", Location: "loc1", MinYearsRequired: 2},
		{Title: "A", Company: "X", Location: "loc1", MinYearsRequired: 2},
		{Title: "B", Company: "Y", Location: "loc2", MinYearsRequired: 9},
		{Title: "C", Company: "Z", Location: "loc3", MinYearsRequired: 0},
	}}

	deps := Deps{Logger: zap.NewNop(), CandidateYears: 3}
	steps := []Filter{NewDedup(true), NewGuardrail(true)}

	result, stats, err := Run(context.Background(), deps, steps, postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats[DedupFilterName].Dropped != 1 {
		t.Fatalf("dedup dropped = %d, want 1", stats[DedupFilterName].Dropped)
	}
	if stats[GuardrailFilterName].Dropped != 1 {
		t.Fatalf("guardrail dropped = %d, want 1", stats[GuardrailFilterName].Dropped)
	}
	if result.Len() != 2 {
		t.Fatalf("left = %d, want 2", result.Len())
	}

	for _, item := range result.Items {
		if item.Title == "B" {
			t.Fatal("posting requiring 9 years must not survive for a 3-year candidate")
		}
	}
}

func TestRunDisabledFiltersKeepEverything(t *testing.T) {
	postings := &posting.Postings{Items: []*posting.Posting{
		{Title: "A", Company: "X", Location: "loc1", MinYearsRequired: 15},
		{Title: "A", Company: "X", Location: "loc1", MinYearsRequired: 15},
	}}

	deps := Deps{Logger: zap.NewNop(), CandidateYears: 1}
	steps := []Filter{NewDedup(false), NewGuardrail(false)}

	result, stats, err := Run(context.Background(), deps, steps, postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Len() != 2 {
		t.Fatalf("left = %d, want 2 (nothing dropped when disabled)", result.Len())
	}
	if stats[DedupFilterName].Dropped != 0 || stats[GuardrailFilterName].Dropped != 0 {
		t.Fatalf("disabled filters reported drops: %+v", stats)
	}
}

func TestGuardrailUndeterminedNeverDrops(t *testing.T) {
	postings := &posting.Postings{Items: []*posting.Posting{
		{Title: "A", Company: "X", MinYearsRequired: 0},
	}}

	deps := Deps{Logger: zap.NewNop(), CandidateYears: 1}
	result, _, err := Run(context.Background(), deps, []Filter{NewGuardrail(true)}, postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Len() != 1 {
		t.Fatal("undetermined requirement must never be filtered")
	}
}

func TestGuardrailUnknownCandidateNeverDrops(t *testing.T) {
	postings := &posting.Postings{Items: []*posting.Posting{
		{Title: "A", Company: "X", MinYearsRequired: 15},
	}}

	deps := Deps{Logger: zap.NewNop(), CandidateYears: 0}
	result, _, err := Run(context.Background(), deps, []Filter{NewGuardrail(true)}, postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Len() != 1 {
		t.Fatal("unknown candidate years must never cause rejection")
	}
}

func TestDisableByReason(t *testing.T) {
	f := NewGuardrail(true)
	if !f.IsEnabled() {
		t.Fatal("expected filter enabled")
	}
	f.Disable("toggle off")
	if f.IsEnabled() {
		t.Fatal("expected filter disabled")
	}
}
