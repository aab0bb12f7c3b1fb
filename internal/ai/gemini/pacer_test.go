package gemini

import (
	"context"
	"testing"
	"time"
)

func TestPacerEnforcesMinimumInterval(t *testing.T) {
	interval := 50 * time.Millisecond
	p := newPacer(interval)

	start := time.Now()
	for range 3 {
		if err := p.wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	elapsed := time.Since(start)

	if elapsed < 2*interval {
		t.Fatalf("three admissions took %v, want at least %v", elapsed, 2*interval)
	}
}

func TestPacerFirstCallIsImmediate(t *testing.T) {
	p := newPacer(time.Minute)

	start := time.Now()
	if err := p.wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("first admission took %v, want no delay", elapsed)
	}
}

func TestPacerHonorsCancellation(t *testing.T) {
	p := newPacer(time.Minute)

	if err := p.wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.wait(ctx); err == nil {
		t.Fatal("expected a context error while waiting")
	}
}
