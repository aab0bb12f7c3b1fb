package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestAnalyzerAnalyze(t *testing.T) {
	stub := &stubGenerator{response: `{"match_percentage": 85, "missing_skills": ["Rust"], "reasoning": "Strong overlap"}`}
	analyzer := NewAnalyzer(stub, time.Millisecond, 0, zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "Go engineer resume", "Go developer wanted")

	if analysis.MatchPercentage != 85 {
		t.Fatalf("match percentage = %d, want 85", analysis.MatchPercentage)
	}
	if len(analysis.MissingSkills) != 1 || analysis.MissingSkills[0] != "Rust" {
		t.Fatalf("unexpected missing skills: %v", analysis.MissingSkills)
	}
	if analysis.Reasoning != "Strong overlap" {
		t.Fatalf("unexpected reasoning: %q", analysis.Reasoning)
	}
	if !strings.Contains(stub.lastPrompt, "Go engineer resume") {
		t.Fatalf("prompt missing resume text: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "Go developer wanted") {
		t.Fatalf("prompt missing description: %s", stub.lastPrompt)
	}
}

func TestAnalyzerMissingCredential(t *testing.T) {
	analyzer := NewAnalyzer(nil, time.Millisecond, 0, zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "resume", "description")

	if analysis.MatchPercentage != 0 {
		t.Fatalf("match percentage = %d, want 0", analysis.MatchPercentage)
	}
	if len(analysis.MissingSkills) != 0 {
		t.Fatalf("missing skills = %v, want empty", analysis.MissingSkills)
	}
	if analysis.Reasoning != "credential missing" {
		t.Fatalf("reasoning = %q, want %q", analysis.Reasoning, "credential missing")
	}
}

func TestAnalyzerFencedResponse(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"match_percentage\": 60, \"missing_skills\": [], \"reasoning\": \"ok\"}\n```"}
	analyzer := NewAnalyzer(stub, time.Millisecond, 0, zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "resume", "description")

	if analysis.MatchPercentage != 60 {
		t.Fatalf("match percentage = %d, want 60", analysis.MatchPercentage)
	}
}

func TestAnalyzerWeaklyTypedResponse(t *testing.T) {
	stub := &stubGenerator{response: `{"match_percentage": "72", "missing_skills": ["AWS"], "reasoning": "close fit"}`}
	analyzer := NewAnalyzer(stub, time.Millisecond, 0, zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "resume", "description")

	if analysis.MatchPercentage != 72 {
		t.Fatalf("match percentage = %d, want 72", analysis.MatchPercentage)
	}
}

func TestAnalyzerServiceError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("service unreachable")}
	analyzer := NewAnalyzer(stub, time.Millisecond, 0, zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "resume", "description")

	if analysis.MatchPercentage != 0 {
		t.Fatalf("match percentage = %d, want 0", analysis.MatchPercentage)
	}
	if len(analysis.MissingSkills) != 1 || analysis.MissingSkills[0] != analysisFailedMarker {
		t.Fatalf("missing skills = %v, want single %q marker", analysis.MissingSkills, analysisFailedMarker)
	}
	if !strings.Contains(analysis.Reasoning, "service unreachable") {
		t.Fatalf("reasoning %q does not carry the error", analysis.Reasoning)
	}
}

func TestAnalyzerMalformedResponse(t *testing.T) {
	stub := &stubGenerator{response: "not json at all"}
	analyzer := NewAnalyzer(stub, time.Millisecond, 0, zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "resume", "description")

	if analysis.MatchPercentage != 0 {
		t.Fatalf("match percentage = %d, want 0", analysis.MatchPercentage)
	}
	if len(analysis.MissingSkills) != 1 || analysis.MissingSkills[0] != analysisFailedMarker {
		t.Fatalf("missing skills = %v, want single %q marker", analysis.MissingSkills, analysisFailedMarker)
	}
}

func TestAnalyzerTruncatesPrompt(t *testing.T) {
	stub := &stubGenerator{response: `{"match_percentage": 10, "missing_skills": [], "reasoning": "r"}`}
	analyzer := NewAnalyzer(stub, time.Millisecond, 0, zap.NewNop())

	longResume := strings.Repeat("r", maxResumeRunes+500)
	longDescription := strings.Repeat("d", maxDescriptionRunes+500)

	analyzer.Analyze(context.Background(), longResume, longDescription)

	if strings.Contains(stub.lastPrompt, strings.Repeat("r", maxResumeRunes+1)) {
		t.Fatal("resume was not truncated to the configured bound")
	}
	if !strings.Contains(stub.lastPrompt, strings.Repeat("r", maxResumeRunes)) {
		t.Fatal("resume truncated below the configured bound")
	}
	if strings.Contains(stub.lastPrompt, strings.Repeat("d", maxDescriptionRunes+1)) {
		t.Fatal("description was not truncated to the configured bound")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("héllo", 3); got != "hél" {
		t.Fatalf("Truncate counts runes, got %q", got)
	}
	if got := Truncate("short", 100); got != "short" {
		t.Fatalf("Truncate must not pad, got %q", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Fatalf("Truncate with zero limit = %q, want empty", got)
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fenced", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced with tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := extractJSON(tc.in); got != tc.want {
				t.Fatalf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
