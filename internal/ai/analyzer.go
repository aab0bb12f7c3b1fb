package ai

import "context"

// DeepAnalysis is the structured second-stage annotation produced by the
// generative model for a single posting.
type DeepAnalysis struct {
	MatchPercentage int      `json:"match_percentage"`
	MissingSkills   []string `json:"missing_skills"`
	Reasoning       string   `json:"reasoning"`
}

// Analyzer compares a resume against a posting description.
//
// Analyze is total: it never fails from the caller's perspective. Any
// service, network or parsing problem is reported through the returned
// DeepAnalysis (zero score, a diagnostic missing-skills marker and the
// error text as reasoning).
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, description string) *DeepAnalysis
}

// RoleSuggestion is the model's read of a resume: the best-fit job titles
// to search for and the estimated total years of experience.
type RoleSuggestion struct {
	Roles             []string `json:"roles"`
	YearsOfExperience int      `json:"years_of_experience"`
}

// Suggester infers search roles and experience from a resume.
type Suggester interface {
	SuggestRoles(ctx context.Context, resumeText string) *RoleSuggestion
}
