// Package posting holds the job posting data model and the batch
// collection operations the ranking pipeline works on.
package posting

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jobsniper/jobsniper/internal/ai"
)

// Source identifies where a posting was collected from.
type Source string

const (
	SourceJobBoard Source = "job_board"
	SourceSocial   Source = "social"
)

// Posting is one job or social-post record. Title, company, location,
// description, URL and source are owned by the collector; the pipeline
// only ever fills the derived fields.
type Posting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Source      Source `json:"source,omitempty"`
	SearchTerm  string `json:"search_term,omitempty"`

	// Derived by the pipeline. MinYearsRequired 0 means undetermined,
	// not a zero-years requirement.
	MinYearsRequired int              `json:"min_years_required,omitempty"`
	MatchScore       float64          `json:"match_score,omitempty"`
	Analysis         *ai.DeepAnalysis `json:"analysis,omitempty"`
}

// AnalysisScore is the composite-sort primary key: postings without a
// deep analysis compete as zero.
func (p *Posting) AnalysisScore() int {
	if p.Analysis == nil {
		return 0
	}
	return p.Analysis.MatchPercentage
}

// Postings is a batch of postings flowing through the pipeline.
type Postings struct {
	Items []*Posting `json:"items"`
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) Append(other *Postings) {
	if other == nil {
		return
	}
	p.Items = append(p.Items, other.Items...)
}

// Normalize prepares collector output for scoring: nil items are
// dropped and whitespace-only descriptions become empty strings, so
// downstream code can treat Description as always present.
func (p *Postings) Normalize() {
	items := make([]*Posting, 0, len(p.Items))
	for _, item := range p.Items {
		if item == nil {
			continue
		}
		if strings.TrimSpace(item.Description) == "" {
			item.Description = ""
		}
		items = append(items, item)
	}
	p.Items = items
}

// Dedup collapses postings with identical title, company and location,
// keeping the first occurrence. Returns the number removed.
func (p *Postings) Dedup() int {
	type key struct {
		title, company, location string
	}

	seen := make(map[key]bool, len(p.Items))
	kept := make([]*Posting, 0, len(p.Items))

	for _, item := range p.Items {
		k := key{item.Title, item.Company, item.Location}
		if seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, item)
	}

	removed := len(p.Items) - len(kept)
	p.Items = kept
	return removed
}

// SortByMatchScore sorts descending by the local match score. The sort
// is stable so same-score postings keep their arrival order.
func (p *Postings) SortByMatchScore() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		return p.Items[i].MatchScore > p.Items[j].MatchScore
	})
}

// SortByAnalysis sorts descending by (analysis score, match score).
// Postings without an analysis sort as analysis score 0.
func (p *Postings) SortByAnalysis() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		a, b := p.Items[i], p.Items[j]
		if a.AnalysisScore() != b.AnalysisScore() {
			return a.AnalysisScore() > b.AnalysisScore()
		}
		return a.MatchScore > b.MatchScore
	})
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups ranked postings per company for display.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range p.Items {
		entry := map[string]string{
			"title":       item.Title,
			"location":    item.Location,
			"url":         item.URL,
			"match_score": fmt.Sprintf("%.2f", item.MatchScore),
			"min_years":   fmt.Sprintf("%d", item.MinYearsRequired),
			"search_term": item.SearchTerm,
			"source":      string(item.Source),
		}
		if item.Analysis != nil {
			entry["ai_score"] = fmt.Sprintf("%d", item.Analysis.MatchPercentage)
			entry["ai_missing_skills"] = strings.Join(item.Analysis.MissingSkills, ", ")
			entry["ai_reasoning"] = item.Analysis.Reasoning
		}
		report[item.Company] = append(report[item.Company], entry)
	}
	return report
}
