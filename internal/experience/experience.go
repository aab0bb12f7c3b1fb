package experience

import (
	"regexp"
	"strconv"
)

const (
	// Requirements above this are treated as pattern misfires
	// (founding years, phone fragments and the like).
	maxSaneYears = 20

	// Undetermined means no requirement could be extracted. It is a
	// sentinel, not a real zero-years requirement: consumers must not
	// filter on it.
	Undetermined = 0
)

// middleware matches the optional filler words between the number and
// the "experience" keyword: "5 years of relevant professional experience".
const middleware = `(?:\s*(?:of|relevant|professional|work|industry)\s*)*`

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)` + middleware + `(?:experience|exp)?`),
	regexp.MustCompile(`(?i)(\d+)\s*-\s*\d+\s*(?:years?|yrs?)` + middleware + `(?:experience|exp)?`),
	regexp.MustCompile(`(?i)at least\s*(\d+)\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)minimum\s*(\d+)\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)more than\s*(\d+)\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)\s+`),
}

// Extract returns the minimum years of experience a description asks for,
// or Undetermined when no requirement can be found.
//
// Matching is lexical, not semantic: a phrase like "5 years in business"
// still yields 5. When several requirements are stated ("5 years Python,
// 3 years SQL") the maximum wins, since the hardest threshold is the one
// the guardrail should be conservative about.
func Extract(description string) int {
	maxYears := Undetermined

	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(description, -1) {
			val, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			if val <= 0 || val >= maxSaneYears {
				continue
			}
			if val > maxYears {
				maxYears = val
			}
		}
	}

	return maxYears
}

// Passes reports whether a posting clears the experience guardrail for a
// candidate with the given declared years.
//
// An undetermined requirement never filters. An unknown candidate
// (candidateYears == 0) is never rejected. Otherwise the posting passes
// when its requirement is within one year above the candidate's
// experience: a candidate with 3 years may apply for a 4-years posting.
func Passes(candidateYears int, description string) bool {
	if candidateYears == 0 {
		return true
	}

	return MeetsRequirement(candidateYears, Extract(description))
}

// MeetsRequirement applies the guardrail rule to an already extracted
// requirement.
func MeetsRequirement(candidateYears, required int) bool {
	if candidateYears == 0 || required == Undetermined {
		return true
	}

	return required <= candidateYears+1
}
