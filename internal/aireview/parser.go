// Package aireview turns raw AI evaluation output into the structure the
// assessor form renders. The congruence signals are recovered from free-form
// model prose with fixed patterns; this is a best-effort extractor, and any
// section it cannot find silently yields no observation. If the upstream
// prompt format changes, this file is the only place the pattern contract
// lives.
package aireview

import (
	"regexp"
	"strings"
)

type Verdict string

const (
	VerdictGood             Verdict = "good"
	VerdictNeedsImprovement Verdict = "needs_improvement"
	VerdictQuestionable     Verdict = "questionable"
	VerdictPoor             Verdict = "poor"
)

// Observation is one congruence signal: a verdict plus the model's stated
// reason.
type Observation struct {
	Verdict Verdict `json:"verdict"`
	Detail  string  `json:"detail"`
}

// Observations carries the two signals the evaluator prompt asks for. A nil
// field means the corresponding line was absent or unparseable.
type Observations struct {
	RatingCommentCongruence *Observation `json:"rating_comment_congruence"`
	CategoryConsistency     *Observation `json:"category_consistency"`
}

var (
	// The assessment block runs from the OVERALL ASSESSMENT header to the
	// next SUMMARY/RECOMMENDATIONS header or end of string.
	overallSectionRe = regexp.MustCompile(`(?is)OVERALL\s+ASSESSMENT\s*:?\s*(.*?)(?:\n\s*(?:SUMMARY|RECOMMENDATIONS)\b|$)`)

	ratingCommentRe = regexp.MustCompile(`(?i)CONGRUENCE\s*\(\s*Rating\s+vs\.?\s+Comment\s*\)\s*:\s*(good|needs_improvement|poor)\s*-\s*(.+)`)
	categoryRe      = regexp.MustCompile(`(?i)CONGRUENCE\s*\(\s*Category\s+Consistency\s*\)\s*:\s*(good|questionable|poor)\s*-\s*(.+)`)

	quotedCategoryNameRe = regexp.MustCompile(`(?i)category\s+['"]([^'"]+)['"]`)
	bareCategoryNameRe   = regexp.MustCompile(`(?i)category\s+([A-Za-z][\w&/-]*)`)

	weakJustificationRe = regexp.MustCompile(`(?i)lack|missing|no example|unsupported`)
)

// parseObservations scans the OVERALL ASSESSMENT block of raw model prose for
// the two fixed congruence lines.
func parseObservations(raw string) Observations {
	var obs Observations

	m := overallSectionRe.FindStringSubmatch(raw)
	if m == nil {
		return obs
	}

	for _, line := range strings.Split(m[1], "\n") {
		if lm := ratingCommentRe.FindStringSubmatch(line); lm != nil {
			obs.RatingCommentCongruence = &Observation{
				Verdict: Verdict(strings.ToLower(lm[1])),
				Detail:  strings.TrimSpace(lm[2]),
			}
			continue
		}
		if lm := categoryRe.FindStringSubmatch(line); lm != nil {
			obs.CategoryConsistency = &Observation{
				Verdict: Verdict(strings.ToLower(lm[1])),
				Detail:  strings.TrimSpace(lm[2]),
			}
		}
	}

	return obs
}

// extractCategoryName pulls a category label out of a consistency detail.
// Quoted names win; a single bare word after "category" is accepted as a
// fallback. Empty string means no name could be recovered.
func extractCategoryName(detail string) string {
	if m := quotedCategoryNameRe.FindStringSubmatch(detail); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bareCategoryNameRe.FindStringSubmatch(detail); m != nil {
		return strings.Trim(m[1], ".,;:")
	}
	return ""
}
