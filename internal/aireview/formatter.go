package aireview

import (
	"fmt"
	"strings"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
)

// FormattedFeedback is the UI-ready evaluation: the AI result augmented with
// the congruence observations recovered from its raw prose. It is derived
// state — recomputed on every check and discarded on every edit.
type FormattedFeedback struct {
	models.AIEvaluationResult
	Observations Observations `json:"observations"`
	IsFallback   bool         `json:"is_fallback"`
}

// Suggestions at or below this length carry no actionable content and are
// dropped.
const minSuggestionLength = 10

const (
	fallbackSuggestion = "Review feedback for specificity, balance, and actionability."

	noteAlignComment  = "Check that this comment aligns with the rating you selected."
	noteJustifyRating = "Consider adding a comment with concrete examples to justify this rating."
)

// Format normalizes one AI evaluation result into the structure the assessor
// form renders. It is pure and idempotent: re-applying it to its own output
// injects no duplicate suggestions or notes.
func Format(ai models.AIEvaluationResult, responses []models.EvaluationResponse) FormattedFeedback {
	out := FormattedFeedback{AIEvaluationResult: ai}
	if out.Quality == "" {
		out.Quality = models.QualityGood
	}

	suggestions := append([]string(nil), ai.Suggestions...)
	feedback := make(map[string]string, len(ai.QuestionFeedback))
	for id, note := range ai.QuestionFeedback {
		feedback[id] = note
	}

	out.Observations = parseObservations(ai.AnalysisDetails.AIResponse)

	if obs := out.Observations.RatingCommentCongruence; obs != nil && obs.Verdict != VerdictGood {
		suggestions = appendSuggestion(suggestions, "Rating/Comment Inconsistency: "+obs.Detail)
		weakJustification := weakJustificationRe.MatchString(obs.Detail)
		for _, r := range responses {
			switch {
			case r.QuestionType == models.QuestionOpenEnded && strings.TrimSpace(r.Text) != "":
				feedback[r.QuestionID] = appendNote(feedback[r.QuestionID], noteAlignComment)
			case r.QuestionType == models.QuestionRating && weakJustification:
				feedback[r.QuestionID] = appendNote(feedback[r.QuestionID], noteJustifyRating)
			}
		}
	}

	if obs := out.Observations.CategoryConsistency; obs != nil && obs.Verdict != VerdictGood {
		suggestions = appendSuggestion(suggestions, "Category Consistency: "+obs.Detail)
		// When no category name can be recovered from the detail the
		// per-question note is dropped entirely; only the suggestion above
		// survives.
		if name := extractCategoryName(obs.Detail); name != "" {
			note := fmt.Sprintf("Review this answer for consistency with your other responses in the %q category.", name)
			for _, r := range responses {
				if strings.EqualFold(r.Category, name) {
					feedback[r.QuestionID] = appendNote(feedback[r.QuestionID], note)
				}
			}
		}
	}

	out.IsFallback = !ai.AnalysisDetails.UsedAI
	if out.IsFallback && len(suggestions) == 0 && out.Quality != models.QualityGood {
		suggestions = append(suggestions, fallbackSuggestion)
	}

	out.Suggestions = dedupeSuggestions(suggestions)
	out.QuestionFeedback = feedback
	return out
}

// appendSuggestion adds s unless an identical suggestion is already present.
func appendSuggestion(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// appendNote appends note to existing feedback text. The substring check
// keeps repeated formatting of the same result idempotent.
func appendNote(existing, note string) string {
	if strings.Contains(existing, note) {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + " " + note
}

// dedupeSuggestions applies set semantics preserving first occurrence and
// drops entries too short to be actionable.
func dedupeSuggestions(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if len(s) <= minSuggestionLength {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
