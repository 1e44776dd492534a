package aireview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
)

func intPtr(v int) *int { return &v }

func sampleResponses() []models.EvaluationResponse {
	return []models.EvaluationResponse{
		{
			QuestionID:   "q1",
			QuestionText: "How well does this person communicate?",
			QuestionType: models.QuestionRating,
			Category:     "Communication",
			Rating:       intPtr(5),
		},
		{
			QuestionID:   "q2",
			QuestionText: "Describe their strengths",
			QuestionType: models.QuestionOpenEnded,
			Category:     "Communication",
			Text:         "They are always clear and concise in meetings.",
		},
		{
			QuestionID:   "q3",
			QuestionText: "How is their leadership?",
			QuestionType: models.QuestionRating,
			Category:     "Leadership",
			Rating:       intPtr(2),
		},
	}
}

func TestFormat_RatingCommentInconsistency(t *testing.T) {
	ai := models.AIEvaluationResult{
		Quality: models.QualityNeedsImprovement,
		Message: "Mixed signals in this feedback",
		AnalysisDetails: models.AnalysisDetails{
			UsedAI: true,
			AIResponse: "OVERALL ASSESSMENT\n" +
				"CONGRUENCE (Rating vs. Comment): poor - ratings do not match positive comments\n" +
				"\nSUMMARY\nPlease revise.",
		},
	}

	out := Format(ai, sampleResponses())

	require.NotNil(t, out.Observations.RatingCommentCongruence)
	assert.Equal(t, VerdictPoor, out.Observations.RatingCommentCongruence.Verdict)

	found := false
	for _, s := range out.Suggestions {
		if strings.Contains(s, "Rating/Comment Inconsistency") {
			found = true
		}
	}
	assert.True(t, found, "expected a Rating/Comment Inconsistency suggestion, got %v", out.Suggestions)

	// Open-ended answers with text get the alignment note.
	assert.Contains(t, out.QuestionFeedback["q2"], noteAlignComment)
	// Detail does not mention missing examples, so rating questions stay
	// untouched.
	assert.NotContains(t, out.QuestionFeedback["q1"], noteJustifyRating)
}

func TestFormat_WeakJustificationNote(t *testing.T) {
	ai := models.AIEvaluationResult{
		Quality: models.QualityNeedsImprovement,
		AnalysisDetails: models.AnalysisDetails{
			UsedAI: true,
			AIResponse: "OVERALL ASSESSMENT\n" +
				"CONGRUENCE (Rating vs. Comment): needs_improvement - high ratings with no example given\n",
		},
	}

	out := Format(ai, sampleResponses())

	assert.Contains(t, out.QuestionFeedback["q1"], noteJustifyRating)
	assert.Contains(t, out.QuestionFeedback["q3"], noteJustifyRating)
	assert.NotContains(t, out.QuestionFeedback["q2"], noteJustifyRating)
}

func TestFormat_CategoryConsistency(t *testing.T) {
	t.Run("named category gets per-question notes", func(t *testing.T) {
		ai := models.AIEvaluationResult{
			Quality: models.QualityNeedsImprovement,
			AnalysisDetails: models.AnalysisDetails{
				UsedAI: true,
				AIResponse: "OVERALL ASSESSMENT\n" +
					"CONGRUENCE (Category Consistency): questionable - uneven answers in category 'Communication'\n",
			},
		}

		out := Format(ai, sampleResponses())

		found := false
		for _, s := range out.Suggestions {
			if strings.Contains(s, "Category Consistency") {
				found = true
			}
		}
		assert.True(t, found)

		assert.Contains(t, out.QuestionFeedback["q1"], "Communication")
		assert.Contains(t, out.QuestionFeedback["q2"], "Communication")
		_, hasLeadershipNote := out.QuestionFeedback["q3"]
		assert.False(t, hasLeadershipNote)
	})

	t.Run("unextractable name drops the notes but keeps the suggestion", func(t *testing.T) {
		ai := models.AIEvaluationResult{
			Quality: models.QualityNeedsImprovement,
			AnalysisDetails: models.AnalysisDetails{
				UsedAI: true,
				AIResponse: "OVERALL ASSESSMENT\n" +
					"CONGRUENCE (Category Consistency): poor - answers contradict each other throughout\n",
			},
		}

		out := Format(ai, sampleResponses())

		found := false
		for _, s := range out.Suggestions {
			if strings.Contains(s, "Category Consistency") {
				found = true
			}
		}
		assert.True(t, found)
		assert.Empty(t, out.QuestionFeedback)
	})
}

func TestFormat_Idempotent(t *testing.T) {
	ai := models.AIEvaluationResult{
		Quality:     models.QualityPoor,
		Suggestions: []string{"Add concrete examples to your comments."},
		AnalysisDetails: models.AnalysisDetails{
			UsedAI: true,
			AIResponse: "OVERALL ASSESSMENT\n" +
				"CONGRUENCE (Rating vs. Comment): poor - comments lack supporting detail\n" +
				"CONGRUENCE (Category Consistency): questionable - mixed answers in category 'Leadership'\n",
		},
	}
	responses := sampleResponses()

	first := Format(ai, responses)
	second := Format(first.AIEvaluationResult, responses)

	assert.Equal(t, first.Suggestions, second.Suggestions)
	assert.Equal(t, first.QuestionFeedback, second.QuestionFeedback)
	assert.Equal(t, first.Observations, second.Observations)
}

func TestFormat_FallbackSuggestion(t *testing.T) {
	t.Run("added when fallback with no suggestions and non-good quality", func(t *testing.T) {
		ai := models.AIEvaluationResult{
			Quality:         models.QualityError,
			AnalysisDetails: models.AnalysisDetails{UsedAI: false},
		}

		out := Format(ai, nil)

		assert.True(t, out.IsFallback)
		assert.Equal(t, []string{fallbackSuggestion}, out.Suggestions)
	})

	t.Run("not added for good quality", func(t *testing.T) {
		ai := models.AIEvaluationResult{
			Quality:         models.QualityGood,
			AnalysisDetails: models.AnalysisDetails{UsedAI: false},
		}

		out := Format(ai, nil)

		assert.True(t, out.IsFallback)
		assert.Empty(t, out.Suggestions)
	})

	t.Run("not added when the evaluator ran", func(t *testing.T) {
		ai := models.AIEvaluationResult{
			Quality:         models.QualityNeedsImprovement,
			AnalysisDetails: models.AnalysisDetails{UsedAI: true},
		}

		out := Format(ai, nil)

		assert.False(t, out.IsFallback)
		assert.Empty(t, out.Suggestions)
	})
}

func TestFormat_SuggestionHygiene(t *testing.T) {
	ai := models.AIEvaluationResult{
		Quality: models.QualityNeedsImprovement,
		Suggestions: []string{
			"Balance praise with growth areas.",
			"Balance praise with growth areas.",
			"Too short",
		},
		AnalysisDetails: models.AnalysisDetails{UsedAI: true},
	}

	out := Format(ai, nil)

	assert.Equal(t, []string{"Balance praise with growth areas."}, out.Suggestions)
}

func TestFormat_DoesNotMutateInput(t *testing.T) {
	ai := models.AIEvaluationResult{
		Quality:          models.QualityNeedsImprovement,
		Suggestions:      []string{"Original suggestion stays put."},
		QuestionFeedback: map[string]string{"q2": "original note"},
		AnalysisDetails: models.AnalysisDetails{
			UsedAI: true,
			AIResponse: "OVERALL ASSESSMENT\n" +
				"CONGRUENCE (Rating vs. Comment): poor - mismatch\n",
		},
	}

	_ = Format(ai, sampleResponses())

	assert.Equal(t, []string{"Original suggestion stays put."}, ai.Suggestions)
	assert.Equal(t, map[string]string{"q2": "original note"}, ai.QuestionFeedback)
}
