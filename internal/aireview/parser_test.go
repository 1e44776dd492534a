package aireview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObservations(t *testing.T) {
	t.Run("both signals present", func(t *testing.T) {
		raw := "Some preamble.\n" +
			"OVERALL ASSESSMENT:\n" +
			"CONGRUENCE (Rating vs. Comment): poor - ratings do not match positive comments\n" +
			"CONGRUENCE (Category Consistency): questionable - uneven scores in category 'Leadership'\n" +
			"\nSUMMARY:\nLooks mixed overall."

		obs := parseObservations(raw)

		require.NotNil(t, obs.RatingCommentCongruence)
		assert.Equal(t, VerdictPoor, obs.RatingCommentCongruence.Verdict)
		assert.Equal(t, "ratings do not match positive comments", obs.RatingCommentCongruence.Detail)

		require.NotNil(t, obs.CategoryConsistency)
		assert.Equal(t, VerdictQuestionable, obs.CategoryConsistency.Verdict)
	})

	t.Run("section absent yields nothing", func(t *testing.T) {
		obs := parseObservations("CONGRUENCE (Rating vs. Comment): poor - but no section header")
		assert.Nil(t, obs.RatingCommentCongruence)
		assert.Nil(t, obs.CategoryConsistency)
	})

	t.Run("section runs to end of string without summary", func(t *testing.T) {
		raw := "OVERALL ASSESSMENT\nCONGRUENCE (Rating vs Comment): good - aligned"
		obs := parseObservations(raw)
		require.NotNil(t, obs.RatingCommentCongruence)
		assert.Equal(t, VerdictGood, obs.RatingCommentCongruence.Verdict)
		assert.Equal(t, "aligned", obs.RatingCommentCongruence.Detail)
	})

	t.Run("case insensitive matching", func(t *testing.T) {
		raw := "overall assessment:\ncongruence (rating vs. comment): Needs_Improvement - vague comments\n"
		obs := parseObservations(raw)
		require.NotNil(t, obs.RatingCommentCongruence)
		assert.Equal(t, VerdictNeedsImprovement, obs.RatingCommentCongruence.Verdict)
	})

	t.Run("signals outside the section are ignored", func(t *testing.T) {
		raw := "OVERALL ASSESSMENT:\nnothing here\n\nSUMMARY:\n" +
			"CONGRUENCE (Rating vs. Comment): poor - should not be picked up"
		obs := parseObservations(raw)
		assert.Nil(t, obs.RatingCommentCongruence)
	})

	t.Run("unknown verdict token does not match", func(t *testing.T) {
		raw := "OVERALL ASSESSMENT:\nCONGRUENCE (Rating vs. Comment): excellent - not a known verdict\n"
		obs := parseObservations(raw)
		assert.Nil(t, obs.RatingCommentCongruence)
	})
}

func TestExtractCategoryName(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		want   string
	}{
		{"single quoted", "uneven ratings in category 'Leadership' overall", "Leadership"},
		{"double quoted", `scores diverge for category "Team Work" here`, "Team Work"},
		{"bare word", "inconsistency within category Communication.", "Communication"},
		{"quoted wins over bare", "the category 'Delivery' not category Leadership", "Delivery"},
		{"no category mentioned", "ratings vary widely across the board", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCategoryName(tt.detail))
		})
	}
}
