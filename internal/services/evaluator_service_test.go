package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzkpfw44/Pulse360-sub000/internal/cache"
	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
)

// mapCache is an in-memory CacheService for evaluator tests.
type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *mapCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func TestParseEvaluation(t *testing.T) {
	t.Run("fenced json block", func(t *testing.T) {
		raw := "OVERALL ASSESSMENT:\n" +
			"CONGRUENCE (Rating vs. Comment): good - aligned\n\n" +
			"SUMMARY:\nSolid feedback overall.\n\n" +
			"```json\n" +
			`{"quality": "good", "message": "Solid feedback overall.", "suggestions": [], "question_feedback": {"q1": "nice detail"}}` +
			"\n```\n"

		result, err := parseEvaluation(raw)
		require.NoError(t, err)

		assert.Equal(t, models.QualityGood, result.Quality)
		assert.Equal(t, "Solid feedback overall.", result.Message)
		assert.Equal(t, map[string]string{"q1": "nice detail"}, result.QuestionFeedback)
		assert.True(t, result.AnalysisDetails.UsedAI)
		// The raw prose travels with the result for downstream formatting.
		assert.Equal(t, raw, result.AnalysisDetails.AIResponse)
	})

	t.Run("bare braces fallback", func(t *testing.T) {
		raw := `Here is my verdict: {"quality": "needs_improvement", "message": "Add examples."}`

		result, err := parseEvaluation(raw)
		require.NoError(t, err)

		assert.Equal(t, models.QualityNeedsImprovement, result.Quality)
		assert.NotNil(t, result.QuestionFeedback, "missing feedback map should be filled in")
	})

	t.Run("unknown quality is rejected", func(t *testing.T) {
		_, err := parseEvaluation(`{"quality": "excellent", "message": "made up"}`)
		assert.Error(t, err)
	})

	t.Run("synthetic error quality is not accepted from the wire", func(t *testing.T) {
		_, err := parseEvaluation(`{"quality": "error", "message": "spoofed"}`)
		assert.Error(t, err)
	})

	t.Run("no json at all", func(t *testing.T) {
		_, err := parseEvaluation("The feedback looks fine to me.")
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseEvaluation("```json\n{\"quality\": \"good\",\n```")
		assert.Error(t, err)
	})
}

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "fenced block wins over surrounding braces",
			raw:  "prose {not json}\n```json\n{\"quality\": \"good\"}\n```\ntrailer",
			want: `{"quality": "good"}`,
		},
		{
			name: "unterminated fence falls back to braces",
			raw:  "```json\n{\"quality\": \"good\"}",
			want: `{"quality": "good"}`,
		},
		{
			name: "outermost braces",
			raw:  `verdict: {"a": {"b": 1}} done`,
			want: `{"a": {"b": 1}}`,
		},
		{
			name: "nothing to extract",
			raw:  "no structured content here",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONBlock(tt.raw))
		})
	}
}

func TestEvaluationCacheKey(t *testing.T) {
	rating := 4
	req := &EvaluateRequest{
		Responses: []models.EvaluationResponse{
			{QuestionID: "q1", QuestionText: "Rate communication", Rating: &rating},
		},
		AssessorRelation: models.RelationPeer,
		TargetEmployeeID: 7,
	}

	key1, err := evaluationCacheKey(req)
	require.NoError(t, err)
	key2, err := evaluationCacheKey(req)
	require.NoError(t, err)

	assert.Equal(t, key1, key2, "identical requests must share a key")
	assert.Contains(t, key1, "feedback:eval:")

	other := *req
	other.AssessorRelation = models.RelationManager
	key3, err := evaluationCacheKey(&other)
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3, "changed request must miss the cache")
}

func TestEvaluate_CacheHitSkipsModelCall(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := newMapCache()

	rating := 5
	req := &EvaluateRequest{
		Responses: []models.EvaluationResponse{
			{QuestionID: "q1", QuestionText: "Rate communication", Rating: &rating},
		},
		AssessorRelation: models.RelationPeer,
	}

	key, err := evaluationCacheKey(req)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), key, &models.AIEvaluationResult{
		Quality: models.QualityGood,
		Message: "cached verdict",
	}, time.Minute))

	// The nil client would panic on any model call, so a passing test proves
	// the cached verdict short-circuits it.
	evaluator := &openAIEvaluator{
		model:    "test-model",
		cache:    store,
		cacheTTL: time.Minute,
		logger:   logger,
	}

	result, err := evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.QualityGood, result.Quality)
	assert.Equal(t, "cached verdict", result.Message)
}

func TestErrorResult(t *testing.T) {
	result := errorResult()

	assert.Equal(t, models.QualityError, result.Quality)
	assert.Equal(t, evaluatorErrorMessage, result.Message)
	assert.False(t, result.AnalysisDetails.UsedAI)
	assert.NotNil(t, result.QuestionFeedback)
}
