package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/pzkpfw44/Pulse360-sub000/internal/cache"
	"github.com/pzkpfw44/Pulse360-sub000/internal/config"
	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
)

// evaluatorErrorMessage is shown to the assessor when the quality check
// itself fails. The form stays usable; the assessor can re-trigger the
// check or submit anyway.
const evaluatorErrorMessage = "An error occurred while checking your feedback. You can still submit it, or try the check again."

const evaluatorSystemPrompt = `You are a feedback quality reviewer for a 360-degree feedback tool.
You receive one assessor's draft responses and judge whether the feedback is
specific, balanced, and actionable.

Respond with the following structure, exactly:

OVERALL ASSESSMENT:
CONGRUENCE (Rating vs. Comment): <good|needs_improvement|poor> - <one-line detail>
CONGRUENCE (Category Consistency): <good|questionable|poor> - <one-line detail>

SUMMARY:
<two or three sentences for the assessor>

Then a fenced JSON block:
` + "```json" + `
{"quality": "<good|needs_improvement|poor>", "message": "<summary for the assessor>", "suggestions": ["..."], "question_feedback": {"<question_id>": "<note>"}}
` + "```"

// EvaluateRequest carries one assessor's current responses, joined with
// their question metadata, to the quality evaluator.
type EvaluateRequest struct {
	Responses        []models.EvaluationResponse `json:"responses" validate:"required,min=1"`
	AssessorRelation models.AssessorRelation     `json:"assessor_relation" validate:"omitempty,assessor_relation"`
	TargetEmployeeID uint                        `json:"target_employee_id"`
}

// EvaluatorService scores a set of feedback responses. Implementations must
// not return an error for remote failures: they substitute a synthetic
// result with Quality "error" so the form flow never crashes on a flaky
// upstream.
type EvaluatorService interface {
	Evaluate(ctx context.Context, req *EvaluateRequest) (*models.AIEvaluationResult, error)
}

// EvaluatorFunc adapts a plain function to EvaluatorService.
type EvaluatorFunc func(ctx context.Context, req *EvaluateRequest) (*models.AIEvaluationResult, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, req *EvaluateRequest) (*models.AIEvaluationResult, error) {
	return f(ctx, req)
}

type openAIEvaluator struct {
	client   *openai.Client
	model    string
	cache    cache.CacheService
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewOpenAIEvaluator(cfg config.AIConfig, cacheService cache.CacheService, logger *slog.Logger) EvaluatorService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &openAIEvaluator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		cache:    cacheService,
		cacheTTL: cfg.CacheTTL,
		logger:   logger,
	}
}

func (s *openAIEvaluator) Evaluate(ctx context.Context, req *EvaluateRequest) (*models.AIEvaluationResult, error) {
	key, err := evaluationCacheKey(req)
	if err == nil {
		var cached models.AIEvaluationResult
		if cacheErr := s.cache.Get(ctx, key, &cached); cacheErr == nil {
			s.logger.Debug("Evaluation cache hit", "key", key)
			return &cached, nil
		} else if !errors.Is(cacheErr, cache.ErrCacheMiss) {
			s.logger.Warn("Evaluation cache read failed", "key", key, "error", cacheErr)
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: evaluatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildEvaluationPrompt(req)},
		},
	})
	if err != nil {
		s.logger.Error("Quality check call failed", "error", err, "target_employee_id", req.TargetEmployeeID)
		return errorResult(), nil
	}
	if len(resp.Choices) == 0 {
		s.logger.Error("Quality check returned no choices", "target_employee_id", req.TargetEmployeeID)
		return errorResult(), nil
	}

	raw := resp.Choices[0].Message.Content
	result, err := parseEvaluation(raw)
	if err != nil {
		s.logger.Warn("Quality check response was unparseable", "error", err)
		return errorResult(), nil
	}

	if key != "" {
		if cacheErr := s.cache.Set(ctx, key, result, s.cacheTTL); cacheErr != nil {
			s.logger.Warn("Evaluation cache write failed", "key", key, "error", cacheErr)
		}
	}

	return result, nil
}

// evaluationCacheKey hashes the full request so an unchanged response set
// maps to the same verdict without a second model call.
func evaluationCacheKey(req *EvaluateRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "feedback:eval:" + hex.EncodeToString(sum[:]), nil
}

func buildEvaluationPrompt(req *EvaluateRequest) string {
	var b strings.Builder

	if req.AssessorRelation != "" {
		fmt.Fprintf(&b, "Assessor relation to the target employee: %s\n\n", req.AssessorRelation)
	}
	b.WriteString("Draft responses:\n")
	for _, r := range req.Responses {
		fmt.Fprintf(&b, "\n[%s] %s", r.QuestionID, r.QuestionText)
		if r.Category != "" {
			fmt.Fprintf(&b, " (category: %s)", r.Category)
		}
		b.WriteString("\n")
		if r.Rating != nil {
			fmt.Fprintf(&b, "Rating: %d/5\n", *r.Rating)
		}
		if r.Text != "" {
			fmt.Fprintf(&b, "Comment: %s\n", r.Text)
		}
	}

	return b.String()
}

// evaluationWire is the JSON block the model is asked to emit.
type evaluationWire struct {
	Quality          models.Quality    `json:"quality"`
	Message          string            `json:"message"`
	Suggestions      []string          `json:"suggestions"`
	QuestionFeedback map[string]string `json:"question_feedback"`
}

func parseEvaluation(raw string) (*models.AIEvaluationResult, error) {
	block := extractJSONBlock(raw)
	if block == "" {
		return nil, errors.New("no JSON block in evaluator response")
	}

	var wire evaluationWire
	if err := json.Unmarshal([]byte(block), &wire); err != nil {
		return nil, fmt.Errorf("failed to decode evaluator JSON: %w", err)
	}

	switch wire.Quality {
	case models.QualityGood, models.QualityNeedsImprovement, models.QualityPoor:
	default:
		return nil, fmt.Errorf("evaluator returned unknown quality %q", wire.Quality)
	}

	if wire.QuestionFeedback == nil {
		wire.QuestionFeedback = make(map[string]string)
	}

	return &models.AIEvaluationResult{
		Quality:          wire.Quality,
		Message:          wire.Message,
		Suggestions:      wire.Suggestions,
		QuestionFeedback: wire.QuestionFeedback,
		AnalysisDetails: models.AnalysisDetails{
			UsedAI:     true,
			AIResponse: raw,
		},
	}, nil
}

// extractJSONBlock prefers a fenced ```json block, then falls back to the
// outermost braces.
func extractJSONBlock(raw string) string {
	if start := strings.Index(raw, "```json"); start >= 0 {
		rest := raw[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return ""
}

func errorResult() *models.AIEvaluationResult {
	return &models.AIEvaluationResult{
		Quality:          models.QualityError,
		Message:          evaluatorErrorMessage,
		Suggestions:      []string{},
		QuestionFeedback: make(map[string]string),
		AnalysisDetails:  models.AnalysisDetails{UsedAI: false},
	}
}
