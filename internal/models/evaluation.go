package models

type Quality string

const (
	QualityGood             Quality = "good"
	QualityNeedsImprovement Quality = "needs_improvement"
	QualityPoor             Quality = "poor"
	QualityError            Quality = "error"
)

// AnalysisDetails records how an evaluation result was produced. AIResponse
// holds the raw model prose; downstream formatting scans it for the
// congruence section.
type AnalysisDetails struct {
	UsedAI     bool   `json:"used_ai"`
	AIResponse string `json:"ai_response,omitempty"`
}

// AIEvaluationResult is the verdict returned by one quality check. It is
// superseded by each new check and only persisted as part of the final
// submission record.
type AIEvaluationResult struct {
	Quality          Quality           `json:"quality"`
	Message          string            `json:"message"`
	Suggestions      []string          `json:"suggestions"`
	QuestionFeedback map[string]string `json:"question_feedback"`
	AnalysisDetails  AnalysisDetails   `json:"analysis_details"`
}

// EvaluationResponse is the per-question projection sent to the AI evaluator:
// the response joined with its question's text, type and category.
type EvaluationResponse struct {
	QuestionID   string       `json:"question_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Category     string       `json:"category,omitempty"`
	Rating       *int         `json:"rating,omitempty"`
	Text         string       `json:"text,omitempty"`
}
