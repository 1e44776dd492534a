package models

type QuestionType string

const (
	QuestionRating    QuestionType = "rating"
	QuestionOpenEnded QuestionType = "open_ended"
)

// Question is one item of a campaign's question set. Question sets are
// supplied by the campaign template and are immutable for the duration of an
// assessor session.
type Question struct {
	ID       string       `json:"id" validate:"required"`
	Text     string       `json:"text" validate:"required"`
	Type     QuestionType `json:"type" validate:"required,question_type"`
	Category string       `json:"category"`
	Required bool         `json:"required"`
	Order    int          `json:"order" validate:"min=0"`
}
