package quiz

import (
	"github.com/go-playground/validator/v10"

	"github.com/mehy12/edumate/core"
)

const (
	TypeMCQ         = "mcq"
	TypeTrueFalse   = "true_false"
	TypeShortAnswer = "short_answer"
)

// Question is one generated quiz question, correct answer included.
type Question struct {
	ID            string `json:"id" validate:"notblank"`
	Type          string `json:"type" validate:"oneof=mcq true_false short_answer"`
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer" validate:"notblank"`
	Explanation   string `json:"explanation,omitempty"`
}

type Answer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// Submission is a learner's answers to a quiz they were given.
type Submission struct {
	Questions []Question `json:"questions" validate:"required,dive"`
	Answers   []Answer   `json:"answers" validate:"required"`
}

func (s *Submission) Validate(validate *validator.Validate) error {
	for i := range s.Answers {
		s.Answers[i].QuestionID = core.CleanString(s.Answers[i].QuestionID)
	}
	return validate.Struct(s)
}

type QuestionResult struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation,omitempty"`
}

type Result struct {
	Score        int              `json:"score"` // 0-100
	CorrectCount int              `json:"correct_count"`
	Total        int              `json:"total"`
	Questions    []QuestionResult `json:"questions"`
}
