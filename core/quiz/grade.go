package quiz

import (
	"math"
	"strings"
)

// Grade checks `answers` against `questions`, in question order.
//
// Choice questions need the exact answer, case aside. Short answers also pass when either
// text contains the other. A missing or blank answer is always wrong.
// When a question is answered more than once, the first answer counts.
func Grade(questions []Question, answers []Answer) Result {
	given := make(map[string]string, len(answers))
	for _, a := range answers {
		if _, ok := given[a.QuestionID]; !ok {
			given[a.QuestionID] = strings.TrimSpace(a.Answer)
		}
	}

	res := Result{Total: len(questions), Questions: make([]QuestionResult, 0, len(questions))}
	for _, q := range questions {
		answer := given[q.ID]
		correct := isCorrect(q, answer)
		if correct {
			res.CorrectCount++
		}
		res.Questions = append(res.Questions, QuestionResult{
			ID:            q.ID,
			Question:      q.Question,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			Explanation:   q.Explanation,
		})
	}

	if res.Total > 0 {
		res.Score = int(math.Round(float64(res.CorrectCount) * 100 / float64(res.Total)))
	}
	return res
}

func isCorrect(q Question, answer string) bool {
	if answer == "" {
		return false
	}
	got := strings.ToLower(answer)
	want := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))

	switch q.Type {
	case TypeMCQ, TypeTrueFalse:
		return got == want
	case TypeShortAnswer:
		return strings.Contains(got, want) || strings.Contains(want, got)
	default:
		return false
	}
}
