package quiz

import (
	"context"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/activity"
)

type (
	ActivityLogger interface {
		Log(ctx context.Context, userID string, typ activity.EventType)
	}

	ServiceInterface interface {
		Grade(ctx context.Context, caller core.Identity, sub Submission) Result
	}

	// Service grades quizzes handed out by the tutor; quizzes and attempts are not stored here.
	Service struct {
		activity ActivityLogger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(activity ActivityLogger) *Service {
	return &Service{activity: activity}
}

func (svc *Service) Grade(ctx context.Context, caller core.Identity, sub Submission) Result {
	res := Grade(sub.Questions, sub.Answers)
	svc.activity.Log(ctx, caller.ID, activity.QuizSubmitted)
	return res
}
