package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mehy12/edumate/core/quiz"
)

type quizApi struct {
	svc      quiz.ServiceInterface
	validate *validator.Validate
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc quiz.ServiceInterface, validate *validator.Validate) {
	api := quizApi{
		svc:      svc,
		validate: validate,
	}

	qg := g.Group("/quizzes", jwt)
	qg.POST("/grade", api.grade)
}

func (api *quizApi) grade(ctx echo.Context) error {
	var data quiz.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	caller, err := contextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	res := api.svc.Grade(ctx.Request().Context(), caller, data)

	return ctx.JSON(http.StatusOK, GradeResponse{
		Score:        res.Score,
		CorrectCount: res.CorrectCount,
		Total:        res.Total,
		Detailed:     GradeDetails{Questions: res.Questions},
	})
}

type (
	GradeDetails struct {
		Questions []quiz.QuestionResult `json:"questions"`
	}

	GradeResponse struct {
		Score        int          `json:"score"`
		CorrectCount int          `json:"correct_count"`
		Total        int          `json:"total"`
		Detailed     GradeDetails `json:"detailed"`
	}
)
