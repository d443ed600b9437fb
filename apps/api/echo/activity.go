package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type activityApi struct {
	svc ActivityService
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc ActivityService) {
	api := activityApi{svc: svc}
	g.GET("/activity", api.heatmap, jwt)
}

func (api *activityApi) heatmap(ctx echo.Context) error {
	caller, err := contextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	hm, err := api.svc.Heatmap(ctx.Request().Context(), caller.ID, ctx.QueryParam("range"))
	if err != nil {
		return errors.Wrap(err, "computing activity heatmap")
	}
	return ctx.JSON(http.StatusOK, hm)
}
