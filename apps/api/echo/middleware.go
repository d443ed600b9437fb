package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mehy12/edumate/core/enrollment"
)

const objectContextKey = "object"

// enrollmentOwnerMiddleware loads the enrollment `:id` into the context.
// It answers 404 when the enrollment does not exist or belongs to another learner.
func enrollmentOwnerMiddleware(svc enrollment.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			caller, err := contextIdentity(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context identity")
			}

			enr, err := svc.Get(ctx.Request().Context(), caller, ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == enrollment.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding enrollment by ID")
			}
			ctx.Set(objectContextKey, enr)
			return next(ctx)
		}
	}
}
