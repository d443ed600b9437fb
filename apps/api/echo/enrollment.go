package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mehy12/edumate/core/enrollment"
)

var errEnrNotFoundInCtx = errors.New("enrollment object not found in echo.Context")

type enrollmentApi struct {
	svc      enrollment.ServiceInterface
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc enrollment.ServiceInterface, validate *validator.Validate) {
	api := enrollmentApi{
		svc:      svc,
		validate: validate,
	}

	eg := g.Group("/enrollments")

	// un-authed endpoints
	eg.POST("/estimate", api.estimate)

	// authed endpoints
	ag := eg.Group("", jwt)
	ag.POST("", api.create)
	ag.GET("", api.query)

	// detail endpoints
	dg := ag.Group("/:id", enrollmentOwnerMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.POST("/schedule", api.schedule)

	g.GET("/scheduled-classes", api.scheduledClasses, jwt)
}

// Handlers

func (api *enrollmentApi) estimate(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, EstimateResponse{EstimatedClassCount: api.svc.Estimate(data)})
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	caller, err := contextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	enr, _, err := api.svc.Create(ctx.Request().Context(), caller, data)
	if err != nil {
		return errors.Wrap(err, "creating enrollment")
	}

	return ctx.JSON(http.StatusCreated, CreateResponse{
		Success:             true,
		EnrollmentID:        enr.ID,
		EstimatedClassCount: enr.EstimatedClassCount,
	})
}

func (api *enrollmentApi) query(ctx echo.Context) error {
	filter := new(enrollment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []enrollment.Enrollment{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	caller, err := contextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	enrs, err := api.svc.Query(ctx.Request().Context(), caller, *filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	enr, ok := ctx.Get(objectContextKey).(enrollment.Enrollment)
	if !ok {
		return errors.Wrap(errEnrNotFoundInCtx, "retrieving object from context")
	}

	sessions, err := api.svc.Sessions(ctx.Request().Context(), enr)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Enrollment: enr, Sessions: nonNilSessions(sessions)})
}

func (api *enrollmentApi) schedule(ctx echo.Context) error {
	enr, ok := ctx.Get(objectContextKey).(enrollment.Enrollment)
	if !ok {
		return errors.Wrap(errEnrNotFoundInCtx, "retrieving object from context")
	}

	var data enrollment.ScheduleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScheduleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Schedule(ctx.Request().Context(), enr, data.Dates)
	if err != nil {
		return errors.Wrap(err, "scheduling sessions")
	}
	return ctx.JSON(http.StatusOK, ScheduleResponse{
		Success:  true,
		Sessions: nonNilSessions(res.Sessions),
		Results:  res.Results,
	})
}

func (api *enrollmentApi) scheduledClasses(ctx echo.Context) error {
	caller, err := contextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	classes, err := api.svc.ScheduledClasses(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "querying scheduled classes")
	}
	if classes == nil {
		classes = []enrollment.ScheduledClass{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func nonNilSessions(sessions []enrollment.ClassSession) []enrollment.ClassSession {
	if sessions == nil {
		return []enrollment.ClassSession{}
	}
	return sessions
}

type (
	EstimateResponse struct {
		EstimatedClassCount int `json:"estimated_class_count"`
	}

	CreateResponse struct {
		Success             bool   `json:"success"`
		EnrollmentID        string `json:"enrollment_id"`
		EstimatedClassCount int    `json:"estimated_class_count"`
	}

	DetailResponse struct {
		Enrollment enrollment.Enrollment     `json:"enrollment"`
		Sessions   []enrollment.ClassSession `json:"sessions"`
	}

	ScheduleResponse struct {
		Success  bool                     `json:"success"`
		Sessions []enrollment.ClassSession `json:"sessions"`
		Results  []enrollment.EntryResult  `json:"results"`
	}
)
