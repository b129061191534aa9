package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasoft/shule/core/academic"
	"github.com/darasoft/shule/core/user"
	"github.com/darasoft/shule/storage/cache"
)

type academicApi struct {
	svc       academic.Service
	usrSvc    user.Service
	predCache *cache.PredictionCache
	validate  *validator.Validate
}

func registerAcademicAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc academic.Service,
	usrSvc user.Service,
	predCache *cache.PredictionCache,
	validate *validator.Validate,
) {
	api := academicApi{
		svc:       svc,
		usrSvc:    usrSvc,
		predCache: predCache,
		validate:  validate,
	}

	sg := g.Group("/students", jwt)
	sg.POST("", api.createStudent, staffMiddleware())
	sg.GET("", api.queryStudents, staffMiddleware())
	sg.DELETE("", api.destroyStudents, adminMiddleware())
	sg.GET("/:id", api.retrieveStudent, staffMiddleware())
	sg.PUT("/:id", api.updateStudent, staffMiddleware())
	sg.POST("/:id/enrollments", api.enrollStudent, staffMiddleware())
	sg.GET("/:id/grades", api.studentGrades, staffMiddleware())
	sg.GET("/:id/attendance-summary", api.attendanceSummary, staffMiddleware())
	sg.GET("/:id/notifications", api.studentNotifications, staffMiddleware())

	cg := g.Group("/courses", jwt)
	cg.POST("", api.createCourse, staffMiddleware())
	cg.GET("", api.queryCourses)
	cg.GET("/:id", api.retrieveCourse)
	cg.DELETE("", api.destroyCourses, adminMiddleware())

	gg := g.Group("/grades", jwt)
	gg.POST("", api.recordGrade, staffMiddleware())

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.recordAttendance, staffMiddleware())

	ng := g.Group("/notifications", jwt)
	ng.POST("", api.notify, staffMiddleware())
	ng.PUT("/:id/read", api.markNotificationRead)
}

// Student handlers

func (api *academicApi) createStudent(ctx echo.Context) error {
	var data academic.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *academicApi) queryStudents(ctx echo.Context) error {
	filter := new(academic.StudentFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []academic.Student{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.QueryStudents(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []academic.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *academicApi) retrieveStudent(ctx echo.Context) error {
	std, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *academicApi) updateStudent(ctx echo.Context) error {
	var data academic.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	api.invalidatePredictions(ctx, std.ID)
	return ctx.JSON(http.StatusOK, std)
}

func (api *academicApi) destroyStudents(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteStudents(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) enrollStudent(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	enr, err := api.svc.EnrollStudent(ctx.Request().Context(), ctx.Param("id"), data.CourseID)
	if err != nil {
		switch errors.Cause(err) {
		case academic.ErrStudentNotFound, academic.ErrCourseNotFound:
			return errHttpNotFound
		case academic.ErrAlreadyEnrolled:
			return echo.NewHTTPError(http.StatusConflict, academic.ErrAlreadyEnrolled.Error())
		}
		return errors.Wrap(err, "enrolling student")
	}
	api.invalidatePredictions(ctx, enr.StudentID)
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *academicApi) studentGrades(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	grades, err := api.svc.StudentGrades(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("course"), limit)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []academic.GradeEvent{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *academicApi) attendanceSummary(ctx echo.Context) error {
	var since time.Time
	if days, err := strconv.Atoi(ctx.QueryParam("days")); err == nil && days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}

	sum, err := api.svc.StudentAttendanceSummary(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("course"), since)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *academicApi) studentNotifications(ctx echo.Context) error {
	notifs, err := api.svc.StudentNotifications(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []academic.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

// Course handlers

func (api *academicApi) createCourse(ctx echo.Context) error {
	var data academic.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *academicApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []academic.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *academicApi) retrieveCourse(ctx echo.Context) error {
	crs, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *academicApi) destroyCourses(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteCourses(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Grade / attendance / notification handlers

func (api *academicApi) recordGrade(ctx echo.Context) error {
	var data academic.NewGradeEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGradeEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.RecordGrade(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording grade")
	}
	api.invalidatePredictions(ctx, evt.StudentID)
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *academicApi) recordAttendance(ctx echo.Context) error {
	var data academic.NewAttendanceEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendanceEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.RecordAttendance(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording attendance")
	}
	api.invalidatePredictions(ctx, evt.StudentID)
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *academicApi) notify(ctx echo.Context) error {
	var data academic.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ntf, err := api.svc.Notify(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, ntf)
}

func (api *academicApi) markNotificationRead(ctx echo.Context) error {
	ntf, err := api.svc.MarkNotificationRead(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrNotificationNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, ntf)
}

// invalidatePredictions drops stale cached analytics; best-effort.
func (api *academicApi) invalidatePredictions(ctx echo.Context, studentID string) {
	if api.predCache == nil {
		return
	}
	if err := api.predCache.Invalidate(ctx.Request().Context(), studentID); err != nil {
		ctx.Logger().Warnf("%+v", err)
	}
}

type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}
