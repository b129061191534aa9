package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasoft/shule/core/academic"
	"github.com/darasoft/shule/core/analytics"
	"github.com/darasoft/shule/core/user"
	"github.com/darasoft/shule/storage/cache"
)

type analyticsApi struct {
	svc       analytics.Service
	usrSvc    user.Service
	predCache *cache.PredictionCache
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc analytics.Service, usrSvc user.Service, predCache *cache.PredictionCache) {
	api := analyticsApi{
		svc:       svc,
		usrSvc:    usrSvc,
		predCache: predCache,
	}

	ag := g.Group("/analytics", jwt, staffMiddleware())
	ag.GET("/features/:id", api.features)
	ag.GET("/dropout-prediction/:id", api.dropoutPrediction)
	ag.GET("/grade-predictions/:id", api.gradePredictions)
	ag.GET("/risk-factors/:id", api.riskFactors)
}

func (api *analyticsApi) features(ctx echo.Context) error {
	fv, err := api.svc.StudentFeatures(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "extracting features")
	}
	return ctx.JSON(http.StatusOK, fv)
}

func (api *analyticsApi) dropoutPrediction(ctx echo.Context) error {
	studentID := ctx.Param("id")

	var cached analytics.RiskAssessment
	if api.cachedResponse(ctx, "dropout-prediction", studentID, &cached) {
		return ctx.JSON(http.StatusOK, cached)
	}

	assessment, err := api.svc.DropoutRisk(ctx.Request().Context(), studentID)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "assessing dropout risk")
	}
	api.cacheResponse(ctx, "dropout-prediction", studentID, assessment)
	return ctx.JSON(http.StatusOK, assessment)
}

func (api *analyticsApi) gradePredictions(ctx echo.Context) error {
	studentID := ctx.Param("id")

	var cached analytics.GradeReport
	if api.cachedResponse(ctx, "grade-predictions", studentID, &cached) {
		return ctx.JSON(http.StatusOK, cached)
	}

	report, err := api.svc.GradePredictions(ctx.Request().Context(), studentID)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "predicting grades")
	}
	api.cacheResponse(ctx, "grade-predictions", studentID, report)
	return ctx.JSON(http.StatusOK, report)
}

func (api *analyticsApi) riskFactors(ctx echo.Context) error {
	studentID := ctx.Param("id")

	var cached []analytics.Factor
	if api.cachedResponse(ctx, "risk-factors", studentID, &cached) {
		return ctx.JSON(http.StatusOK, cached)
	}

	factors, err := api.svc.RiskFactors(ctx.Request().Context(), studentID)
	if err != nil {
		if errors.Cause(err) == academic.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "analyzing risk factors")
	}
	api.cacheResponse(ctx, "risk-factors", studentID, factors)
	return ctx.JSON(http.StatusOK, factors)
}

// cachedResponse reports whether a fresh cached value was loaded into dest.
// Cache failures other than a miss are logged and treated as a miss.
func (api *analyticsApi) cachedResponse(ctx echo.Context, kind, studentID string, dest interface{}) bool {
	if api.predCache == nil {
		return false
	}
	err := api.predCache.Get(ctx.Request().Context(), kind, studentID, dest)
	if err == nil {
		return true
	}
	if errors.Cause(err) != cache.ErrCacheMiss {
		ctx.Logger().Warnf("%+v", err)
	}
	return false
}

func (api *analyticsApi) cacheResponse(ctx echo.Context, kind, studentID string, val interface{}) {
	if api.predCache == nil {
		return
	}
	if err := api.predCache.Set(ctx.Request().Context(), kind, studentID, val); err != nil {
		ctx.Logger().Warnf("%+v", err)
	}
}
