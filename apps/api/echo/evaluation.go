package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/evaluation"
	"github.com/trezcool/shule/core/report"
	"github.com/trezcool/shule/core/student"
)

type evaluationApi struct {
	deps ServerDeps
	svc  evaluation.Service
}

func registerEvaluationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := evaluationApi{deps: deps, svc: deps.EvalSvc}

	cg := g.Group("/competencies", jwt)
	cg.GET("", api.queryCompetencies)
	cg.POST("", api.createCompetency, adminMiddleware())

	sg := g.Group("/scans", jwt)
	sg.GET("", api.queryScans)
	sg.POST("", api.createScan, staffMiddleware())

	dg := sg.Group("/:id")
	dg.GET("", api.retrieveScan)
	dg.POST("/ratings", api.rate)
	dg.GET("/heatmap", api.heatmap, staffMiddleware())
	dg.GET("/heatmap.csv", api.exportHeatmap, staffMiddleware())
	dg.GET("/teams", api.teamHeatmap, staffMiddleware())
	dg.GET("/trend", api.trend, staffMiddleware())
}

// Handlers

func (api *evaluationApi) queryCompetencies(ctx echo.Context) error {
	comps, err := api.svc.Competencies()
	if err != nil {
		return errors.Wrap(err, "querying competencies")
	}
	if comps == nil {
		comps = []evaluation.Competency{}
	}
	return ctx.JSON(http.StatusOK, comps)
}

func (api *evaluationApi) createCompetency(ctx echo.Context) error {
	var data evaluation.NewCompetency
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCompetency")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	comp, err := api.svc.AddCompetency(data)
	if err != nil {
		return errors.Wrap(err, "adding competency")
	}
	return ctx.JSON(http.StatusCreated, comp)
}

func (api *evaluationApi) queryScans(ctx echo.Context) error {
	scans, err := api.svc.ScansForClass(core.CleanClassCode(ctx.QueryParam("class")))
	if err != nil {
		return errors.Wrap(err, "querying scans")
	}
	if scans == nil {
		scans = []evaluation.Scan{}
	}
	return ctx.JSON(http.StatusOK, scans)
}

func (api *evaluationApi) createScan(ctx echo.Context) error {
	var data evaluation.NewScan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScan")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	scan, err := api.svc.CreateScan(data)
	if err != nil {
		return errors.Wrap(err, "creating scan")
	}
	return ctx.JSON(http.StatusCreated, scan)
}

func (api *evaluationApi) retrieveScan(ctx echo.Context) error {
	scan, err := api.svc.GetScan(ctx.Param("id"))
	if err != nil {
		return api.wrapError(err, "finding scan by ID")
	}
	return ctx.JSON(http.StatusOK, scan)
}

func (api *evaluationApi) rate(ctx echo.Context) error {
	var data evaluation.NewRating
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRating")
	}
	data.ScanID = ctx.Param("id")
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	rating, err := api.svc.Rate(data)
	if err != nil {
		if errors.Cause(err) == evaluation.ErrScanClosed {
			return echo.NewHTTPError(http.StatusConflict, evaluation.ErrScanClosed.Error())
		}
		return api.wrapError(err, "saving rating")
	}
	return ctx.JSON(http.StatusCreated, rating)
}

func (api *evaluationApi) heatmap(ctx echo.Context) error {
	cells, err := api.svc.Heatmap(ctx.Param("id"))
	if err != nil {
		return api.wrapError(err, "building heatmap")
	}
	return ctx.JSON(http.StatusOK, cells)
}

func (api *evaluationApi) teamHeatmap(ctx echo.Context) error {
	competencyID := ctx.QueryParam("competency")
	if competencyID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "a 'competency' query param is required")
	}

	sums, err := api.svc.TeamHeatmap(ctx.Param("id"), competencyID)
	if err != nil {
		return api.wrapError(err, "building team heatmap")
	}
	if sums == nil {
		sums = []report.Summary{}
	}
	return ctx.JSON(http.StatusOK, sums)
}

func (api *evaluationApi) trend(ctx echo.Context) error {
	previousID := ctx.QueryParam("previous")
	if previousID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "a 'previous' query param is required")
	}

	cells, err := api.svc.Trend(ctx.Param("id"), previousID)
	if err != nil {
		return api.wrapError(err, "building trend")
	}
	return ctx.JSON(http.StatusOK, cells)
}

func (api *evaluationApi) exportHeatmap(ctx echo.Context) error {
	table, err := api.svc.ExportHeatmap(ctx.Param("id"))
	if err != nil {
		return api.wrapError(err, "exporting heatmap")
	}
	data, err := table.Bytes()
	if err != nil {
		return errors.Wrap(err, "serializing heatmap")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="heatmap.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// wrapError maps known domain errors to 404s.
func (api *evaluationApi) wrapError(err error, msg string) error {
	switch errors.Cause(err) {
	case evaluation.ErrScanNotFound, evaluation.ErrCompetencyNotFound, student.ErrNotFound:
		return errHttpNotFound
	}
	return errors.Wrap(err, msg)
}
