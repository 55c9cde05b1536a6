package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/student"
)

type studentApi struct {
	deps ServerDeps
	svc  student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{deps: deps, svc: deps.StudentSvc}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, staffMiddleware())
	sg.DELETE("", api.destroyMultiple, adminMiddleware())
	sg.GET("/export", api.exportRoster, staffMiddleware())
	sg.POST("/import", api.importRoster, staffMiddleware())

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.PUT("/team", api.assignTeam, staffMiddleware())
	dg.DELETE("/team", api.clearTeam, staffMiddleware())
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	filter.TeamNumber = bindNullInt(ctx, "team")
	filter.Unassigned = bindNullBool(ctx, "unassigned")

	students, err := api.svc.Query(*filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) assignTeam(ctx echo.Context) error {
	var data AssignTeamRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignTeamRequest")
	}

	std, err := api.svc.AssignTeam(ctx.Param("id"), data.TeamNumber)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning team")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) clearTeam(ctx echo.Context) error {
	std, err := api.svc.ClearTeam(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "clearing team")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) exportRoster(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err == nil {
		filter.Clean()
		filter.TeamNumber = bindNullInt(ctx, "team")
		filter.Unassigned = bindNullBool(ctx, "unassigned")
	}

	table, err := api.svc.ExportRoster(*filter)
	if err != nil {
		return errors.Wrap(err, "exporting roster")
	}
	data, err := table.Bytes()
	if err != nil {
		return errors.Wrap(err, "serializing roster")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="roster.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (api *studentApi) importRoster(ctx echo.Context) error {
	file, err := ctx.FormFile("roster")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a 'roster' CSV file is required")
	}
	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded roster")
	}
	defer src.Close()

	rows, err := student.ParseRoster(src)
	if err != nil {
		return err
	}
	students, err := api.svc.ImportRoster(rows)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, students)
}

type AssignTeamRequest struct {
	TeamNumber int `json:"team_number"`
}
