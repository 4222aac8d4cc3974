package client

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/pkg/pagination"
	"github.com/soudan/casebook/pkg/queryparam"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleStaff))
	g.GET("/users", h.List)
	g.GET("/users/:id", h.Get)
	g.POST("/users", h.Create)
	g.PUT("/users/:id", h.Update)
	g.DELETE("/users/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.svc.Get(c.Request().Context(), id, queryparam.Flag(c, "include_deleted"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ListFilter{
		Search:   c.QueryParam("search"),
		Name:     c.QueryParam("name"),
		NameKana: c.QueryParam("name_kana"),
		Gender:   c.QueryParam("gender"),
		SortBy:   c.QueryParam("sort_by"),
		Order:    c.QueryParam("order"),
	}
	var err error
	if f.StaffID, err = queryparam.Int64(c, "staff_id"); err != nil {
		return err
	}
	if f.MinAge, err = queryparam.Int(c, "min_age"); err != nil {
		return err
	}
	if f.MaxAge, err = queryparam.Int(c, "max_age"); err != nil {
		return err
	}
	if f.Level, err = queryparam.Int(c, "disability_support_level"); err != nil {
		return err
	}
	if f.HasGuardian, err = queryparam.Bool(c, "has_guardian"); err != nil {
		return err
	}
	f.IncludeDeleted = queryparam.Flag(c, "include_deleted")

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
