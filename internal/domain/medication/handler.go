package medication

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
	g.GET("/prescribing-doctors", h.ListDoctors)
	g.GET("/prescribing-doctors/:id", h.GetDoctor)
	g.POST("/prescribing-doctors", h.CreateDoctor)
	g.PUT("/prescribing-doctors/:id", h.UpdateDoctor)
	g.DELETE("/prescribing-doctors/:id", h.DeleteDoctor)

	g.GET("/medications", h.List)
	g.GET("/medications/:id", h.Get)
	g.POST("/medications", h.Create)
	g.PUT("/medications/:id", h.Update)
	g.DELETE("/medications/:id", h.Delete)
	g.GET("/medications/:id/changes", h.Changes)
	g.GET("/users/:id/medications", h.ListForUser)
}

// -- Prescribing doctors --

func (h *Handler) CreateDoctor(c echo.Context) error {
	var in DoctorInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.CreateDoctor(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	var in DoctorInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.UpdateDoctor(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Medications --

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	var f ListFilter
	var err error
	if f.UserID, err = queryparam.Int64(c, "user_id"); err != nil {
		return err
	}
	if f.IsCurrent, err = queryparam.Bool(c, "is_current"); err != nil {
		return err
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListForUser(c echo.Context) error {
	userID, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	var f ListFilter
	if f.IsCurrent, err = queryparam.Bool(c, "is_current"); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForUser(c.Request().Context(), userID, f, pg.Limit, pg.Offset)
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
	item, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
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

func (h *Handler) Changes(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.Changes(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Change{}
	}
	return c.JSON(http.StatusOK, items)
}
