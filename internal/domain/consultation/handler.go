package consultation

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
	g.GET("/consultations", h.List)
	g.GET("/consultations/:id", h.Get)
	g.POST("/consultations", h.Create)
	g.PUT("/consultations/:id", h.Update)
	g.DELETE("/consultations/:id", h.Delete)
	g.GET("/users/:id/consultations", h.ListForUser)
}

// FilterFromContext reads the list filters shared by the list and export
// endpoints.
func FilterFromContext(c echo.Context) (ListFilter, error) {
	f := ListFilter{
		ConsultationType: c.QueryParam("consultation_type"),
		Search:           c.QueryParam("search"),
	}
	var err error
	if f.UserID, err = queryparam.Int64(c, "user_id"); err != nil {
		return f, err
	}
	if f.StaffID, err = queryparam.Int64(c, "staff_id"); err != nil {
		return f, err
	}
	if f.DateFrom, err = queryparam.Date(c, "date_from"); err != nil {
		return f, err
	}
	if f.DateTo, err = queryparam.Date(c, "date_to"); err != nil {
		return f, err
	}
	return f, nil
}

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
	f, err := FilterFromContext(c)
	if err != nil {
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
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForUser(c.Request().Context(), userID, pg.Limit, pg.Offset)
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
