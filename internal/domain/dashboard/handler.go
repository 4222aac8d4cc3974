package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/pkg/queryparam"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/dashboard", auth.RequireRole(auth.RoleStaff))
	g.GET("/stats", h.Stats)
	g.GET("/alerts", h.Alerts)
}

func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Alerts(c echo.Context) error {
	days := DefaultAlertDays
	n, err := queryparam.Int(c, "days")
	if err != nil {
		return err
	}
	if n != nil {
		days = *n
	}
	a, err := h.svc.Alerts(c.Request().Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
