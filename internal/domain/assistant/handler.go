package assistant

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soudan/casebook/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/ai", auth.RequireRole(auth.RoleStaff))
	g.POST("/plans/propose", h.Propose)
	g.GET("/models/available", h.Models)
}

func (h *Handler) Propose(c echo.Context) error {
	var req ProposeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Propose(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Models(c echo.Context) error {
	models, err := h.svc.Models(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"models": models})
}
