package druginfo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soudan/casebook/internal/platform/auth"
)

type Handler struct {
	catalogue *Catalogue
}

func NewHandler(catalogue *Catalogue) *Handler {
	return &Handler{catalogue: catalogue}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/drug-info", auth.RequireRole(auth.RoleStaff))
	g.GET("/search", h.Search)
	g.GET("/detail/:name", h.Detail)
}

func (h *Handler) Search(c echo.Context) error {
	drugs, err := h.catalogue.Search(c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, drugs)
}

func (h *Handler) Detail(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogue.Detail(c.Param("name")))
}
