package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/consultation"
	"github.com/soudan/casebook/internal/domain/medication"
	"github.com/soudan/casebook/internal/domain/monitoring"
	"github.com/soudan/casebook/internal/domain/network"
	"github.com/soudan/casebook/internal/domain/plan"
	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/internal/platform/dates"
	"github.com/soudan/casebook/internal/platform/export"
	"github.com/soudan/casebook/internal/platform/pdf"
	"github.com/soudan/casebook/pkg/pagination"
	"github.com/soudan/casebook/pkg/queryparam"
)

type UserSource interface {
	Get(ctx context.Context, id int64, includeDeleted bool) (*client.User, error)
	List(ctx context.Context, f client.ListFilter, limit, offset int) ([]*client.User, int, error)
}

type PlanSource interface {
	Get(ctx context.Context, id int64) (*plan.Plan, error)
}

type MonitoringSource interface {
	Get(ctx context.Context, id int64) (*monitoring.Monitoring, error)
}

type ConsultationSource interface {
	Get(ctx context.Context, id int64) (*consultation.Consultation, error)
	List(ctx context.Context, f consultation.ListFilter, limit, offset int) ([]*consultation.Consultation, int, error)
}

type MedicationSource interface {
	ListForUser(ctx context.Context, userID int64, f medication.ListFilter, limit, offset int) ([]*medication.Medication, int, error)
}

type NetworkSource interface {
	Build(ctx context.Context, userID int64) (*network.Graph, error)
}

type Renderer interface {
	Render(doc pdf.Document) ([]byte, error)
}

// Sources are the services whose records can be exported.
type Sources struct {
	Users         UserSource
	Plans         PlanSource
	Monitorings   MonitoringSource
	Consultations ConsultationSource
	Medications   MedicationSource
	Network       NetworkSource
}

type Handler struct {
	src      Sources
	renderer Renderer
	clock    dates.Clock
}

func NewHandler(src Sources, renderer Renderer, clock dates.Clock) *Handler {
	return &Handler{src: src, renderer: renderer, clock: clock}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleStaff))
	g.GET("/users/:id/pdf", h.UserPDF)
	g.GET("/plans/:id/pdf", h.PlanPDF)
	g.GET("/monitorings/:id/pdf", h.MonitoringPDF)
	g.GET("/consultations/:id/pdf", h.ConsultationPDF)
	g.GET("/users/:id/medications/pdf", h.MedicationsPDF)
	g.GET("/users/:id/medications/xlsx", h.MedicationsXLSX)
	g.GET("/users/:id/network/pdf", h.NetworkPDF)
	g.POST("/users/:id/network/pdf", h.NetworkPDF)
	g.GET("/exports/users/xlsx", h.UsersXLSX)
	g.GET("/exports/consultations/xlsx", h.ConsultationsXLSX)
}

func (h *Handler) stamp() string {
	return dates.Today(h.clock).Format("20060102")
}

// attach writes b as a download. fallback is an ASCII file name for clients
// that ignore the RFC 5987 filename* parameter.
func attach(c echo.Context, contentType, name, fallback string, b []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, url.PathEscape(name)))
	return c.Blob(http.StatusOK, contentType, b)
}

func (h *Handler) sendPDF(c echo.Context, doc pdf.Document, name, fallback string) error {
	b, err := h.renderer.Render(doc)
	if err != nil {
		return err
	}
	return attach(c, pdf.ContentType, name+".pdf", fallback+".pdf", b)
}

func (h *Handler) sendXLSX(c echo.Context, s export.Sheet, name, fallback string) error {
	b, err := export.Workbook(s)
	if err != nil {
		return err
	}
	return attach(c, export.ContentTypeXLSX, name+".xlsx", fallback+".xlsx", b)
}

// collect pages through a list call until every row is read.
func collect[T any](fetch func(limit, offset int) ([]T, int, error)) ([]T, error) {
	var out []T
	for offset := 0; ; offset += pagination.MaxLimit {
		page, total, err := fetch(pagination.MaxLimit, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) == 0 || len(out) >= total {
			return out, nil
		}
	}
}

func (h *Handler) UserPDF(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.src.Users.Get(c.Request().Context(), id, false)
	if err != nil {
		return err
	}
	return h.sendPDF(c, profileDocument(u), "利用者基本情報_"+u.Name, fmt.Sprintf("user_%d", u.ID))
}

func (h *Handler) PlanPDF(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.src.Plans.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return h.sendPDF(c, planDocument(p), "サービス利用計画_"+p.UserName+"_"+p.PlanNumber, fmt.Sprintf("plan_%d", p.ID))
}

func (h *Handler) MonitoringPDF(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.src.Monitorings.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return h.sendPDF(c, monitoringDocument(m),
		"モニタリング記録_"+m.UserName+"_"+m.MonitoringDate.Format("20060102"), fmt.Sprintf("monitoring_%d", m.ID))
}

func (h *Handler) ConsultationPDF(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.src.Consultations.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return h.sendPDF(c, consultationDocument(item),
		"相談記録_"+item.UserName+"_"+item.ConsultationDate.Format("20060102"), fmt.Sprintf("consultation_%d", item.ID))
}

func (h *Handler) userMedications(c echo.Context) (*client.User, []*medication.Medication, error) {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return nil, nil, err
	}
	ctx := c.Request().Context()
	u, err := h.src.Users.Get(ctx, id, false)
	if err != nil {
		return nil, nil, err
	}
	meds, err := collect(func(limit, offset int) ([]*medication.Medication, int, error) {
		return h.src.Medications.ListForUser(ctx, id, medication.ListFilter{}, limit, offset)
	})
	if err != nil {
		return nil, nil, err
	}
	return u, meds, nil
}

func (h *Handler) MedicationsPDF(c echo.Context) error {
	u, meds, err := h.userMedications(c)
	if err != nil {
		return err
	}
	return h.sendPDF(c, medicationsDocument(u.Name, meds), "服薬情報_"+u.Name, fmt.Sprintf("medications_%d", u.ID))
}

func (h *Handler) MedicationsXLSX(c echo.Context) error {
	u, meds, err := h.userMedications(c)
	if err != nil {
		return err
	}
	return h.sendXLSX(c, medicationsSheet(meds), "服薬情報_"+u.Name, fmt.Sprintf("medications_%d", u.ID))
}

type networkImage struct {
	ImageData string `json:"image_data"`
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// decodeImage accepts raw base64 or a data: URL carrying a PNG.
func decodeImage(data string) ([]byte, error) {
	if i := strings.Index(data, ","); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+1:]
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.New("image_data is not valid base64")
	}
	if !bytes.HasPrefix(b, pngMagic) {
		return nil, errors.New("image_data must be a PNG image")
	}
	return b, nil
}

// NetworkPDF renders the relationship list. A POST may carry a PNG
// drawing of the graph, which is placed above the list.
func (h *Handler) NetworkPDF(c echo.Context) error {
	id, err := queryparam.ID(c, "id")
	if err != nil {
		return err
	}
	var image []byte
	if c.Request().Method == http.MethodPost {
		var body networkImage
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if body.ImageData != "" {
			if image, err = decodeImage(body.ImageData); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
		}
	}
	g, err := h.src.Network.Build(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return h.sendPDF(c, networkDocument(g, image), "ネットワーク図_"+g.UserName, fmt.Sprintf("network_%d", g.UserID))
}

func (h *Handler) UsersXLSX(c echo.Context) error {
	f := client.ListFilter{Search: c.QueryParam("search")}
	var err error
	if f.StaffID, err = queryparam.Int64(c, "staff_id"); err != nil {
		return err
	}
	ctx := c.Request().Context()
	users, err := collect(func(limit, offset int) ([]*client.User, int, error) {
		return h.src.Users.List(ctx, f, limit, offset)
	})
	if err != nil {
		return err
	}
	return h.sendXLSX(c, usersSheet(users), "利用者一覧_"+h.stamp(), "users_"+h.stamp())
}

func (h *Handler) ConsultationsXLSX(c echo.Context) error {
	f, err := consultation.FilterFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	items, err := collect(func(limit, offset int) ([]*consultation.Consultation, int, error) {
		return h.src.Consultations.List(ctx, f, limit, offset)
	})
	if err != nil {
		return err
	}
	return h.sendXLSX(c, consultationsSheet(items), "相談記録_"+h.stamp(), "consultations_"+h.stamp())
}
