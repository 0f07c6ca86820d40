// Package web serves the server-rendered pages of the clinic app: the
// landing page, the login form, the reception queue board, the admin
// dashboard and the printable prescription. The route guard decides who
// may load which page before any handler here runs.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carepulse/carepulse/internal/domain/visit"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	visits     *visit.Service
	clinicName string
	tmpl       *template.Template
}

func NewHandler(visits *visit.Service, clinicName string) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{visits: visits, clinicName: clinicName, tmpl: tmpl}, nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/login", h.Login)
	e.GET("/admin", h.Admin)
	e.GET("/reception/queue", h.Queue)
	e.GET("/patients/:id/prescription", h.Prescription)
}

func (h *Handler) render(c echo.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func (h *Handler) Home(c echo.Context) error {
	return h.render(c, http.StatusOK, "home.html", map[string]any{
		"ClinicName": h.clinicName,
	})
}

func (h *Handler) Login(c echo.Context) error {
	return h.render(c, http.StatusOK, "login.html", map[string]any{
		"ClinicName": h.clinicName,
		"Redirect":   c.QueryParam("redirect"),
	})
}

func (h *Handler) Queue(c echo.Context) error {
	board := h.visits.QueueBoard()
	columns := make([]map[string]any, 0, len(visit.ActiveStages))
	for _, stage := range visit.ActiveStages {
		columns = append(columns, map[string]any{
			"Stage":  stage,
			"Visits": board[stage],
		})
	}
	return h.render(c, http.StatusOK, "queue.html", map[string]any{
		"ClinicName": h.clinicName,
		"Columns":    columns,
	})
}

func (h *Handler) Admin(c echo.Context) error {
	all := h.visits.ListAll()
	pending := 0
	discharged := 0
	for _, v := range all {
		if v.Stage == visit.StageDischarged {
			discharged++
		} else {
			pending++
		}
	}
	return h.render(c, http.StatusOK, "admin.html", map[string]any{
		"ClinicName": h.clinicName,
		"Visits":     all,
		"Total":      len(all),
		"Pending":    pending,
		"Discharged": discharged,
	})
}

func (h *Handler) Prescription(c echo.Context) error {
	doc, err := h.visits.Prescription(c.Param("id"), h.clinicName)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	}
	return h.render(c, http.StatusOK, "prescription.html", doc)
}
