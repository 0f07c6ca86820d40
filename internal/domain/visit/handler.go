package visit

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carepulse/carepulse/internal/platform/auth"
)

// Handler exposes the visit queue over the staff JSON API.
type Handler struct {
	svc        *Service
	clinicName string
}

func NewHandler(svc *Service, clinicName string) *Handler {
	return &Handler{svc: svc, clinicName: clinicName}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole("receptionist", "doctor", "laboratorian"))
	staff.POST("/visits", h.Admit)
	staff.GET("/visits", h.ListVisits)
	staff.GET("/visits/:id", h.GetVisit)
	staff.POST("/visits/:id/transition", h.Transition)
	staff.POST("/visits/:id/readmit", h.Readmit)
	staff.GET("/visits/:id/prescription", h.Prescription)
	staff.GET("/queue", h.QueueBoard)
	staff.GET("/lab-tests", h.LabTests)
}

func (h *Handler) Admit(c echo.Context) error {
	var intake Intake
	if err := c.Bind(&intake); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Admit(intake)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) ListVisits(c echo.Context) error {
	if c.QueryParam("active") == "true" {
		return c.JSON(http.StatusOK, h.svc.ListActive())
	}
	return c.JSON(http.StatusOK, h.svc.ListAll())
}

func (h *Handler) GetVisit(c echo.Context) error {
	v, ok := h.svc.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "visit not found")
	}
	return c.JSON(http.StatusOK, v)
}

type transitionRequest struct {
	Stage             Stage    `json:"stage"`
	RequestedLabTests []string `json:"requested_lab_tests,omitempty"`
	LabResults        *string  `json:"lab_results,omitempty"`
	Diagnosis         *string  `json:"diagnosis,omitempty"`
	Prescription      *string  `json:"prescription,omitempty"`
}

func (h *Handler) Transition(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id := c.Param("id")
	update := &ClinicalUpdate{
		RequestedLabTests: req.RequestedLabTests,
		LabResults:        req.LabResults,
		Diagnosis:         req.Diagnosis,
		Prescription:      req.Prescription,
	}

	// The workflow UI disables the discharge action until both fields are
	// filled in; the same gate applies here. The store itself stays
	// permissive.
	if req.Stage == StageDischarged {
		v, ok := h.svc.Get(id)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "visit not found")
		}
		if strings.TrimSpace(merged(req.Diagnosis, v.Diagnosis)) == "" ||
			strings.TrimSpace(merged(req.Prescription, v.Prescription)) == "" {
			return echo.NewHTTPError(http.StatusBadRequest,
				"diagnosis and prescription are required to discharge")
		}
	}

	if err := h.svc.Transition(id, req.Stage, update); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "visit not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, _ := h.svc.Get(id)
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Readmit(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.Readmit(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "discharged visit not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, _ := h.svc.Get(id)
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Prescription(c echo.Context) error {
	doc, err := h.svc.Prescription(c.Param("id"), h.clinicName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "visit not found")
		}
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *Handler) QueueBoard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.QueueBoard())
}

func (h *Handler) LabTests(c echo.Context) error {
	return c.JSON(http.StatusOK, AvailableLabTests)
}

func merged(update *string, current string) string {
	if update != nil {
		return *update
	}
	return current
}
