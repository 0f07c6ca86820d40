package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carepulse/carepulse/internal/domain/visit"
)

func newWebFixture(t *testing.T) (*Handler, *visit.Service) {
	t.Helper()
	svc := visit.NewService(visit.NewStore(), nil)
	h, err := NewHandler(svc, "Menaharia Medium Clinic")
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h, svc
}

func getPage(t *testing.T, h func(echo.Context) error, target string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	if err := h(c); err != nil {
		c.Error(err)
	}
	return rec
}

func TestHomePage(t *testing.T) {
	h, _ := newWebFixture(t)
	rec := getPage(t, h.Home, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Menaharia Medium Clinic") {
		t.Error("clinic name missing from landing page")
	}
}

func TestLoginPage_CarriesRedirect(t *testing.T) {
	h, _ := newWebFixture(t)
	rec := getPage(t, h.Login, "/login?redirect=%2Fadmin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="/admin"`) {
		t.Error("redirect target missing from login form")
	}
}

func TestQueuePage(t *testing.T) {
	h, svc := newWebFixture(t)
	if _, err := svc.Admit(visit.Intake{Name: "Abebe Bikila"}); err != nil {
		t.Fatalf("Admit: %v", err)
	}

	rec := getPage(t, h.Queue, "/reception/queue")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Abebe Bikila") {
		t.Error("admitted patient missing from queue board")
	}
	for _, stage := range visit.ActiveStages {
		if !strings.Contains(body, string(stage)) {
			t.Errorf("column %q missing from queue board", stage)
		}
	}
}

func TestAdminPage_Counts(t *testing.T) {
	h, svc := newWebFixture(t)
	if _, err := svc.Admit(visit.Intake{Name: "Active Patient"}); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	d, _ := svc.Admit(visit.Intake{Name: "Done Patient"})
	diagnosis, rx := "Flu", "Paracetamol, 500mg"
	if err := svc.Transition(d.ID, visit.StageDischarged, &visit.ClinicalUpdate{Diagnosis: &diagnosis, Prescription: &rx}); err != nil {
		t.Fatalf("discharge: %v", err)
	}

	rec := getPage(t, h.Admin, "/admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Total patients: 2", "Pending patients: 1", "Discharged patients: 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestPrescriptionPage(t *testing.T) {
	h, svc := newWebFixture(t)
	v, _ := svc.Admit(visit.Intake{Name: "Hana Girma"})
	diagnosis, rx := "Tonsillitis", "Amoxicillin, 500mg, 3x daily, 7 days"
	if err := svc.Transition(v.ID, visit.StageDischarged, &visit.ClinicalUpdate{Diagnosis: &diagnosis, Prescription: &rx}); err != nil {
		t.Fatalf("discharge: %v", err)
	}

	rec := getPage(t, h.Prescription, "/patients/"+v.ID+"/prescription", "id", v.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Hana Girma", v.ID, "Amoxicillin", "Tonsillitis"} {
		if !strings.Contains(body, want) {
			t.Errorf("prescription page missing %q", want)
		}
	}
}

func TestPrescriptionPage_NotFound(t *testing.T) {
	h, _ := newWebFixture(t)
	rec := getPage(t, h.Prescription, "/patients/P-404/prescription", "id", "P-404")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
