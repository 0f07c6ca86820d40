package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, req *http.Request, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, mw(handler)(c)
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequestID_Generated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var seen string
	rec, err := runMiddleware(t, RequestID(), req, func(c echo.Context) error {
		seen, _ = c.Get("request_id").(string)
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if seen == "" {
		t.Error("no request id on context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q, context value %q", got, seen)
	}
}

func TestRequestID_PreservesInbound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied")
	rec, err := runMiddleware(t, RequestID(), req, okHandler)
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "caller-supplied" {
		t.Errorf("response header = %q, want caller-supplied", got)
	}
}

func TestLogger_EmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := httptest.NewRequest(http.MethodGet, "/reception/queue", nil)
	if _, err := runMiddleware(t, Logger(logger), req, okHandler); err != nil {
		t.Fatalf("middleware: %v", err)
	}

	line := buf.String()
	for _, want := range []string{`"method":"GET"`, `"path":"/reception/queue"`, `"status":200`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestLogger_ErrorLevelOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	_, err := runMiddleware(t, Logger(logger), req, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad input")
	})
	if err == nil {
		t.Fatal("expected the handler error to propagate")
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("expected error-level log line: %s", buf.String())
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	_, err := runMiddleware(t, Recovery(logger), req, func(c echo.Context) error {
		panic("boom")
	})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("got %v, want 500", err)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, err := runMiddleware(t, SecurityHeaders(), req, okHandler)
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'self'; frame-ancestors 'none'",
		"Referrer-Policy":         "no-referrer",
		"Cache-Control":           "no-store",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}
