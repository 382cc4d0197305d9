package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/internal/assistant"
	"github.com/sofia-praxis/dental-calendar/internal/availability"
	"github.com/sofia-praxis/dental-calendar/internal/demo"
	"github.com/sofia-praxis/dental-calendar/internal/events"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

func newTestRouter(t *testing.T, withDemo bool) http.Handler {
	t.Helper()

	logger := logging.Default()
	store, err := appointments.Open(filepath.Join(t.TempDir(), "calendar.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local) }
	hub := events.NewHub(nil, logger)
	svc := appointments.NewService(store, hub, nil, logger)
	finder := availability.NewFinder(store, nil).WithClock(clock)
	transport, err := assistant.NewTransport("webhook", nil, logger)
	if err != nil {
		t.Fatalf("build transport: %v", err)
	}

	cfg := &Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(svc, logger),
		AvailabilityHandler: availability.NewHandler(finder, 30, 7, 5, logger),
		AssistantHandler:    assistant.NewHandler(svc, finder, transport, logger).WithClock(clock),
		Hub:                 hub,
		CORSAllowedOrigins:  []string{"*"},
	}
	if withDemo {
		cfg.DemoSeeder = demo.NewSeeder(svc, logger).WithClock(clock)
	}

	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterAppointmentRoutes(t *testing.T) {
	router := newTestRouter(t, false)

	body, _ := json.Marshal(map[string]string{
		"patientName": "Anna Schmidt",
		"date":        "2025-03-11",
		"startTime":   "09:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/appointments?date=2025-03-11", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var list []appointments.Appointment
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(list))
	}
}

func TestRouterAvailabilityRoutes(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/availability/next?from=2025-03-11", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode next: %v", err)
	}
	if resp["available"] != true {
		t.Fatalf("expected an available slot, got %v", resp)
	}

	req = httptest.NewRequest(http.MethodGet, "/availability/2025-03-11", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterAssistantRoutes(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/assistant/today", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterDemoRoutesAreConfigGated(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/demo/seed", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d without demo config, got %d", http.StatusNotFound, rr.Code)
	}

	router = newTestRouter(t, true)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/demo/seed", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d with demo config, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterCORSHeaders(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://praxis.example")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://praxis.example" {
		t.Fatalf("expected echoed origin, got %q", got)
	}
}
