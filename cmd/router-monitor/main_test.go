package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/weperezh01/router-telemetry/config"
	"github.com/weperezh01/router-telemetry/display"
)

func testConfig() *config.Config {
	c := config.DefaultConfig()
	c.Backend.URL = "http://127.0.0.1:1"
	return &c
}

func TestNewMonitorRequiresRouterID(t *testing.T) {
	log = zerolog.Nop()

	if _, err := newMonitor(testConfig(), ""); err == nil {
		t.Fatal("expected error without router id")
	}

	m, err := newMonitor(testConfig(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.RouterID() != "42" {
		t.Errorf("flag must override config router id, got %q", m.RouterID())
	}
}

func TestHandlersBeforeFocus(t *testing.T) {
	log = zerolog.Nop()
	m, err := newMonitor(testConfig(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	current = &screen{m: m}

	rec := httptest.NewRecorder()
	handleView(rec, httptest.NewRequest(http.MethodGet, "/view", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var view display.Screen
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("invalid view json: %v", err)
	}
	if view.Router.ID != "42" || view.Resources != nil || view.ResourcePoll.Running {
		t.Errorf("unexpected view: %+v", view)
	}

	rec = httptest.NewRecorder()
	handleRouterMetrics(rec, httptest.NewRequest(http.MethodGet, "/router/metrics", nil))
	if !strings.Contains(rec.Body.String(), `router_monitor_poll_running{loop="traffic"} 0`) {
		t.Errorf("expected poll metrics, got:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handleBlur(rec, httptest.NewRequest(http.MethodPost, "/-/blur", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("unexpected status %d", rec.Code)
	}
}
