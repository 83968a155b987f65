package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/attendance/internal/attendance"
	"github.com/kozaktomas/attendance/internal/config"
)

func newTestServer(t *testing.T) (*Server, *attendance.Workbook) {
	t.Helper()
	cfg := &config.Config{
		Workbook: config.WorkbookConfig{
			Path:  filepath.Join(t.TempDir(), "attendance.xlsx"),
			Sheet: "Attendance",
		},
		Web: config.WebConfig{Host: "127.0.0.1", Port: 0},
	}
	wb := attendance.NewWorkbook(cfg.Workbook.Path, cfg.Workbook.Sheet)
	return NewServer(cfg, wb), wb
}

func TestRoutes(t *testing.T) {
	srv, wb := newTestServer(t)
	day := time.Date(2024, 9, 2, 8, 0, 0, 0, time.Local)
	if _, err := wb.Prepare([]string{"alice"}, day, true); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", method: "GET", path: "/api/v1/health", wantStatus: http.StatusOK},
		{name: "config", method: "GET", path: "/api/v1/config", wantStatus: http.StatusOK},
		{name: "dates", method: "GET", path: "/api/v1/attendance", wantStatus: http.StatusOK},
		{name: "day", method: "GET", path: "/api/v1/attendance/2024-09-02", wantStatus: http.StatusOK},
		{name: "bad date", method: "GET", path: "/api/v1/attendance/yesterday", wantStatus: http.StatusBadRequest},
		{name: "unknown route", method: "GET", path: "/api/v1/photos", wantStatus: http.StatusNotFound},
		{name: "read only", method: "POST", path: "/api/v1/attendance", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			recorder := httptest.NewRecorder()

			srv.Router().ServeHTTP(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.wantStatus, recorder.Code)
			}
		})
	}
}

func TestRoutes_DatesBody(t *testing.T) {
	srv, wb := newTestServer(t)
	if _, err := wb.Prepare([]string{"alice"}, time.Date(2024, 9, 2, 8, 0, 0, 0, time.Local), true); err != nil {
		t.Fatal(err)
	}

	recorder := httptest.NewRecorder()
	srv.Router().ServeHTTP(recorder, httptest.NewRequest("GET", "/api/v1/attendance", nil))

	var resp struct {
		Dates []string `json:"dates"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Dates) != 1 || resp.Dates[0] != "2024-09-02" {
		t.Errorf("expected [2024-09-02], got %v", resp.Dates)
	}
}

func TestRoutes_MissingWorkbook(t *testing.T) {
	srv, _ := newTestServer(t)

	recorder := httptest.NewRecorder()
	srv.Router().ServeHTTP(recorder, httptest.NewRequest("GET", "/api/v1/attendance", nil))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
}
