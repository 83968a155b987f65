package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/attendance/internal/config"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Workbook: config.WorkbookConfig{
			Path:  "attendance.xlsx",
			Sheet: "Attendance",
		},
		Recognition: config.RecognitionConfig{Tolerance: 0.6},
		Camera:      config.CameraConfig{Device: 0, Scale: 0.25},
	}
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
