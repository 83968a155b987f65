package handlers

import (
	"net/http"

	"github.com/kozaktomas/attendance/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Workbook  string  `json:"workbook"`
	Sheet     string  `json:"sheet"`
	Tolerance float64 `json:"tolerance"`
	Camera    int     `json:"camera"`
	Scale     float64 `json:"scale"`
}

// Get returns the non-sensitive part of the configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		Workbook:  h.config.Workbook.Path,
		Sheet:     h.config.Workbook.Sheet,
		Tolerance: h.config.Recognition.Tolerance,
		Camera:    h.config.Camera.Device,
		Scale:     h.config.Camera.Scale,
	})
}
