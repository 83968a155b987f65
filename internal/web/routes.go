package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	attendanceHandler := handlers.NewAttendanceHandler(s.workbook)
	configHandler := handlers.NewConfigHandler(s.config)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)

		r.Get("/attendance", attendanceHandler.Dates)
		r.Get("/attendance/{date}", attendanceHandler.Day)
	})
}
