package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/attendance/internal/attendance"
)

// AttendanceReader is the read side of the attendance workbook.
type AttendanceReader interface {
	Dates() ([]string, error)
	Day(date string) ([]attendance.Entry, error)
}

// AttendanceHandler serves the attendance workbook read-only.
type AttendanceHandler struct {
	workbook AttendanceReader
}

func NewAttendanceHandler(workbook AttendanceReader) *AttendanceHandler {
	return &AttendanceHandler{workbook: workbook}
}

// DatesResponse lists the days recorded in the workbook.
type DatesResponse struct {
	Dates []string `json:"dates"`
}

// DayResponse is the attendance of every person on one day.
type DayResponse struct {
	Date    string             `json:"date"`
	Present int                `json:"present"`
	Absent  int                `json:"absent"`
	Entries []attendance.Entry `json:"entries"`
}

// Dates returns the date columns present in the workbook.
func (h *AttendanceHandler) Dates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.workbook.Dates()
	if err != nil {
		h.respondWorkbookError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, DatesResponse{Dates: dates})
}

// Day returns the status of every person for the {date} URL parameter (YYYY-MM-DD).
func (h *AttendanceHandler) Day(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(attendance.DateLayout, date); err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := h.workbook.Day(date)
	if err != nil {
		h.respondWorkbookError(w, err)
		return
	}

	resp := DayResponse{Date: date, Entries: entries}
	for _, e := range entries {
		switch e.Status {
		case attendance.StatusPresent:
			resp.Present++
		case attendance.StatusAbsent:
			resp.Absent++
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *AttendanceHandler) respondWorkbookError(w http.ResponseWriter, err error) {
	if errors.Is(err, attendance.ErrWorkbookMissing) || errors.Is(err, attendance.ErrSheetMissing) {
		respondError(w, http.StatusNotFound, "attendance workbook not found")
		return
	}
	log.Errorf("failed to read attendance workbook: %s", sanitizeForLog(err.Error()))
	respondError(w, http.StatusInternalServerError, "failed to read attendance workbook")
}
