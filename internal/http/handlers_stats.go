// Package httpx provides HTTP handlers and utilities for the hirestats query API.
package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/hiremetrics/hirestats/internal/domain/model"
	apperrors "github.com/hiremetrics/hirestats/internal/errors"
	"github.com/hiremetrics/hirestats/internal/service"
)

// StatsHandlers provides HTTP handlers for days-to-hire statistics lookups.
type StatsHandlers struct {
	Svc *service.StatsService
}

// StatsResponse is the wire form of one statistics record. The country scope
// travels as its storage code, so global records carry the sentinel value.
type StatsResponse struct {
	ID                string    `json:"id"`
	StandardJobID     string    `json:"standard_job_id"`
	CountryCode       string    `json:"country_code"`
	MinDays           float64   `json:"min_days"`
	AvgDays           float64   `json:"avg_days"`
	MaxDays           float64   `json:"max_days"`
	JobPostingsNumber int       `json:"job_postings_number"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// GetDaysToHire handles lookups of one aggregated statistics record.
// standard_job_id is required. country_code is optional and defaults to the
// global aggregate; a country with no dedicated record reports not_found even
// when a global record exists for that job.
func (h *StatsHandlers) GetDaysToHire(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobID := q.Get("standard_job_id")
	scope := model.ParseCountryScope(q.Get("country_code"))

	rec, err := h.Svc.Lookup(r.Context(), jobID, scope)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, newStatsResponse(rec))
}

// writeLookupError maps service errors onto the JSON error envelope. Internal
// failures are reported without the underlying error text.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_query", Err: err})
	case apperrors.IsNotFound(err):
		WriteError(
			w,
			ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("statistics record not found")},
		)
	default:
		WriteError(
			w,
			ErrorParams{Code: http.StatusInternalServerError, ErrCode: "lookup_failed", Err: errors.New("failed to look up statistics")},
		)
	}
}

func newStatsResponse(rec *model.DaysToHireStats) StatsResponse {
	return StatsResponse{
		ID:                rec.ID,
		StandardJobID:     rec.StandardJobID,
		CountryCode:       rec.Scope.StorageCode(),
		MinDays:           rec.MinDays,
		AvgDays:           rec.AvgDays,
		MaxDays:           rec.MaxDays,
		JobPostingsNumber: rec.JobPostingsNumber,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}
