package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hiremetrics/hirestats/internal/domain/model"
	apperrors "github.com/hiremetrics/hirestats/internal/errors"
	"github.com/hiremetrics/hirestats/internal/mocks"
	"github.com/hiremetrics/hirestats/internal/service"
)

func newStatsHandlersWithMock(
	t *testing.T,
) (*StatsHandlers, *mocks.MockStatsRepository, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockStatsRepository(ctrl)
	svc := service.NewStatsService(service.StatsServiceOptions{Stats: mockRepo})
	return &StatsHandlers{Svc: svc}, mockRepo, ctrl
}

func sampleStatsRecord(jobID string, scope model.CountryScope) *model.DaysToHireStats {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.DaysToHireStats{
		ID:                "rec-1",
		StandardJobID:     jobID,
		Scope:             scope,
		MinDays:           10,
		AvgDays:           30.5,
		MaxDays:           55,
		JobPostingsNumber: 8,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestGetDaysToHire_CountryRecord(t *testing.T) {
	h, mockRepo, ctrl := newStatsHandlersWithMock(t)
	defer ctrl.Finish()

	key := model.StatsKey{StandardJobID: "J1", Scope: model.CountryScopeFor("UK")}
	mockRepo.EXPECT().GetByKey(gomock.Any(), key).Return(sampleStatsRecord("J1", key.Scope), nil)

	r := httptest.NewRequest(http.MethodGet, "/api/stats/days-to-hire?standard_job_id=J1&country_code=UK", nil)
	w := httptest.NewRecorder()

	h.GetDaysToHire(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, "J1", got.StandardJobID)
	assert.Equal(t, "UK", got.CountryCode)
	assert.InDelta(t, 30.5, got.AvgDays, 0.0001)
	assert.Equal(t, 8, got.JobPostingsNumber)
}

func TestGetDaysToHire_NoCountryReturnsGlobal(t *testing.T) {
	h, mockRepo, ctrl := newStatsHandlersWithMock(t)
	defer ctrl.Finish()

	key := model.StatsKey{StandardJobID: "J1", Scope: model.GlobalScope()}
	mockRepo.EXPECT().GetByKey(gomock.Any(), key).Return(sampleStatsRecord("J1", key.Scope), nil)

	r := httptest.NewRequest(http.MethodGet, "/api/stats/days-to-hire?standard_job_id=J1", nil)
	w := httptest.NewRecorder()

	h.GetDaysToHire(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, model.WorldCountryCode, got.CountryCode)
}

func TestGetDaysToHire_WorldSentinelSameAsOmitted(t *testing.T) {
	h, mockRepo, ctrl := newStatsHandlersWithMock(t)
	defer ctrl.Finish()

	key := model.StatsKey{StandardJobID: "J1", Scope: model.GlobalScope()}
	mockRepo.EXPECT().GetByKey(gomock.Any(), key).Return(sampleStatsRecord("J1", key.Scope), nil)

	r := httptest.NewRequest(http.MethodGet, "/api/stats/days-to-hire?standard_job_id=J1&country_code=World", nil)
	w := httptest.NewRecorder()

	h.GetDaysToHire(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetDaysToHire_MissingJobID_Returns400(t *testing.T) {
	h, _, ctrl := newStatsHandlersWithMock(t)
	defer ctrl.Finish()

	r := httptest.NewRequest(http.MethodGet, "/api/stats/days-to-hire?country_code=UK", nil)
	w := httptest.NewRecorder()

	h.GetDaysToHire(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "invalid_query", envelope["error"])
	assert.Equal(t, "standard_job_id is required", envelope["message"])
}

func TestGetDaysToHire_NotFound_Returns404(t *testing.T) {
	h, mockRepo, ctrl := newStatsHandlersWithMock(t)
	defer ctrl.Finish()

	key := model.StatsKey{StandardJobID: "J1", Scope: model.CountryScopeFor("DE")}
	mockRepo.EXPECT().
		GetByKey(gomock.Any(), key).
		Return(nil, apperrors.NotFound("Statistics record not found"))

	r := httptest.NewRequest(http.MethodGet, "/api/stats/days-to-hire?standard_job_id=J1&country_code=DE", nil)
	w := httptest.NewRecorder()

	h.GetDaysToHire(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var envelope map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "not_found", envelope["error"])
	assert.Equal(t, "statistics record not found", envelope["message"])
}

func TestGetDaysToHire_StoreError_Returns500WithoutDetails(t *testing.T) {
	h, mockRepo, ctrl := newStatsHandlersWithMock(t)
	defer ctrl.Finish()

	mockRepo.EXPECT().
		GetByKey(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Internal("connection refused"))

	r := httptest.NewRequest(http.MethodGet, "/api/stats/days-to-hire?standard_job_id=J1", nil)
	w := httptest.NewRecorder()

	h.GetDaysToHire(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var envelope map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "lookup_failed", envelope["error"])
	assert.NotContains(t, envelope["message"], "connection refused")
}
