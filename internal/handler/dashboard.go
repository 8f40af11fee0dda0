package handler

import (
	"context"
	"net/http"
	"time"

	"paydash/internal/domain"
	"paydash/pkg/logger"
)

// DashboardService is the read API the dashboard handlers expose.
type DashboardService interface {
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
	FilteredSummary(ctx context.Context, start, end *time.Time) (*domain.DashboardSummary, error)
	DailySeries(ctx context.Context, start, end *time.Time) ([]domain.DailyBucket, error)
	HourlySeries(ctx context.Context, start, end *time.Time) ([]domain.HourlyBucket, error)
	PaymentMethods(ctx context.Context, start, end *time.Time) ([]domain.PaymentMethodStat, error)
}

type DashboardHandler struct {
	service DashboardService
	logger  logger.Logger
}

func NewDashboardHandler(service DashboardService, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  log,
	}
}

// GetStats serves GET /api/dashboard/stats.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard summary", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to load dashboard statistics")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetFilteredStats serves GET /api/dashboard/stats/filtered?startDate=&endDate=.
func (h *DashboardHandler) GetFilteredStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	summary, err := h.service.FilteredSummary(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to build filtered summary", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to load dashboard statistics")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetDailyAnalytics serves GET /api/dashboard/analytics/daily?startDate=&endDate=.
func (h *DashboardHandler) GetDailyAnalytics(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	series, err := h.service.DailySeries(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to build daily series", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to load daily analytics")
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// GetHourlyTraffic serves GET /api/dashboard/analytics/hourly-traffic?startDate=&endDate=.
func (h *DashboardHandler) GetHourlyTraffic(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	series, err := h.service.HourlySeries(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to build hourly traffic", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to load hourly traffic")
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// GetPaymentMethods serves GET /api/dashboard/analytics/payment-methods?startDate=&endDate=.
func (h *DashboardHandler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	stats, err := h.service.PaymentMethods(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to build payment method stats", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to load payment method statistics")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) parseRange(w http.ResponseWriter, r *http.Request) (start, end *time.Time, ok bool) {
	query := r.URL.Query()

	start, err := parseDateParam(query, "startDate")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid startDate; expected YYYY-MM-DD")
		return nil, nil, false
	}

	end, err = parseDateParam(query, "endDate")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid endDate; expected YYYY-MM-DD")
		return nil, nil, false
	}

	return start, end, true
}
