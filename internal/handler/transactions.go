package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"paydash/internal/domain"
	"paydash/pkg/errors"
	"paydash/pkg/logger"
)

// TransactionLister is the paginated list surface of the dashboard service.
type TransactionLister interface {
	ListTransactions(ctx context.Context, criteria domain.TransactionSearchCriteria, page, size int) (*domain.TransactionPage, error)
}

type TransactionHandler struct {
	service TransactionLister
	logger  logger.Logger
}

func NewTransactionHandler(service TransactionLister, log logger.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		logger:  log,
	}
}

// List serves GET /api/transactions with optional filters and paging.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	criteria := domain.TransactionSearchCriteria{
		Status:        query.Get("status"),
		PaymentMethod: query.Get("paymentMethod"),
		UserEmail:     query.Get("userEmail"),
	}

	var err error
	if criteria.StartDate, err = parseDateParam(query, "startDate"); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid startDate; expected YYYY-MM-DD")
		return
	}
	if criteria.EndDate, err = parseDateParam(query, "endDate"); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid endDate; expected YYYY-MM-DD")
		return
	}

	if raw := query.Get("minAmount"); raw != "" {
		if criteria.MinAmount, err = decimal.NewFromString(raw); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid minAmount")
			return
		}
	}
	if raw := query.Get("maxAmount"); raw != "" {
		if criteria.MaxAmount, err = decimal.NewFromString(raw); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid maxAmount")
			return
		}
	}

	page := intParam(query.Get("page"), 1)
	size := intParam(query.Get("size"), 0)

	result, err := h.service.ListTransactions(r.Context(), criteria, page, size)
	if err != nil {
		if errors.Is(err, errors.ErrValidation) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to list transactions", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
