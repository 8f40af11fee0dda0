// Package handler provides the HTTP handlers for the dashboard service.
package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"paydash/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. A missing or
// empty parameter yields nil; a present but malformed one is an error.
func parseDateParam(query url.Values, name string) (*time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(domain.DayFormat, raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
