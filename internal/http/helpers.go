package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// sanitizeInput trims whitespace and strips control characters except
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// ownerParam extracts the owner id from the query string.
func ownerParam(r *http.Request) (string, error) {
	owner := sanitizeInput(r.URL.Query().Get("owner"))
	if owner == "" {
		return "", fmt.Errorf("missing owner parameter")
	}
	return owner, nil
}

// windowParam resolves ?year=&month= into a month window, defaulting to
// the current month in loc when both are absent.
func windowParam(r *http.Request, loc *time.Location, now time.Time) (core.MonthWindow, error) {
	yearStr := strings.TrimSpace(r.URL.Query().Get("year"))
	monthStr := strings.TrimSpace(r.URL.Query().Get("month"))

	if yearStr == "" && monthStr == "" {
		return core.CurrentMonth(now, loc), nil
	}
	if yearStr == "" || monthStr == "" {
		return core.MonthWindow{}, fmt.Errorf("year and month must be provided together")
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return core.MonthWindow{}, fmt.Errorf("invalid year '%s'", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return core.MonthWindow{}, fmt.Errorf("invalid month '%s'", monthStr)
	}

	w := core.MonthWindow{Year: year, Month: month}
	if err := w.Validate(); err != nil {
		return core.MonthWindow{}, err
	}
	return w, nil
}
