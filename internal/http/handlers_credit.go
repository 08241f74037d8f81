package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

type createCreditRequest struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Value   string `json:"value"` // decimal, dot or comma separator
	Date    string `json:"date"`  // YYYY-MM-DD
}

type creditResponse struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Name       string `json:"name"`
	ValueCents int64  `json:"value_cents"`
	Value      string `json:"value"`
	Date       string `json:"date"`
	CreatedAt  string `json:"created_at"`
}

func toCreditResponse(c core.Credit) creditResponse {
	return creditResponse{
		ID:         c.ID,
		OwnerID:    c.OwnerID,
		Name:       c.Name,
		ValueCents: c.Value.Cents,
		Value:      c.Value.BRL(),
		Date:       c.Date.Format("2006-01-02"),
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleCreateCredit(w http.ResponseWriter, r *http.Request) {
	var req createCreditRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := core.ParseCalendarDay(sanitizeInput(req.Date), s.loc)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}
	cents, err := core.ParseDecimalToCents(sanitizeInput(req.Value))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid value")
		return
	}

	c := core.Credit{
		OwnerID: sanitizeInput(req.OwnerID),
		Name:    sanitizeInput(req.Name),
		Value:   core.Money{Cents: cents},
		Date:    date,
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.writer.CreateCredit(r.Context(), c)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "create credit failed",
			log.FieldOwnerID, c.OwnerID, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not create credit")
		return
	}

	s.invalidateSummary(c.OwnerID, core.CurrentMonth(c.Date.Time, s.loc))
	respondJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleListCredits(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var credits []core.Credit
	query := r.URL.Query()
	if strings.TrimSpace(query.Get("year")) == "" && strings.TrimSpace(query.Get("month")) == "" {
		credits, err = s.reader.CreditsByOwner(r.Context(), owner)
	} else {
		var window core.MonthWindow
		window, err = windowParam(r, s.loc, s.now())
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		start, end := window.Bounds(s.loc)
		credits, err = s.reader.CreditsByOwnerBetween(r.Context(), owner, start, end)
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "load credits failed",
			log.FieldOwnerID, owner, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not load credits")
		return
	}

	resp := make([]creditResponse, 0, len(credits))
	for _, c := range credits {
		resp = append(resp, toCreditResponse(c))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteCredit(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	creditID := r.PathValue("creditID")

	if err := s.writer.DeleteCredit(r.Context(), owner, creditID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "credit not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "delete credit failed",
			log.FieldCreditID, creditID, log.FieldOwnerID, owner, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not delete credit")
		return
	}

	s.invalidateSummary(owner)
	respondJSON(w, http.StatusNoContent, nil)
}
