package http

import (
	"net/http"

	"financas/internal/core"
	"financas/internal/log"
)

type categoryAmountResponse struct {
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

type summaryResponse struct {
	Window            string                   `json:"window"`
	TotalCreditsCents int64                    `json:"total_credits_cents"`
	TotalCredits      string                   `json:"total_credits"`
	TotalExpenseCents int64                    `json:"total_expenses_cents"`
	TotalExpenses     string                   `json:"total_expenses"`
	BalanceCents      int64                    `json:"balance_cents"`
	Balance           string                   `json:"balance"`
	Distribution      []categoryAmountResponse `json:"distribution"`
}

type listOverviewResponse struct {
	listResponse
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
}

func toSummaryResponse(w core.MonthWindow, sum core.Summary) summaryResponse {
	resp := summaryResponse{
		Window:            w.String(),
		TotalCreditsCents: sum.TotalCredits.Cents,
		TotalCredits:      sum.TotalCredits.BRL(),
		TotalExpenseCents: sum.TotalExpenses.Cents,
		TotalExpenses:     sum.TotalExpenses.BRL(),
		BalanceCents:      sum.Balance.Cents,
		Balance:           sum.Balance.BRL(),
		Distribution:      make([]categoryAmountResponse, 0, len(sum.Distribution)),
	}
	for _, ca := range sum.Distribution {
		resp.Distribution = append(resp.Distribution, categoryAmountResponse{
			Category:    string(ca.Category),
			AmountCents: ca.Amount.Cents,
			Amount:      ca.Amount.BRL(),
		})
	}
	return resp
}

// handleSummary serves the monthly summary, cached per owner+window.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	window, err := windowParam(r, s.loc, s.now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := s.summaryCacheKey(owner, window)
	if cached, ok := s.summaryCache.Get(key); ok {
		s.logger.DebugContext(r.Context(), "summary cache hit",
			log.FieldOwnerID, owner, log.FieldWindow, window.String())
		respondJSON(w, http.StatusOK, cached)
		return
	}

	sum, err := s.summary.MonthSummary(r.Context(), owner, window)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "month summary failed",
			log.FieldOwnerID, owner, log.FieldWindow, window.String(), log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not compute summary")
		return
	}

	resp := toSummaryResponse(window, sum)
	s.summaryCache.Set(key, resp)
	respondJSON(w, http.StatusOK, resp)
}

// handleMonthLists serves the window's lists with per-list totals.
func (s *Server) handleMonthLists(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	window, err := windowParam(r, s.loc, s.now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	overviews, err := s.summary.MonthLists(r.Context(), owner, window)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "month lists failed",
			log.FieldOwnerID, owner, log.FieldWindow, window.String(), log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "could not load lists")
		return
	}

	resp := make([]listOverviewResponse, 0, len(overviews))
	for _, ov := range overviews {
		resp = append(resp, listOverviewResponse{
			listResponse: toListResponse(ov.List),
			TotalCents:   ov.Total.Cents,
			Total:        ov.Total.BRL(),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}
