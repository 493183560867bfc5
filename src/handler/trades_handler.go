package handler

import (
	"context"
	"net/http"
	"strconv"

	"submarine/src/model"
	"submarine/src/stats"
)

type tradeLister interface {
	ListByAccount(ctx context.Context, accountID string, limit int) ([]model.Trade, error)
}

// ListTradesHandler returns the account's close ledger, newest first.
// An optional limit query parameter caps the result.
func ListTradesHandler(trades tradeLister, accountID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		list, err := trades.ListByAccount(r.Context(), accountID, limit)
		if err != nil {
			http.Error(w, "failed to list trades", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// StatsHandler summarizes the full close ledger.
func StatsHandler(trades tradeLister, accountID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := trades.ListByAccount(r.Context(), accountID, 0)
		if err != nil {
			http.Error(w, "failed to list trades", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats.Summarize(list))
	}
}
