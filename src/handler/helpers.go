package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"submarine/src/engine"
)

// PriceSource exposes the latest price seen by the feed, used as fallback
// when a command does not carry its own current price.
type PriceSource interface {
	LastPrice() decimal.Decimal
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidOrder):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, engine.ErrInsufficientBalance):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, engine.ErrPositionNotFound),
		errors.Is(err, engine.ErrOrderNotFound),
		errors.Is(err, engine.ErrTPSLNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrPositionsOpen):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// parseDecimal converts an optional string field; empty means zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// resolvePrice prefers the price the caller observed, falling back to the
// feed's latest.
func resolvePrice(requested string, prices PriceSource) (decimal.Decimal, error) {
	price, err := parseDecimal(requested)
	if err != nil {
		return decimal.Zero, err
	}
	if price.Sign() > 0 {
		return price, nil
	}
	if prices != nil {
		return prices.LastPrice(), nil
	}
	return decimal.Zero, nil
}
