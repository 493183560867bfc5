package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"submarine/src/engine"
	"submarine/src/model"
)

type orderSubmitter interface {
	SubmitOrder(params engine.OrderParams, currentPrice decimal.Decimal) error
}

type orderCanceler interface {
	CancelOrder(id string) error
}

type orderLister interface {
	Orders() []model.Order
}

type submitOrderRequest struct {
	Type          string `json:"type"`
	Side          string `json:"side"`
	Size          string `json:"size"`
	Leverage      string `json:"leverage"`
	Price         string `json:"price"`
	CurrentPrice  string `json:"current_price"`
	TriggerType   string `json:"trigger_type"`
	TimeInForce   string `json:"time_in_force"`
	PostOnly      bool   `json:"post_only"`
	ReduceOnly    bool   `json:"reduce_only"`
	ClosePosition bool   `json:"close_position"`
}

// SubmitOrderHandler routes a new order into the engine.
func SubmitOrderHandler(eng orderSubmitter, prices PriceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		size, err := parseDecimal(req.Size)
		if err != nil {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		leverage, err := parseDecimal(req.Leverage)
		if err != nil {
			http.Error(w, "invalid leverage", http.StatusBadRequest)
			return
		}
		price, err := parseDecimal(req.Price)
		if err != nil {
			http.Error(w, "invalid price", http.StatusBadRequest)
			return
		}
		currentPrice, err := resolvePrice(req.CurrentPrice, prices)
		if err != nil {
			http.Error(w, "invalid current_price", http.StatusBadRequest)
			return
		}

		params := engine.OrderParams{
			Type:          model.OrderType(req.Type),
			Side:          model.Side(req.Side),
			Size:          size,
			Leverage:      leverage,
			Price:         price,
			TriggerType:   model.TriggerType(req.TriggerType),
			TimeInForce:   model.TimeInForce(req.TimeInForce),
			PostOnly:      req.PostOnly,
			ReduceOnly:    req.ReduceOnly,
			ClosePosition: req.ClosePosition,
		}

		if err := eng.SubmitOrder(params, currentPrice); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"status": "accepted"})
	}
}

// CancelOrderHandler prunes a pending order.
func CancelOrderHandler(eng orderCanceler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "missing order id", http.StatusBadRequest)
			return
		}

		if err := eng.CancelOrder(id); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
	}
}

// ListOrdersHandler returns the pending queue.
func ListOrdersHandler(eng orderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, eng.Orders())
	}
}
