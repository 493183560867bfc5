package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"submarine/src/engine"
	"submarine/src/model"
)

type positionLister interface {
	Positions() []model.Position
}

type positionCloser interface {
	ClosePosition(id string, currentPrice decimal.Decimal) error
	PartialClosePosition(id string, amount, currentPrice decimal.Decimal) error
	ReversePosition(id string, currentPrice decimal.Decimal) error
	CloseAllPositions(currentPrice decimal.Decimal) error
}

type tpslManager interface {
	AddTakeProfitOrder(positionID string, params engine.TPSLParams) (string, error)
	AddStopLossOrder(positionID string, params engine.TPSLParams) (string, error)
	CancelTPSL(positionID, tpslID string) error
}

type closeRequest struct {
	CurrentPrice string `json:"current_price"`
}

type partialCloseRequest struct {
	Amount       string `json:"amount"`
	CurrentPrice string `json:"current_price"`
}

type tpslRequest struct {
	Type         string `json:"type"`
	OrderType    string `json:"order_type"`
	TriggerPrice string `json:"trigger_price"`
	LimitPrice   string `json:"limit_price"`
	Size         string `json:"size"`
	Percentage   string `json:"percentage"`
	TriggerType  string `json:"trigger_type"`
}

// decodeCloseRequest tolerates an absent body; close commands carry only an
// optional current_price.
func decodeCloseRequest(r *http.Request) (closeRequest, error) {
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

// ListPositionsHandler returns every open position with its latest
// mark-to-market figures.
func ListPositionsHandler(eng positionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, eng.Positions())
	}
}

func ClosePositionHandler(eng positionCloser, prices PriceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		req, err := decodeCloseRequest(r)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		price, err := resolvePrice(req.CurrentPrice, prices)
		if err != nil {
			http.Error(w, "invalid current_price", http.StatusBadRequest)
			return
		}

		if err := eng.ClosePosition(id, price); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
	}
}

func PartialClosePositionHandler(eng positionCloser, prices PriceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req partialCloseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		amount, err := parseDecimal(req.Amount)
		if err != nil {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}
		price, err := resolvePrice(req.CurrentPrice, prices)
		if err != nil {
			http.Error(w, "invalid current_price", http.StatusBadRequest)
			return
		}

		if err := eng.PartialClosePosition(id, amount, price); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
	}
}

func ReversePositionHandler(eng positionCloser, prices PriceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		req, err := decodeCloseRequest(r)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		price, err := resolvePrice(req.CurrentPrice, prices)
		if err != nil {
			http.Error(w, "invalid current_price", http.StatusBadRequest)
			return
		}

		if err := eng.ReversePosition(id, price); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reversed"})
	}
}

func CloseAllPositionsHandler(eng positionCloser, prices PriceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeCloseRequest(r)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		price, err := resolvePrice(req.CurrentPrice, prices)
		if err != nil {
			http.Error(w, "invalid current_price", http.StatusBadRequest)
			return
		}

		if err := eng.CloseAllPositions(price); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
	}
}

// AddTPSLHandler attaches a take-profit or stop-loss order to a position.
// The type field selects which.
func AddTPSLHandler(eng tpslManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req tpslRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		triggerPrice, err := parseDecimal(req.TriggerPrice)
		if err != nil {
			http.Error(w, "invalid trigger_price", http.StatusBadRequest)
			return
		}
		limitPrice, err := parseDecimal(req.LimitPrice)
		if err != nil {
			http.Error(w, "invalid limit_price", http.StatusBadRequest)
			return
		}
		size, err := parseDecimal(req.Size)
		if err != nil {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		percentage, err := parseDecimal(req.Percentage)
		if err != nil {
			http.Error(w, "invalid percentage", http.StatusBadRequest)
			return
		}

		params := engine.TPSLParams{
			OrderType:    model.OrderType(req.OrderType),
			TriggerPrice: triggerPrice,
			LimitPrice:   limitPrice,
			Size:         size,
			Percentage:   percentage,
			TriggerType:  model.TriggerType(req.TriggerType),
		}

		var tpslID string
		switch model.TPSLType(req.Type) {
		case model.TPSLTypeTakeProfit:
			tpslID, err = eng.AddTakeProfitOrder(id, params)
		case model.TPSLTypeStopLoss:
			tpslID, err = eng.AddStopLossOrder(id, params)
		default:
			http.Error(w, "invalid type", http.StatusBadRequest)
			return
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"id": tpslID})
	}
}

func CancelTPSLHandler(eng tpslManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		tpslID := chi.URLParam(r, "tpslId")

		if err := eng.CancelTPSL(id, tpslID); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
	}
}
