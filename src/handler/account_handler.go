package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"submarine/src/model"
)

type accountReader interface {
	Account() (decimal.Decimal, model.AccountConfig)
	Symbol() string
}

type accountWriter interface {
	SetPositionMode(mode model.PositionMode) error
	SetDefaultMarginMode(mode model.MarginMode) error
	SetDefaultLeverage(leverage decimal.Decimal) error
	SetConfirmationsEnabled(enabled bool)
}

type accountResponse struct {
	Symbol               string          `json:"symbol"`
	Balance              decimal.Decimal `json:"balance"`
	PositionMode         string          `json:"position_mode"`
	DefaultMarginMode    string          `json:"default_margin_mode"`
	DefaultLeverage      decimal.Decimal `json:"default_leverage"`
	ConfirmationsEnabled bool            `json:"confirmations_enabled"`
}

// settingsRequest uses pointers so absent fields are left untouched.
type settingsRequest struct {
	PositionMode         *string `json:"position_mode"`
	DefaultMarginMode    *string `json:"default_margin_mode"`
	DefaultLeverage      *string `json:"default_leverage"`
	ConfirmationsEnabled *bool   `json:"confirmations_enabled"`
}

func GetAccountHandler(eng accountReader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		balance, cfg := eng.Account()

		writeJSON(w, http.StatusOK, accountResponse{
			Symbol:               eng.Symbol(),
			Balance:              balance,
			PositionMode:         string(cfg.PositionMode),
			DefaultMarginMode:    string(cfg.DefaultMarginMode),
			DefaultLeverage:      cfg.DefaultLeverage,
			ConfirmationsEnabled: cfg.ConfirmationsEnabled,
		})
	}
}

// UpdateSettingsHandler applies partial account settings updates. Settings
// are applied in order; the first rejection stops the request.
func UpdateSettingsHandler(eng accountWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if req.PositionMode != nil {
			if err := eng.SetPositionMode(model.PositionMode(*req.PositionMode)); err != nil {
				writeEngineError(w, err)
				return
			}
		}
		if req.DefaultMarginMode != nil {
			if err := eng.SetDefaultMarginMode(model.MarginMode(*req.DefaultMarginMode)); err != nil {
				writeEngineError(w, err)
				return
			}
		}
		if req.DefaultLeverage != nil {
			leverage, err := decimal.NewFromString(*req.DefaultLeverage)
			if err != nil {
				http.Error(w, "invalid default_leverage", http.StatusBadRequest)
				return
			}
			if err := eng.SetDefaultLeverage(leverage); err != nil {
				writeEngineError(w, err)
				return
			}
		}
		if req.ConfirmationsEnabled != nil {
			eng.SetConfirmationsEnabled(*req.ConfirmationsEnabled)
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}
