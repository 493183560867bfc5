package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"submarine/src/model"
)

var oneHundred = decimal.NewFromInt(100)

// Summary aggregates an account's close ledger for profile/ranking views.
// Only realized pnl, roe and close times are consumed.
type Summary struct {
	Trades       int             `json:"trades"`
	Wins         int             `json:"wins"`
	Losses       int             `json:"losses"`
	TotalPnl     decimal.Decimal `json:"total_pnl"`
	WinRate      decimal.Decimal `json:"win_rate"`
	ProfitFactor decimal.Decimal `json:"profit_factor"`
	BestTrade    decimal.Decimal `json:"best_trade"`
	WorstTrade   decimal.Decimal `json:"worst_trade"`
	AverageROE   decimal.Decimal `json:"average_roe"`
	LastClosedAt time.Time       `json:"last_closed_at"`
}

// Summarize folds the ledger into a Summary. A breakeven close counts as
// neither win nor loss. ProfitFactor is zero while there are no losing
// trades; a ratio against zero gross loss carries no information.
func Summarize(trades []model.Trade) Summary {
	s := Summary{
		TotalPnl:     decimal.Zero,
		WinRate:      decimal.Zero,
		ProfitFactor: decimal.Zero,
		BestTrade:    decimal.Zero,
		WorstTrade:   decimal.Zero,
		AverageROE:   decimal.Zero,
	}
	if len(trades) == 0 {
		return s
	}

	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	roeSum := decimal.Zero

	for i := range trades {
		t := &trades[i]
		s.Trades++
		s.TotalPnl = s.TotalPnl.Add(t.RealizedPnl)
		roeSum = roeSum.Add(t.ROE)

		switch t.RealizedPnl.Sign() {
		case 1:
			s.Wins++
			grossProfit = grossProfit.Add(t.RealizedPnl)
		case -1:
			s.Losses++
			grossLoss = grossLoss.Add(t.RealizedPnl.Abs())
		}

		if i == 0 || t.RealizedPnl.GreaterThan(s.BestTrade) {
			s.BestTrade = t.RealizedPnl
		}
		if i == 0 || t.RealizedPnl.LessThan(s.WorstTrade) {
			s.WorstTrade = t.RealizedPnl
		}
		if t.ClosedAt.After(s.LastClosedAt) {
			s.LastClosedAt = t.ClosedAt
		}
	}

	s.WinRate = decimal.NewFromInt(int64(s.Wins)).Div(decimal.NewFromInt(int64(s.Trades))).Mul(oneHundred)
	if grossLoss.Sign() > 0 {
		s.ProfitFactor = grossProfit.Div(grossLoss)
	}
	s.AverageROE = roeSum.Div(decimal.NewFromInt(int64(s.Trades)))

	return s
}
