package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const TradeActionClose = "CLOSE"

// Trade is an immutable history record of a full position close. It doubles
// as the persisted row read by the statistics service, which only consumes
// realized PnL, ROE and close time.
type Trade struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	TradeID          string          `gorm:"size:64;uniqueIndex" json:"trade_id"`
	AccountID        string          `gorm:"size:64;index" json:"account_id"`
	OrderID          string          `gorm:"size:64" json:"order_id"`
	Symbol           string          `gorm:"size:32" json:"symbol"`
	Side             Side            `gorm:"size:8" json:"side"`
	Action           string          `gorm:"size:16" json:"action"`
	EntryPrice       decimal.Decimal `gorm:"type:numeric" json:"entry_price"`
	ExitPrice        decimal.Decimal `gorm:"type:numeric" json:"exit_price"`
	Size             decimal.Decimal `gorm:"type:numeric" json:"size"`
	Leverage         decimal.Decimal `gorm:"type:numeric" json:"leverage"`
	RealizedPnl      decimal.Decimal `gorm:"type:numeric" json:"realized_pnl"`
	ROE              decimal.Decimal `gorm:"type:numeric" json:"roe"`
	MarginMode       MarginMode      `gorm:"size:16" json:"margin_mode"`
	ClosedPercentage decimal.Decimal `gorm:"type:numeric" json:"closed_percentage"`
	OpenedAt         time.Time       `json:"opened_at"`
	ClosedAt         time.Time       `gorm:"index" json:"closed_at"`
}

func (Trade) TableName() string {
	return "trades"
}
