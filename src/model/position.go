package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Opposite returns the reverse direction, used when a position is flipped.
func (s Side) Opposite() Side {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}

type MarginMode string

const (
	MarginModeIsolated MarginMode = "ISOLATED"
	MarginModeCross    MarginMode = "CROSS"
)

type PositionMode string

const (
	PositionModeOneWay PositionMode = "ONE_WAY"
	PositionModeHedge  PositionMode = "HEDGE"
)

// Position is an open leveraged exposure. Size stays strictly positive for
// the lifetime of the record; a position reduced to zero is removed from the
// book, never stored as a zero-size row. EntryPrice is the volume-weighted
// cost basis and only changes on same-direction merges.
type Position struct {
	ID               string          `json:"id"`
	Symbol           string          `json:"symbol"`
	Side             Side            `json:"side"`
	Size             decimal.Decimal `json:"size"`
	EntryPrice       decimal.Decimal `json:"entry_price"`
	Leverage         decimal.Decimal `json:"leverage"`
	InitialMargin    decimal.Decimal `json:"initial_margin"`
	LiquidationPrice decimal.Decimal `json:"liquidation_price"`
	MarginMode       MarginMode      `json:"margin_mode"`

	// Derived display state, refreshed on every tick from entry/size/side
	// and the current price. Never authoritative.
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	ROE           decimal.Decimal `json:"roe"`

	TakeProfitOrders []TPSLOrder `json:"take_profit_orders"`
	StopLossOrders   []TPSLOrder `json:"stop_loss_orders"`

	OpenedAt time.Time `json:"opened_at"`
}
