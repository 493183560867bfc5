package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// Order is a pending instruction that has not yet changed the position book.
// Only full fills are simulated: an order either fills completely at its
// trigger or stays pending. FilledSize/AverageFillPrice are tracked for the
// API shape but carry no partial-fill semantics.
type Order struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Type     OrderType       `json:"type"`
	Side     Side            `json:"side"`
	Size     decimal.Decimal `json:"size"`
	Leverage decimal.Decimal `json:"leverage"`
	Price    decimal.Decimal `json:"price"`
	Status   OrderStatus     `json:"status"`

	FilledSize       decimal.Decimal `json:"filled_size"`
	AverageFillPrice decimal.Decimal `json:"average_fill_price"`

	TriggerType   TriggerType `json:"trigger_type,omitempty"`
	TimeInForce   TimeInForce `json:"time_in_force,omitempty"`
	PostOnly      bool        `json:"post_only"`
	ReduceOnly    bool        `json:"reduce_only"`
	ClosePosition bool        `json:"close_position"`

	CreatedAt time.Time `json:"created_at"`
}
