package model

import "github.com/shopspring/decimal"

type TPSLType string

const (
	TPSLTypeTakeProfit TPSLType = "TAKE_PROFIT"
	TPSLTypeStopLoss   TPSLType = "STOP_LOSS"
)

type TPSLStatus string

const (
	TPSLStatusActive TPSLStatus = "ACTIVE"
	TPSLStatusFilled TPSLStatus = "FILLED"
)

type TriggerType string

const (
	TriggerTypeLastPrice TriggerType = "LAST_PRICE"
	TriggerTypeMarkPrice TriggerType = "MARK_PRICE"
)

// TPSLOrder is a conditional close attached to exactly one position; it never
// exists on its own. Size and Percentage are captured when the order is
// created and are not re-derived if the position size changes afterwards.
type TPSLOrder struct {
	ID           string          `json:"id"`
	Type         TPSLType        `json:"type"`
	OrderType    OrderType       `json:"order_type"`
	TriggerPrice decimal.Decimal `json:"trigger_price"`
	LimitPrice   decimal.Decimal `json:"limit_price,omitempty"`
	Size         decimal.Decimal `json:"size"`
	Percentage   decimal.Decimal `json:"percentage"`
	TriggerType  TriggerType     `json:"trigger_type"`
	Status       TPSLStatus      `json:"status"`
}
