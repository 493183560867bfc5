package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SchemaVersion tags persisted engine state. A snapshot written under a
// different version is discarded on load and the engine starts fresh; this
// is a deliberate reset, not a migration.
const SchemaVersion = 3

// EngineSnapshot is the persisted row, one per account. Payload is the JSON
// encoding of EngineState.
type EngineSnapshot struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountID     string    `gorm:"size:64;uniqueIndex" json:"account_id"`
	SchemaVersion int       `json:"schema_version"`
	Payload       []byte    `gorm:"type:text" json:"payload"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (EngineSnapshot) TableName() string {
	return "engine_snapshots"
}

// AccountConfig is the user-tunable part of engine state.
type AccountConfig struct {
	PositionMode         PositionMode    `json:"position_mode"`
	DefaultMarginMode    MarginMode      `json:"default_margin_mode"`
	DefaultLeverage      decimal.Decimal `json:"default_leverage"`
	ConfirmationsEnabled bool            `json:"confirmations_enabled"`
}

// EngineState is the round-trippable shape of everything the engine owns.
type EngineState struct {
	Balance       decimal.Decimal `json:"balance"`
	Config        AccountConfig   `json:"config"`
	Positions     []Position      `json:"positions"`
	Orders        []Order         `json:"orders"`
	TradeHistory  []Trade         `json:"trade_history"`
	SchemaVersion int             `json:"schema_version"`
}
