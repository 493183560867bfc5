package engine

import (
	"github.com/shopspring/decimal"

	"submarine/src/model"
)

var (
	oneHundred = decimal.NewFromInt(100)

	// DefaultMaintenanceMarginRate is the fixed 0.5% maintenance margin
	// rate of the simplified isolated-margin model.
	DefaultMaintenanceMarginRate = decimal.RequireFromString("0.005")
)

// PnL returns the profit or loss of a position of the given size between
// entry and current price. Long profits when price rises, short when it falls.
func PnL(entryPrice, currentPrice, size decimal.Decimal, side model.Side) decimal.Decimal {
	if side == model.SideLong {
		return currentPrice.Sub(entryPrice).Mul(size)
	}
	return entryPrice.Sub(currentPrice).Mul(size)
}

// ROE expresses pnl as a percentage of the locked initial margin.
func ROE(pnl, initialMargin decimal.Decimal) decimal.Decimal {
	if initialMargin.IsZero() {
		return decimal.Zero
	}
	return pnl.Div(initialMargin).Mul(oneHundred)
}

// InitialMargin is the capital locked to carry size at price under leverage.
func InitialMargin(price, size, leverage decimal.Decimal) decimal.Decimal {
	return price.Mul(size).Div(leverage)
}

// LiquidationPrice computes the forced-close price of an isolated position.
//
// Long:  entry * (1 - 1/leverage + mmr)
// Short: entry * (1 + 1/leverage - mmr)
//
// Simplified model: no cross-position effects, no funding, wallet balance
// not part of the formula.
func LiquidationPrice(entryPrice, leverage decimal.Decimal, side model.Side, mmr decimal.Decimal) decimal.Decimal {
	inverse := decimal.NewFromInt(1).Div(leverage)
	if side == model.SideLong {
		return entryPrice.Mul(decimal.NewFromInt(1).Sub(inverse).Add(mmr))
	}
	return entryPrice.Mul(decimal.NewFromInt(1).Add(inverse).Sub(mmr))
}

// PartialCloseResult carries the economics of closing part of a position.
type PartialCloseResult struct {
	Pnl            decimal.Decimal
	ReturnedMargin decimal.Decimal
	RemainingSize  decimal.Decimal
}

// PartialClosePnL computes the pnl realized on closeSize at currentPrice,
// the proportional share of initial margin released, and the size left open.
func PartialClosePnL(pos *model.Position, closeSize, currentPrice decimal.Decimal) PartialCloseResult {
	return PartialCloseResult{
		Pnl:            PnL(pos.EntryPrice, currentPrice, closeSize, pos.Side),
		ReturnedMargin: pos.InitialMargin.Mul(closeSize.Div(pos.Size)),
		RemainingSize:  pos.Size.Sub(closeSize),
	}
}

// ReverseResult carries the economics of flipping a position.
type ReverseResult struct {
	ClosePnl decimal.Decimal
	NewSide  model.Side
}

// ReverseEconomics returns the full-size pnl realized when a position is
// flipped at currentPrice, plus the direction of the replacement position.
func ReverseEconomics(pos *model.Position, currentPrice decimal.Decimal) ReverseResult {
	return ReverseResult{
		ClosePnl: PnL(pos.EntryPrice, currentPrice, pos.Size, pos.Side),
		NewSide:  pos.Side.Opposite(),
	}
}
