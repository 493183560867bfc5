package engine

import (
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"submarine/src/model"
)

// ProcessTick runs the per-tick pipeline against the latest price. Order of
// the steps is significant, later steps see the mutations of earlier ones:
//
//  1. mark-to-market every open position
//  2. liquidation check (margin forfeited, no balance credit)
//  3. TP/SL evaluation on the survivors, TP before SL, collection order
//  4. credit the accumulated TP/SL deltas
//  5. pending limit fill scan, routed back through the order router
//
// The whole pass runs to completion before any other call is admitted.
// Listeners fire only when the tick changed the balance, the book or the
// order queue; mark-to-market alone is derived state and would otherwise
// persist a full snapshot on every sub-second price update.
func (e *Engine) ProcessTick(currentPrice decimal.Decimal) {
	if currentPrice.Sign() <= 0 {
		return
	}

	changed := false

	e.mu.Lock()

	for _, pos := range e.positions {
		pos.UnrealizedPnl = PnL(pos.EntryPrice, currentPrice, pos.Size, pos.Side)
		pos.ROE = ROE(pos.UnrealizedPnl, pos.InitialMargin)
	}

	survivors := make([]*model.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		if liquidated(pos, currentPrice) {
			e.log.WithFields(logger.Fields{
				"position_id":       pos.ID,
				"side":              pos.Side,
				"liquidation_price": pos.LiquidationPrice.String(),
				"current_price":     currentPrice.String(),
				"forfeited_margin":  pos.InitialMargin.String(),
			}).Warn("Position liquidated")
			changed = true
			continue
		}
		survivors = append(survivors, pos)
	}
	e.positions = survivors

	balanceDelta := decimal.Zero
	remaining := make([]*model.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		sizeBefore := pos.Size
		if fullyClosed := e.evaluateTPSLLocked(pos, currentPrice, &balanceDelta); !fullyClosed {
			remaining = append(remaining, pos)
		}
		if !pos.Size.Equal(sizeBefore) {
			changed = true
		}
	}
	e.positions = remaining
	e.balance = e.balance.Add(balanceDelta)

	var fills []*model.Order
	for _, order := range e.orders {
		if order.Status != model.OrderStatusPending || order.Type != model.OrderTypeLimit {
			continue
		}
		if limitTriggered(order, currentPrice) {
			fills = append(fills, order)
		}
	}

	// Fired orders fill as market orders at the tick price, not at the limit
	// price, tagged with the originating id so the router prunes the queue
	// atomically and cancels on insufficient balance instead of looping.
	for _, order := range fills {
		order.Status = model.OrderStatusFilled
		order.FilledSize = order.Size
		order.AverageFillPrice = currentPrice
		_ = e.executeLocked(order.Side, order.Size, order.Leverage, currentPrice, order.ID)
		changed = true
	}

	e.mu.Unlock()

	if changed {
		e.emit()
	}
}

// evaluateTPSLLocked fires triggered TP then SL orders sequentially against
// the mutated position. Reports whether the position was fully closed.
func (e *Engine) evaluateTPSLLocked(pos *model.Position, price decimal.Decimal, delta *decimal.Decimal) bool {
	for i := range pos.TakeProfitOrders {
		order := &pos.TakeProfitOrders[i]
		if order.Status != model.TPSLStatusActive || !takeProfitTriggered(pos.Side, price, order.TriggerPrice) {
			continue
		}
		if e.fillTPSLLocked(pos, order, price, delta) {
			return true
		}
	}

	for i := range pos.StopLossOrders {
		order := &pos.StopLossOrders[i]
		if order.Status != model.TPSLStatusActive || !stopLossTriggered(pos.Side, price, order.TriggerPrice) {
			continue
		}
		if e.fillTPSLLocked(pos, order, price, delta) {
			return true
		}
	}

	return false
}

// fillTPSLLocked realizes a fired TP/SL order. An order sized at or above
// the live position closes it outright; otherwise size and margin shrink by
// the share captured when the order was created. The percentage is fixed at
// creation time and deliberately not re-derived against the live size.
func (e *Engine) fillTPSLLocked(pos *model.Position, order *model.TPSLOrder, price decimal.Decimal, delta *decimal.Decimal) bool {
	order.Status = model.TPSLStatusFilled

	if order.Size.GreaterThanOrEqual(pos.Size) {
		pnl := PnL(pos.EntryPrice, price, pos.Size, pos.Side)
		*delta = delta.Add(pnl).Add(pos.InitialMargin)

		e.log.WithFields(logger.Fields{
			"position_id":  pos.ID,
			"tpsl_id":      order.ID,
			"type":         order.Type,
			"fill_price":   price.String(),
			"realized_pnl": pnl.String(),
		}).Info("TP/SL order filled, position fully closed")

		pos.Size = decimal.Zero
		return true
	}

	res := PartialClosePnL(pos, order.Size, price)
	marginShare := pos.InitialMargin.Mul(order.Percentage).Div(oneHundred)

	*delta = delta.Add(res.Pnl).Add(marginShare)
	pos.Size = pos.Size.Sub(order.Size)
	pos.InitialMargin = pos.InitialMargin.Sub(marginShare)

	e.log.WithFields(logger.Fields{
		"position_id":    pos.ID,
		"tpsl_id":        order.ID,
		"type":           order.Type,
		"fill_price":     price.String(),
		"realized_pnl":   res.Pnl.String(),
		"remaining_size": pos.Size.String(),
	}).Info("TP/SL order filled, position reduced")
	return false
}

func liquidated(pos *model.Position, price decimal.Decimal) bool {
	if pos.Side == model.SideLong {
		return price.LessThanOrEqual(pos.LiquidationPrice)
	}
	return price.GreaterThanOrEqual(pos.LiquidationPrice)
}

func takeProfitTriggered(side model.Side, price, trigger decimal.Decimal) bool {
	if side == model.SideLong {
		return price.GreaterThanOrEqual(trigger)
	}
	return price.LessThanOrEqual(trigger)
}

func stopLossTriggered(side model.Side, price, trigger decimal.Decimal) bool {
	if side == model.SideLong {
		return price.LessThanOrEqual(trigger)
	}
	return price.GreaterThanOrEqual(trigger)
}

func limitTriggered(order *model.Order, price decimal.Decimal) bool {
	if order.Side == model.SideLong {
		return price.LessThanOrEqual(order.Price)
	}
	return price.GreaterThanOrEqual(order.Price)
}
