package engine

import (
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"submarine/src/model"
)

// OrderParams is the submission surface of the order router. Leverage zero
// falls back to the account default. TriggerType, TimeInForce, PostOnly,
// ReduceOnly and ClosePosition are accepted as configuration; fills are
// always full-size with no maker/taker distinction.
type OrderParams struct {
	Type          model.OrderType
	Side          model.Side
	Size          decimal.Decimal
	Leverage      decimal.Decimal
	Price         decimal.Decimal
	TriggerType   model.TriggerType
	TimeInForce   model.TimeInForce
	PostOnly      bool
	ReduceOnly    bool
	ClosePosition bool
}

// SubmitOrder routes a user order against the current price. MARKET orders
// and marketable LIMIT orders execute immediately; other LIMIT orders are
// queued until a tick satisfies them.
func (e *Engine) SubmitOrder(params OrderParams, currentPrice decimal.Decimal) error {
	e.mu.Lock()
	err := e.submitLocked(params, currentPrice, "")
	e.mu.Unlock()

	if err == nil {
		e.emit()
	}
	return err
}

// CancelOrder prunes a pending order from the queue.
func (e *Engine) CancelOrder(id string) error {
	e.mu.Lock()
	removed := e.removeOrderLocked(id)
	e.mu.Unlock()

	if !removed {
		return ErrOrderNotFound
	}

	e.log.WithField("order_id", id).Info("Pending order canceled")
	e.emit()
	return nil
}

// submitLocked is the router core. originatingOrderID is set when the call
// comes from the tick processor filling a queued limit order; it makes queue
// cleanup atomic with the fill and turns insufficient balance into a silent
// cancellation of the stale order.
func (e *Engine) submitLocked(params OrderParams, currentPrice decimal.Decimal, originatingOrderID string) error {
	if params.Side != model.SideLong && params.Side != model.SideShort {
		return ErrInvalidOrder
	}
	if params.Type != model.OrderTypeMarket && params.Type != model.OrderTypeLimit {
		return ErrInvalidOrder
	}
	if params.Size.Sign() <= 0 || currentPrice.Sign() <= 0 {
		return ErrInvalidOrder
	}

	leverage := params.Leverage
	if leverage.IsZero() {
		leverage = e.account.DefaultLeverage
	}
	if leverage.LessThan(decimal.NewFromInt(1)) {
		return ErrInvalidOrder
	}

	if params.Type == model.OrderTypeLimit && params.Price.Sign() <= 0 {
		return ErrInvalidOrder
	}

	// A limit order whose price is already satisfied by the market executes
	// right away, at the current price: price improvement favors the trader.
	marketable := params.Type == model.OrderTypeMarket ||
		(params.Side == model.SideLong && params.Price.GreaterThanOrEqual(currentPrice)) ||
		(params.Side == model.SideShort && params.Price.LessThanOrEqual(currentPrice))

	if !marketable {
		order := &model.Order{
			ID:            e.newID(),
			Symbol:        e.cfg.TargetSymbol,
			Type:          params.Type,
			Side:          params.Side,
			Size:          params.Size,
			Leverage:      leverage,
			Price:         params.Price,
			Status:        model.OrderStatusPending,
			TriggerType:   params.TriggerType,
			TimeInForce:   params.TimeInForce,
			PostOnly:      params.PostOnly,
			ReduceOnly:    params.ReduceOnly,
			ClosePosition: params.ClosePosition,
			CreatedAt:     e.now(),
		}
		e.orders = append(e.orders, order)

		e.log.WithFields(logger.Fields{
			"order_id": order.ID,
			"side":     order.Side,
			"size":     order.Size.String(),
			"price":    order.Price.String(),
		}).Info("Limit order queued")
		return nil
	}

	return e.executeLocked(params.Side, params.Size, leverage, currentPrice, originatingOrderID)
}

// executeLocked fills an eligible order at price, resolving it against the
// existing position in ONE_WAY fashion: open, merge, reduce or reverse.
func (e *Engine) executeLocked(side model.Side, size, leverage, price decimal.Decimal, originatingOrderID string) error {
	required := InitialMargin(price, size, leverage)

	if e.balance.LessThan(required) {
		if originatingOrderID != "" {
			// Stale system-triggered fill: drop the pending order so it
			// does not re-attempt forever once balance frees up.
			e.removeOrderLocked(originatingOrderID)
			e.log.WithFields(logger.Fields{
				"order_id":        originatingOrderID,
				"required_margin": required.String(),
				"balance":         e.balance.String(),
			}).Warn("Canceled stale limit order: insufficient balance at fill time")
			return nil
		}
		return ErrInsufficientBalance
	}

	pos := e.findPositionLocked(e.cfg.TargetSymbol)

	switch {
	case pos == nil:
		e.openPositionLocked(side, size, leverage, price, required)

	case pos.Side == side:
		e.mergePositionLocked(pos, size, price, required)

	case size.LessThan(pos.Size):
		res := PartialClosePnL(pos, size, price)
		e.balance = e.balance.Add(res.Pnl).Add(res.ReturnedMargin)
		pos.InitialMargin = pos.InitialMargin.Sub(res.ReturnedMargin)
		pos.Size = res.RemainingSize

		e.log.WithFields(logger.Fields{
			"position_id":    pos.ID,
			"reduced_by":     size.String(),
			"realized_pnl":   res.Pnl.String(),
			"remaining_size": pos.Size.String(),
		}).Info("Position reduced by opposite-side order")

	default:
		closePnl := PnL(pos.EntryPrice, price, pos.Size, pos.Side)
		e.balance = e.balance.Add(pos.InitialMargin).Add(closePnl)
		remainder := size.Sub(pos.Size)
		e.removePositionLocked(pos.ID)

		e.log.WithFields(logger.Fields{
			"position_id":  pos.ID,
			"realized_pnl": closePnl.String(),
			"remainder":    remainder.String(),
		}).Info("Position closed by opposite-side order")

		if remainder.Sign() > 0 {
			e.openPositionLocked(side, remainder, leverage, price, InitialMargin(price, remainder, leverage))
		}
	}

	if originatingOrderID != "" {
		e.removeOrderLocked(originatingOrderID)
	}
	return nil
}

func (e *Engine) openPositionLocked(side model.Side, size, leverage, price, margin decimal.Decimal) {
	pos := &model.Position{
		ID:               e.newID(),
		Symbol:           e.cfg.TargetSymbol,
		Side:             side,
		Size:             size,
		EntryPrice:       price,
		Leverage:         leverage,
		InitialMargin:    margin,
		LiquidationPrice: LiquidationPrice(price, leverage, side, e.mmr),
		MarginMode:       e.account.DefaultMarginMode,
		OpenedAt:         e.now(),
	}

	e.balance = e.balance.Sub(margin)
	e.positions = append(e.positions, pos)

	e.log.WithFields(logger.Fields{
		"position_id": pos.ID,
		"side":        side,
		"size":        size.String(),
		"entry_price": price.String(),
		"leverage":    leverage.String(),
		"margin":      margin.String(),
	}).Info("Position opened")
}

// mergePositionLocked folds a same-side fill into the existing position.
// Entry price becomes the volume-weighted average and effective leverage is
// recomputed from the combined notional over the combined margin.
func (e *Engine) mergePositionLocked(pos *model.Position, size, price, required decimal.Decimal) {
	newSize := pos.Size.Add(size)
	newEntry := pos.EntryPrice.Mul(pos.Size).Add(price.Mul(size)).Div(newSize)
	newMargin := pos.InitialMargin.Add(required)
	newLeverage := newEntry.Mul(newSize).Div(newMargin)

	pos.Size = newSize
	pos.EntryPrice = newEntry
	pos.InitialMargin = newMargin
	pos.Leverage = newLeverage
	pos.LiquidationPrice = LiquidationPrice(newEntry, newLeverage, pos.Side, e.mmr)

	e.balance = e.balance.Sub(required)

	e.log.WithFields(logger.Fields{
		"position_id": pos.ID,
		"size":        newSize.String(),
		"entry_price": newEntry.String(),
		"leverage":    newLeverage.String(),
	}).Info("Position merged")
}
