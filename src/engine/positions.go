package engine

import (
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"submarine/src/model"
)

// ClosePosition fully closes a position at the current price, returning
// margin plus realized pnl to the balance and appending a trade record.
func (e *Engine) ClosePosition(id string, currentPrice decimal.Decimal) error {
	if currentPrice.Sign() <= 0 {
		return ErrInvalidOrder
	}

	e.mu.Lock()
	err := e.closePositionLocked(id, currentPrice)
	e.mu.Unlock()

	if err == nil {
		e.emit()
	}
	return err
}

func (e *Engine) closePositionLocked(id string, currentPrice decimal.Decimal) error {
	pos := e.findPositionByIDLocked(id)
	if pos == nil {
		return ErrPositionNotFound
	}

	pnl := PnL(pos.EntryPrice, currentPrice, pos.Size, pos.Side)
	e.balance = e.balance.Add(pos.InitialMargin).Add(pnl)

	trade := model.Trade{
		TradeID:          e.newID(),
		AccountID:        e.cfg.AccountID,
		OrderID:          pos.ID,
		Symbol:           pos.Symbol,
		Side:             pos.Side,
		Action:           model.TradeActionClose,
		EntryPrice:       pos.EntryPrice,
		ExitPrice:        currentPrice,
		Size:             pos.Size,
		Leverage:         pos.Leverage,
		RealizedPnl:      pnl,
		ROE:              ROE(pnl, pos.InitialMargin),
		MarginMode:       pos.MarginMode,
		ClosedPercentage: oneHundred,
		OpenedAt:         pos.OpenedAt,
		ClosedAt:         e.now(),
	}
	e.history = append(e.history, trade)
	e.removePositionLocked(pos.ID)

	e.log.WithFields(logger.Fields{
		"position_id":  pos.ID,
		"exit_price":   currentPrice.String(),
		"realized_pnl": pnl.String(),
	}).Info("Position closed")
	return nil
}

// PartialClosePosition reduces a position by amount at the current price.
// An amount at or above the full size degrades to a full close. Partial
// closes do not append to the trade history; only full closes do.
func (e *Engine) PartialClosePosition(id string, amount, currentPrice decimal.Decimal) error {
	if amount.Sign() <= 0 || currentPrice.Sign() <= 0 {
		return ErrInvalidOrder
	}

	e.mu.Lock()
	pos := e.findPositionByIDLocked(id)
	if pos == nil {
		e.mu.Unlock()
		return ErrPositionNotFound
	}

	if amount.GreaterThanOrEqual(pos.Size) {
		err := e.closePositionLocked(id, currentPrice)
		e.mu.Unlock()
		if err == nil {
			e.emit()
		}
		return err
	}

	res := PartialClosePnL(pos, amount, currentPrice)
	e.balance = e.balance.Add(res.Pnl).Add(res.ReturnedMargin)
	pos.InitialMargin = pos.InitialMargin.Sub(res.ReturnedMargin)
	pos.Size = res.RemainingSize

	e.log.WithFields(logger.Fields{
		"position_id":     pos.ID,
		"closed_amount":   amount.String(),
		"realized_pnl":    res.Pnl.String(),
		"returned_margin": res.ReturnedMargin.String(),
		"remaining_size":  pos.Size.String(),
	}).Info("Position partially closed")
	e.mu.Unlock()

	e.emit()
	return nil
}

// ReversePosition realizes the full pnl at the current price and opens a
// brand-new position of the opposite side with the same size and leverage.
// Attached TP/SL orders are not carried over: trigger prices computed for one
// direction are invalid for the other.
func (e *Engine) ReversePosition(id string, currentPrice decimal.Decimal) error {
	if currentPrice.Sign() <= 0 {
		return ErrInvalidOrder
	}

	e.mu.Lock()

	pos := e.findPositionByIDLocked(id)
	if pos == nil {
		e.mu.Unlock()
		return ErrPositionNotFound
	}

	rev := ReverseEconomics(pos, currentPrice)
	newMargin := InitialMargin(currentPrice, pos.Size, pos.Leverage)

	if e.balance.Add(pos.InitialMargin).Add(rev.ClosePnl).LessThan(newMargin) {
		e.mu.Unlock()
		return ErrInsufficientBalance
	}

	e.balance = e.balance.Add(pos.InitialMargin).Add(rev.ClosePnl)
	size := pos.Size
	leverage := pos.Leverage
	e.removePositionLocked(pos.ID)

	e.openPositionLocked(rev.NewSide, size, leverage, currentPrice, newMargin)

	e.log.WithFields(logger.Fields{
		"position_id":  pos.ID,
		"realized_pnl": rev.ClosePnl.String(),
		"new_side":     rev.NewSide,
	}).Info("Position reversed")
	e.mu.Unlock()

	e.emit()
	return nil
}

// CloseAllPositions folds margin return and pnl across the whole book into a
// single balance credit and clears it. No trade records are appended in this
// bulk path.
func (e *Engine) CloseAllPositions(currentPrice decimal.Decimal) error {
	if currentPrice.Sign() <= 0 {
		return ErrInvalidOrder
	}

	e.mu.Lock()

	credit := decimal.Zero
	for _, pos := range e.positions {
		pnl := PnL(pos.EntryPrice, currentPrice, pos.Size, pos.Side)
		credit = credit.Add(pos.InitialMargin).Add(pnl)
	}

	closed := len(e.positions)
	e.balance = e.balance.Add(credit)
	e.positions = nil

	if closed > 0 {
		e.log.WithFields(logger.Fields{
			"closed": closed,
			"credit": credit.String(),
		}).Info("All positions closed")
	}
	e.mu.Unlock()

	e.emit()
	return nil
}

// TPSLParams describes a take-profit or stop-loss attachment. Either Size or
// Percentage may be given; the other is derived from the position size at
// creation time and both are then fixed for the life of the order.
type TPSLParams struct {
	OrderType    model.OrderType
	TriggerPrice decimal.Decimal
	LimitPrice   decimal.Decimal
	Size         decimal.Decimal
	Percentage   decimal.Decimal
	TriggerType  model.TriggerType
}

// AddTakeProfitOrder appends an active take-profit order to the position.
func (e *Engine) AddTakeProfitOrder(positionID string, params TPSLParams) (string, error) {
	return e.addTPSL(positionID, model.TPSLTypeTakeProfit, params)
}

// AddStopLossOrder appends an active stop-loss order to the position.
func (e *Engine) AddStopLossOrder(positionID string, params TPSLParams) (string, error) {
	return e.addTPSL(positionID, model.TPSLTypeStopLoss, params)
}

func (e *Engine) addTPSL(positionID string, typ model.TPSLType, params TPSLParams) (string, error) {
	if params.TriggerPrice.Sign() <= 0 {
		return "", ErrInvalidOrder
	}

	e.mu.Lock()

	pos := e.findPositionByIDLocked(positionID)
	if pos == nil {
		e.mu.Unlock()
		return "", ErrPositionNotFound
	}

	size := params.Size
	percentage := params.Percentage
	switch {
	case size.Sign() > 0:
		percentage = size.Div(pos.Size).Mul(oneHundred)
	case percentage.Sign() > 0:
		size = pos.Size.Mul(percentage).Div(oneHundred)
	default:
		e.mu.Unlock()
		return "", ErrInvalidOrder
	}

	orderType := params.OrderType
	if orderType == "" {
		orderType = model.OrderTypeMarket
	}
	triggerType := params.TriggerType
	if triggerType == "" {
		triggerType = model.TriggerTypeLastPrice
	}

	order := model.TPSLOrder{
		ID:           e.newID(),
		Type:         typ,
		OrderType:    orderType,
		TriggerPrice: params.TriggerPrice,
		LimitPrice:   params.LimitPrice,
		Size:         size,
		Percentage:   percentage,
		TriggerType:  triggerType,
		Status:       model.TPSLStatusActive,
	}

	if typ == model.TPSLTypeTakeProfit {
		pos.TakeProfitOrders = append(pos.TakeProfitOrders, order)
	} else {
		pos.StopLossOrders = append(pos.StopLossOrders, order)
	}

	e.log.WithFields(logger.Fields{
		"position_id":   positionID,
		"tpsl_id":       order.ID,
		"type":          typ,
		"trigger_price": order.TriggerPrice.String(),
		"size":          order.Size.String(),
	}).Info("TP/SL order attached")
	e.mu.Unlock()

	e.emit()
	return order.ID, nil
}

// CancelTPSL removes a TP/SL order by id from whichever collection holds it.
func (e *Engine) CancelTPSL(positionID, tpslID string) error {
	e.mu.Lock()

	pos := e.findPositionByIDLocked(positionID)
	if pos == nil {
		e.mu.Unlock()
		return ErrPositionNotFound
	}

	removed := false
	if pos.TakeProfitOrders, removed = removeTPSL(pos.TakeProfitOrders, tpslID); !removed {
		pos.StopLossOrders, removed = removeTPSL(pos.StopLossOrders, tpslID)
	}
	e.mu.Unlock()

	if !removed {
		return ErrTPSLNotFound
	}

	e.log.WithFields(logger.Fields{
		"position_id": positionID,
		"tpsl_id":     tpslID,
	}).Info("TP/SL order canceled")
	e.emit()
	return nil
}

func removeTPSL(orders []model.TPSLOrder, id string) ([]model.TPSLOrder, bool) {
	for i := range orders {
		if orders[i].ID == id {
			return append(orders[:i], orders[i+1:]...), true
		}
	}
	return orders, false
}
