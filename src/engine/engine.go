package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"submarine/src/model"
)

// Engine is the single owned instance of the paper-trading core: balance,
// position book, pending order queue, trade history and account config.
// All mutations are synchronous single-writer transitions; the mutex only
// serializes the HTTP surface against the price-feed goroutine, one call
// always runs to completion before the next is admitted.
type Engine struct {
	mu  sync.Mutex
	log *logger.Entry
	cfg Config

	balance   decimal.Decimal
	positions []*model.Position
	orders    []*model.Order
	history   []model.Trade
	account   model.AccountConfig

	mmr decimal.Decimal

	listeners []func()

	now   func() time.Time
	newID func() string
}

func NewEngine(cfg Config, log *logger.Entry) *Engine {
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}

	e := &Engine{
		log: log.WithField("component", "engine"),
		cfg: cfg,
		mmr: DefaultMaintenanceMarginRate,
		now: time.Now,
		newID: func() string {
			return uuid.NewString()
		},
	}

	if mmr, err := decimal.NewFromString(cfg.MaintenanceMarginRate); err == nil && mmr.Sign() > 0 {
		e.mmr = mmr
	}

	e.resetLocked()
	return e
}

// Subscribe registers fn to be invoked after every successful state change.
// The UI/persistence collaborators read the engine through the query methods
// from inside fn; they never touch fields directly.
func (e *Engine) Subscribe(fn func()) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

func (e *Engine) emit() {
	e.mu.Lock()
	fns := make([]func(), len(e.listeners))
	copy(fns, e.listeners)
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// resetLocked puts the engine in its fresh-start state.
func (e *Engine) resetLocked() {
	start, err := decimal.NewFromString(e.cfg.StartBalance)
	if err != nil || start.Sign() < 0 {
		start = decimal.NewFromInt(10000)
	}

	leverage := e.cfg.DefaultLeverage
	if leverage < 1 {
		leverage = 10
	}

	marginMode := model.MarginMode(e.cfg.DefaultMarginMode)
	if marginMode != model.MarginModeIsolated && marginMode != model.MarginModeCross {
		marginMode = model.MarginModeIsolated
	}

	e.balance = start
	e.positions = nil
	e.orders = nil
	e.history = nil
	e.account = model.AccountConfig{
		PositionMode:         model.PositionModeOneWay,
		DefaultMarginMode:    marginMode,
		DefaultLeverage:      decimal.NewFromInt(int64(leverage)),
		ConfirmationsEnabled: e.cfg.ConfirmationsEnabled,
	}
}

// ---------------------------------------------------
// Queries
// ---------------------------------------------------

func (e *Engine) Balance() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// Positions returns the open book in insertion order. Copies are returned so
// callers can never mutate engine state.
func (e *Engine) Positions() []model.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Position, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, copyPosition(p))
	}
	return out
}

func (e *Engine) Position(id string) (model.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.findPositionByIDLocked(id)
	if p == nil {
		return model.Position{}, false
	}
	return copyPosition(p), true
}

// Orders returns the pending queue.
func (e *Engine) Orders() []model.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, *o)
	}
	return out
}

// TradeHistory returns the append-only close ledger, oldest first.
func (e *Engine) TradeHistory() []model.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Trade, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Engine) Account() (decimal.Decimal, model.AccountConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance, e.account
}

func (e *Engine) Symbol() string {
	return e.cfg.TargetSymbol
}

// ---------------------------------------------------
// Account settings
// ---------------------------------------------------

// SetPositionMode switches between ONE_WAY and HEDGE. Rejected while any
// position is open.
func (e *Engine) SetPositionMode(mode model.PositionMode) error {
	if mode != model.PositionModeOneWay && mode != model.PositionModeHedge {
		return ErrInvalidOrder
	}

	e.mu.Lock()
	if len(e.positions) > 0 {
		e.mu.Unlock()
		return ErrPositionsOpen
	}
	e.account.PositionMode = mode
	e.mu.Unlock()

	e.emit()
	return nil
}

func (e *Engine) SetDefaultMarginMode(mode model.MarginMode) error {
	if mode != model.MarginModeIsolated && mode != model.MarginModeCross {
		return ErrInvalidOrder
	}

	e.mu.Lock()
	e.account.DefaultMarginMode = mode
	e.mu.Unlock()

	e.emit()
	return nil
}

func (e *Engine) SetDefaultLeverage(leverage decimal.Decimal) error {
	if leverage.LessThan(decimal.NewFromInt(1)) {
		return ErrInvalidOrder
	}

	e.mu.Lock()
	e.account.DefaultLeverage = leverage
	e.mu.Unlock()

	e.emit()
	return nil
}

func (e *Engine) SetConfirmationsEnabled(enabled bool) {
	e.mu.Lock()
	e.account.ConfirmationsEnabled = enabled
	e.mu.Unlock()

	e.emit()
}

// ---------------------------------------------------
// Snapshot / restore
// ---------------------------------------------------

// Snapshot returns a deep copy of everything the engine owns, in the shape
// the persistence collaborator round-trips.
func (e *Engine) Snapshot() model.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := model.EngineState{
		Balance:       e.balance,
		Config:        e.account,
		Positions:     make([]model.Position, 0, len(e.positions)),
		Orders:        make([]model.Order, 0, len(e.orders)),
		TradeHistory:  make([]model.Trade, len(e.history)),
		SchemaVersion: model.SchemaVersion,
	}

	for _, p := range e.positions {
		state.Positions = append(state.Positions, copyPosition(p))
	}
	for _, o := range e.orders {
		state.Orders = append(state.Orders, *o)
	}
	copy(state.TradeHistory, e.history)

	return state
}

// Restore loads persisted state. A snapshot written under a different schema
// version is discarded wholesale and the engine keeps its fresh-start
// defaults; this is a deliberate reset, not a migration. Returns whether the
// snapshot was applied.
func (e *Engine) Restore(state model.EngineState) bool {
	if state.SchemaVersion != model.SchemaVersion {
		e.log.WithFields(logger.Fields{
			"persisted_version": state.SchemaVersion,
			"expected_version":  model.SchemaVersion,
		}).Warn("Discarding persisted state: schema version mismatch")

		e.mu.Lock()
		e.resetLocked()
		e.mu.Unlock()
		e.emit()
		return false
	}

	e.mu.Lock()
	e.balance = state.Balance
	e.account = state.Config
	e.positions = make([]*model.Position, 0, len(state.Positions))
	for i := range state.Positions {
		p := copyPosition(&state.Positions[i])
		e.positions = append(e.positions, &p)
	}
	e.orders = make([]*model.Order, 0, len(state.Orders))
	for i := range state.Orders {
		o := state.Orders[i]
		e.orders = append(e.orders, &o)
	}
	e.history = make([]model.Trade, len(state.TradeHistory))
	copy(e.history, state.TradeHistory)
	e.mu.Unlock()

	e.emit()
	return true
}

// ---------------------------------------------------
// Internal helpers (callers hold e.mu)
// ---------------------------------------------------

func (e *Engine) findPositionLocked(symbol string) *model.Position {
	for _, p := range e.positions {
		if p.Symbol == symbol {
			return p
		}
	}
	return nil
}

func (e *Engine) findPositionByIDLocked(id string) *model.Position {
	for _, p := range e.positions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (e *Engine) removePositionLocked(id string) {
	for i, p := range e.positions {
		if p.ID == id {
			e.positions = append(e.positions[:i], e.positions[i+1:]...)
			return
		}
	}
}

func (e *Engine) removeOrderLocked(id string) bool {
	for i, o := range e.orders {
		if o.ID == id {
			e.orders = append(e.orders[:i], e.orders[i+1:]...)
			return true
		}
	}
	return false
}

func copyPosition(p *model.Position) model.Position {
	out := *p
	out.TakeProfitOrders = append([]model.TPSLOrder(nil), p.TakeProfitOrders...)
	out.StopLossOrders = append([]model.TPSLOrder(nil), p.StopLossOrders...)
	return out
}
