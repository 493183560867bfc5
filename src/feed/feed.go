// Package feed delivers market prices to the engine. The engine has no
// opinion on transport; it only wants the latest scalar per update.
package feed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TickHandler receives every price update in delivery order.
type TickHandler func(price decimal.Decimal)

// Feed streams prices until the context is canceled.
type Feed interface {
	Run(ctx context.Context, handler TickHandler) error
}

// ReplayFeed plays a fixed price sequence. Used by the replay command and
// in tests.
type ReplayFeed struct {
	Prices []decimal.Decimal
	Delay  time.Duration
}

func (f *ReplayFeed) Run(ctx context.Context, handler TickHandler) error {
	for _, price := range f.Prices {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		handler(price)

		if f.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.Delay):
			}
		}
	}
	return nil
}
