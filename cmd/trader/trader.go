package trader

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"submarine/src/engine"
	"submarine/src/feed"
	"submarine/src/repository"
	"submarine/src/server"
)

// Trader is the long-running service: engine plus price feed plus HTTP API,
// with every state change persisted through the snapshot repository.
type Trader struct {
	Log    *logger.Entry
	Config engine.Config
}

func (t *Trader) Start() error {
	t.Config = engine.GetConfig()

	eng := engine.NewEngine(t.Config, t.Log)

	snapshots := repository.NewSnapshotRepository()
	trades := repository.NewTradeRepository()

	state, err := snapshots.Load(context.Background(), t.Config.AccountID)
	if err != nil {
		return err
	}
	if state != nil {
		if !eng.Restore(*state) {
			t.Log.WithField("account_id", t.Config.AccountID).
				Warn("Discarded snapshot with stale schema version, starting fresh")
		}
	}

	p := newPersister(eng, snapshots, trades, t.Config.AccountID, t.Log)
	eng.Subscribe(p.onChange)

	prices := &lastPrice{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	binance := feed.NewBinanceFeed(t.Config.TargetSymbol, t.Log)
	go func() {
		err := binance.Run(ctx, func(price decimal.Decimal) {
			prices.set(price)
			eng.ProcessTick(price)
		})
		if err != nil {
			t.Log.WithError(err).Error("Price feed stopped")
		}
	}()

	router := server.NewRouter(eng, trades, prices, t.Config.AccountID)
	server.StartServer(server.GetConfig().Port, router)

	return nil
}

// lastPrice caches the most recent feed price for commands that arrive
// without their own price observation.
type lastPrice struct {
	mu    sync.RWMutex
	price decimal.Decimal
}

func (l *lastPrice) set(price decimal.Decimal) {
	l.mu.Lock()
	l.price = price
	l.mu.Unlock()
}

func (l *lastPrice) LastPrice() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.price
}
