package replay

import (
	"context"
	"net/http"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"submarine/src/engine"
	"submarine/src/feed"
	"submarine/src/stats"
)

const (
	Duration1m = "1m"
	Duration1h = "1h"
)

// klineSource is the slice of goex.API the replay needs.
type klineSource interface {
	GetKlineRecords(currency goex.CurrencyPair, period goex.KlinePeriod, size int, opt ...goex.OptionalParameter) ([]goex.Kline, error)
}

// Replay fetches historical candles, streams them through a fresh engine
// and reports the resulting trade statistics. Nothing is persisted; the run
// is a what-if against the configured account settings.
type Replay struct {
	Log      *logger.Entry
	Config   *Config
	exchange klineSource
}

func (r *Replay) Start() error {
	r.Config = GetConfig()

	if r.exchange == nil {
		r.exchange = r.newBinanceInstance()
	}

	prices, err := r.fetchPriceSeries()
	if err != nil {
		return err
	}

	eng := engine.NewEngine(engine.GetConfig(), r.Log)

	replayFeed := &feed.ReplayFeed{Prices: prices, Delay: r.Config.TickDelay}
	err = replayFeed.Run(context.Background(), func(price decimal.Decimal) {
		eng.ProcessTick(price)
	})
	if err != nil {
		return err
	}

	summary := stats.Summarize(eng.TradeHistory())
	r.Log.WithFields(logger.Fields{
		"ticks":         len(prices),
		"final_balance": eng.Balance().String(),
		"trades":        summary.Trades,
		"total_pnl":     summary.TotalPnl.String(),
		"win_rate":      summary.WinRate.String(),
	}).Info("Replay finished")

	return nil
}

func (*Replay) newBinanceInstance() *binance.Binance {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return binance.NewWithConfig(apiConfig)
}

// fetchPriceSeries flattens each candle into open, high, low, close ticks.
// The intra-candle ordering is an approximation; candles carry no sequence.
func (r *Replay) fetchPriceSeries() ([]decimal.Decimal, error) {
	targetSymbol := goex.NewCurrencyPair(goex.Currency{Symbol: r.Config.Symbol}, goex.Currency{Symbol: r.Config.Quote})

	const millis = 1000
	klines, err := r.exchange.GetKlineRecords(
		targetSymbol,
		r.parseDurationToGoex(),
		r.Config.Limit,
		goex.OptionalParameter{}.
			Optional("startTime", r.Config.StartDt.Unix()*millis).
			Optional("endTime", r.Config.EndDt.Unix()*millis),
	)
	if err != nil {
		return nil, err
	}

	prices := make([]decimal.Decimal, 0, len(klines)*4)
	for i := range klines {
		k := klines[i]
		prices = append(prices,
			decimal.NewFromFloat(k.Open),
			decimal.NewFromFloat(k.High),
			decimal.NewFromFloat(k.Low),
			decimal.NewFromFloat(k.Close),
		)
	}

	r.Log.WithFields(logger.Fields{
		"symbol":  targetSymbol.String(),
		"candles": len(klines),
		"from":    r.Config.StartDt.UTC().Format(time.RFC3339),
		"to":      r.Config.EndDt.UTC().Format(time.RFC3339),
	}).Info("Fetched candle series")

	return prices, nil
}

func (r *Replay) parseDurationToGoex() goex.KlinePeriod {
	var duration goex.KlinePeriod
	switch r.Config.DurationStr {
	case Duration1m:
		duration = goex.KLINE_PERIOD_1MIN
	case Duration1h:
		duration = goex.KLINE_PERIOD_1H
	default:
		panic("invalid DURATION env var")
	}
	return duration
}
