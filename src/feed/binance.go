package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// BinanceFeed streams trade prices for one symbol over the public Binance
// websocket, primed by a REST snapshot so the engine has a price before the
// first trade arrives.
type BinanceFeed struct {
	log    *logger.Entry
	cfg    Config
	symbol string
	http   *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()
	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 || code == 408 {
		return true
	}
	return false
}

func NewBinanceFeed(symbol string, log *logger.Entry) *BinanceFeed {
	return NewBinanceFeedWithConfig(GetConfig(), symbol, log)
}

func NewBinanceFeedWithConfig(cfg Config, symbol string, log *logger.Entry) *BinanceFeed {
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}

	httpClient := resty.New().
		SetBaseURL(cfg.RestBaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(isRetryableResp)

	return &BinanceFeed{
		log:    log.WithField("component", "binance_feed"),
		cfg:    cfg,
		symbol: strings.ToUpper(symbol),
		http:   httpClient,
	}
}

type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// tradeEvent is the <symbol>@trade stream payload; only the price is used.
type tradeEvent struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
}

// SnapshotPrice fetches the latest traded price over REST.
func (f *BinanceFeed) SnapshotPrice() (decimal.Decimal, error) {
	var out tickerPriceResponse

	resp, err := f.http.R().
		SetQueryParam("symbol", f.symbol).
		SetResult(&out).
		Get("/api/v3/ticker/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("ticker request failed: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("ticker request failed: status %d", resp.StatusCode())
	}

	price, err := decimal.NewFromString(out.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable ticker price %q: %w", out.Price, err)
	}
	return price, nil
}

// Run streams until ctx is canceled, reconnecting with a fixed delay on
// stream errors.
func (f *BinanceFeed) Run(ctx context.Context, handler TickHandler) error {
	if price, err := f.SnapshotPrice(); err == nil {
		handler(price)
	} else {
		f.log.WithError(err).Warn("Failed to prime price from REST snapshot")
	}

	for {
		err := f.stream(ctx, handler)
		if ctx.Err() != nil {
			return nil
		}
		f.log.WithError(err).Warn("Price stream dropped, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.cfg.ReconnectDelay):
		}
	}
}

func (f *BinanceFeed) stream(ctx context.Context, handler TickHandler) error {
	streamURL := fmt.Sprintf("%s/ws/%s@trade", f.cfg.WSBaseURL, strings.ToLower(f.symbol))

	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
		Proxy:            http.ProxyFromEnvironment,
	}

	conn, _, err := dialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial failed: %w", err)
	}
	defer conn.Close()

	f.log.WithField("url", streamURL).Info("Price stream connected")

	// unblock ReadMessage when the context goes away
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("ws read failed: %w", err)
		}

		price, err := parseTradePrice(msg)
		if err != nil {
			f.log.WithError(err).Debug("Skipping unparseable stream message")
			continue
		}

		handler(price)
	}
}

func parseTradePrice(msg []byte) (decimal.Decimal, error) {
	var ev tradeEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return decimal.Zero, err
	}
	if ev.Price == "" {
		return decimal.Zero, fmt.Errorf("message carries no price")
	}
	return decimal.NewFromString(ev.Price)
}
