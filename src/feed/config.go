package feed

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	WSBaseURL      string        `envconfig:"FEED_WS_URL" default:"wss://stream.binance.com:9443"`
	RestBaseURL    string        `envconfig:"FEED_REST_URL" default:"https://api.binance.com"`
	ReconnectDelay time.Duration `envconfig:"FEED_RECONNECT_DELAY" default:"5s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
