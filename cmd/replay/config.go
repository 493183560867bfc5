package replay

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	StartDt     time.Time     `envconfig:"START_DATE" default:"2026-01-01T00:00:00Z"`
	EndDt       time.Time     `envconfig:"END_DATE" default:"2026-02-01T00:00:00Z"`
	DurationStr string        `envconfig:"DURATION" default:"1m"`
	Symbol      string        `envconfig:"SYMBOL" default:"BTC"`
	Quote       string        `envconfig:"QUOTE" default:"USDT"`
	Limit       int           `envconfig:"LIMIT" default:"1000"`
	TickDelay   time.Duration `envconfig:"TICK_DELAY" default:"0s"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
