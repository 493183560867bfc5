package engine

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AccountID             string `envconfig:"ACCOUNT_ID" default:"default"`
	TargetSymbol          string `envconfig:"TARGET_SYMBOL" default:"BTCUSDT"`
	StartBalance          string `envconfig:"START_BALANCE" default:"10000"`
	MaintenanceMarginRate string `envconfig:"MAINTENANCE_MARGIN_RATE" default:"0.005"`
	DefaultLeverage       int    `envconfig:"DEFAULT_LEVERAGE" default:"10"`
	DefaultMarginMode     string `envconfig:"DEFAULT_MARGIN_MODE" default:"ISOLATED"`
	ConfirmationsEnabled  bool   `envconfig:"CONFIRMATIONS_ENABLED" default:"true"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
