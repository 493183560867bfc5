package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"submarine/cmd/replay"
	"submarine/cmd/trader"
	"submarine/src/database"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	app := cli.NewApp()
	app.Name = "SubMarine CMD"
	app.Usage = "The SubMarine command line interface"

	app.Commands = []cli.Command{
		traderCMD,
		replayCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	traderCMD = cli.Command{
		Name:        "trader",
		Usage:       "run Trader",
		Action:      traderAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run Trader CMD`,
	}
	replayCMD = cli.Command{
		Name:        "replay",
		Usage:       "run Replay",
		Action:      replayAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run Replay CMD`,
	}
)

func traderAction(_ *cli.Context) error {

	logger.Info("Starting trader CMD")

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	t := &trader.Trader{
		Log: logger.WithField("cmd", "trader"),
	}
	err := t.Start()
	if err != nil {
		logger.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

// replayAction streams historical candles through a fresh engine and logs
// the resulting statistics.
func replayAction(_ *cli.Context) error {

	logger.Info("Starting replay CMD")

	r := &replay.Replay{
		Log: logger.WithField("cmd", "replay"),
	}
	err := r.Start()
	if err != nil {
		logger.WithError(err).Error("Starting replay cmd")
		return err
	}

	return nil
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
