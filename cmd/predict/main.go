// Command predict runs the satisfaction and price forms in the terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"airpredict/config"
	"airpredict/logging"
	"airpredict/predict"
)

var CLI struct {
	Config string `help:"Config file path." type:"path" default:"config.yaml"`
	Debug  bool   `help:"Log to stderr as well as the log file."`

	Satisfaction SatisfactionCmd `cmd:"" help:"Predict whether a passenger was satisfied."`
	Price        PriceCmd        `cmd:"" help:"Predict a flight ticket price."`
	Artifacts    ArtifactsCmd    `cmd:"" help:"Load every model artifact and print its digest."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("predict"),
		kong.Description("Passenger satisfaction and flight price predictions"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fail(err)
	}
	logCfg := logging.FromConfig(cfg)
	logCfg.Quiet = !CLI.Debug
	logger, err := logging.New(logCfg)
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	pipelines, artifacts, err := predict.Bootstrap(cfg.Models, logger)
	if err != nil {
		logger.Error("failed to load models", zap.Error(err))
		fail(err)
	}

	appCtx := &Context{
		Pipelines: pipelines,
		Artifacts: artifacts.Files,
		Out:       os.Stdout,
		Location:  time.UTC,
	}
	if err := ctx.Run(appCtx); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, renderError(err))
	os.Exit(1)
}
