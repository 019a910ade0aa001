package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/alphaflow-lab/alphaflow/internal/backtest"
	"github.com/alphaflow-lab/alphaflow/internal/config"
	"github.com/alphaflow-lab/alphaflow/internal/datasource"
	"github.com/alphaflow-lab/alphaflow/internal/logger"
	"github.com/alphaflow-lab/alphaflow/internal/server"
	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/internal/version"
)

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}

	return config.LoadConfig(path)
}

// serveAction starts the HTTP API server and blocks until interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if listen := cmd.String("listen"); listen != "" {
		cfg.Server.ListenAddr = listen
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	engine := backtest.NewEngine(backtest.EngineConfig{
		Logger:         log,
		PeriodsPerYear: cfg.Backtest.PeriodsPerYear,
		RiskFreeRate:   cfg.Backtest.RiskFreeRate,
	})

	srv := server.NewServer(log, engine, cfg.Server)
	if err := srv.Start(cfg.Server.ListenAddr); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

// backtestAction runs a single strategy file against a CSV series and prints
// the performance summary.
func backtestAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	series, err := datasource.LoadCSVFile(cmd.String("data"))
	if err != nil {
		return err
	}

	strategyData, err := os.ReadFile(cmd.String("strategy"))
	if err != nil {
		return fmt.Errorf("failed to read strategy file: %w", err)
	}

	var request backtest.StrategyRequest
	if err := yaml.Unmarshal(strategyData, &request); err != nil {
		return fmt.Errorf("failed to parse strategy file: %w", err)
	}

	engine := backtest.NewEngine(backtest.EngineConfig{
		PeriodsPerYear: cfg.Backtest.PeriodsPerYear,
		RiskFreeRate:   cfg.Backtest.RiskFreeRate,
	})

	result, err := engine.Run(series, request)
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		if err := types.WriteSummary(output, result.Summary); err != nil {
			return err
		}
	}

	summaryYAML, err := yaml.Marshal(result.Summary)
	if err != nil {
		return err
	}

	fmt.Print(string(summaryYAML))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "alphaflow",
		Usage:   "Rule-based strategy backtesting engine",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the backtest HTTP API server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML configuration file",
					},
					&cli.StringFlag{
						Name:    "listen",
						Aliases: []string{"l"},
						Usage:   "Listen address, overrides the configured one",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "backtest",
				Usage: "Run a strategy file against a CSV price series",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to an OHLCV CSV file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "strategy",
						Aliases:  []string{"s"},
						Usage:    "Path to a YAML strategy file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML configuration file",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the summary to this YAML file",
					},
				},
				Action: backtestAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
