// Package main provides the entry point for the trading engine server.
// It wires the cycle engine out of whatever collaborators the
// configuration provides; anything missing degrades the engine instead
// of preventing startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/indexflow/trading-engine/internal/api"
	"github.com/indexflow/trading-engine/internal/execution"
	"github.com/indexflow/trading-engine/internal/marketdata"
	"github.com/indexflow/trading-engine/internal/metrics"
	"github.com/indexflow/trading-engine/internal/notify"
	"github.com/indexflow/trading-engine/internal/orchestrator"
	"github.com/indexflow/trading-engine/internal/regime"
	"github.com/indexflow/trading-engine/internal/scheduler"
	"github.com/indexflow/trading-engine/internal/store"
	"github.com/indexflow/trading-engine/internal/strategy"
	"github.com/indexflow/trading-engine/pkg/config"
	"github.com/indexflow/trading-engine/pkg/types"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Config file path (YAML)")
	host := flag.String("host", "", "Server host (overrides config)")
	port := flag.Int("port", 0, "Server port (overrides config)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	paperTrading := flag.Bool("paper", true, "Enable paper trading mode")
	flag.Parse()

	// Setup logger
	logger := setupLogger(*logLevel)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if !*paperTrading {
		cfg.Trading.Paper = false
	}

	logger.Info("Starting IndexFlow Trading Engine",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("paperTrading", cfg.Trading.Paper),
	)

	// Market data: broker-backed when configured, static otherwise.
	var provider marketdata.Provider
	if cfg.MarketData.BaseURL != "" {
		provider = marketdata.NewRestProvider(logger, marketdata.RestConfig{
			BaseURL:     cfg.MarketData.BaseURL,
			APIKey:      cfg.MarketData.APIKey,
			AccessToken: cfg.MarketData.AccessToken,
			Timeout:     cfg.MarketData.Timeout,
		})
	} else {
		logger.Warn("No broker configured, serving static reference quotes")
		provider = marketdata.NewStaticProvider(referenceQuotes(cfg.MarketData))
	}

	// Persistence sink by driver. A nil sink degrades the engine to
	// no-op writes rather than failing.
	var sink store.Sink
	switch cfg.Database.Driver {
	case "sqlite":
		sink, err = store.NewSQLiteSink(logger, cfg.Database.SQLitePath)
		if err != nil {
			logger.Error("SQLite sink unavailable, persistence disabled", zap.Error(err))
			sink = nil
		}
	case "rest":
		sink = store.NewRestSink(logger, cfg.Database.RestURL, cfg.Database.RestKey)
	}
	if sink != nil {
		defer sink.Close()
	}

	var notifier notify.Notifier
	switch cfg.Notifier.Transport {
	case "webhook":
		notifier = notify.NewWebhookNotifier(logger, cfg.Notifier.WebhookURL)
	case "telegram":
		notifier = notify.NewTelegramNotifier(logger, cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatID)
	default:
		notifier = notify.NewConsoleNotifier(logger)
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.New(registry)

	mode := types.ModePaper
	if !cfg.Trading.Paper {
		mode = types.ModeLive
	}

	simCfg := execution.DefaultConfig()
	simCfg.LotSize = cfg.Trading.LotSize
	simCfg.ConfidenceThreshold = cfg.Trading.ExecutionThreshold
	simCfg.PrimaryInstrument = cfg.MarketData.PrimaryInstrument
	simCfg.Paper = cfg.Trading.Paper

	engineCfg := orchestrator.DefaultConfig()
	engineCfg.Instruments = cfg.MarketData.Instruments
	engineCfg.PrimaryInstrument = cfg.MarketData.PrimaryInstrument
	engineCfg.SecondaryInstrument = cfg.MarketData.SecondaryInstrument
	engineCfg.ExecutionThreshold = cfg.Trading.ExecutionThreshold
	engineCfg.Mode = mode

	engine := orchestrator.NewEngine(logger, engineCfg, orchestrator.Deps{
		Provider:   provider,
		Classifier: regime.NewClassifier(logger, regime.DefaultConfig()),
		Selector:   strategy.NewSelector(logger, strategy.DefaultConfig()),
		Simulator:  execution.NewSimulator(logger, simCfg, sink),
		Sink:       sink,
		Notifier:   notifier,
		Metrics:    recorder,
	})

	server := api.NewServer(logger, &cfg.Server, engine, registry)

	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		sched = scheduler.New(logger, cfg.Schedule.CronSpec, engine)
		if err := sched.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully",
		zap.String("http", fmt.Sprintf("http://%s:%d/api/v1", cfg.Server.Host, cfg.Server.Port)),
		zap.String("ws", fmt.Sprintf("ws://%s:%d%s", cfg.Server.Host, cfg.Server.Port, cfg.Server.WebSocketPath)),
		zap.Bool("scheduler", cfg.Schedule.Enabled),
	)

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received")

	if sched != nil {
		sched.Stop()
	}

	// Graceful server shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// referenceQuotes seeds the static provider with the calibration
// snapshot used when no broker is configured.
func referenceQuotes(cfg types.MarketDataConfig) map[string]types.Quote {
	now := time.Now()
	return map[string]types.Quote{
		cfg.PrimaryInstrument: {
			InstrumentKey: cfg.PrimaryInstrument,
			LastPrice:     decimal.NewFromInt(24500),
			NetChange:     25,
			Timestamp:     now,
		},
		cfg.SecondaryInstrument: {
			InstrumentKey: cfg.SecondaryInstrument,
			LastPrice:     decimal.NewFromInt(52000),
			NetChange:     150,
			Timestamp:     now,
		},
	}
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return logger
}
