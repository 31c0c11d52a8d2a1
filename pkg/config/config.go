// Package config loads engine configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/indexflow/trading-engine/pkg/types"
)

// Load reads configuration from an optional YAML file, applies
// INDEXFLOW_* environment overrides and fills in defaults. A missing file
// is not an error; the defaults describe a fully degraded but runnable
// engine (static quotes, no sink, console notifier).
func Load(path string) (*types.AppConfig, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("INDEXFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &types.AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.websocket_path", "/ws")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.enable_metrics", true)

	v.SetDefault("market_data.primary_instrument", "NSE:NIFTY 50")
	v.SetDefault("market_data.secondary_instrument", "NSE:NIFTY BANK")
	v.SetDefault("market_data.instruments", []string{
		"NSE:NIFTY 50", "NSE:NIFTY BANK", "NSE:NIFTY FIN SERVICE",
	})
	v.SetDefault("market_data.timeout", 10*time.Second)

	v.SetDefault("database.driver", "none")
	v.SetDefault("database.sqlite_path", "data/trading.db")

	v.SetDefault("notifier.transport", "console")

	v.SetDefault("trading.paper", true)
	v.SetDefault("trading.capital", 1000000)
	v.SetDefault("trading.lot_size", 50)
	v.SetDefault("trading.execution_threshold", 0.6)

	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.cron_spec", "*/15 9-15 * * 1-5")
}

func validate(cfg *types.AppConfig) error {
	switch cfg.Database.Driver {
	case "sqlite", "rest", "none":
	default:
		return fmt.Errorf("database.driver must be sqlite, rest or none, got %q", cfg.Database.Driver)
	}
	switch cfg.Notifier.Transport {
	case "console", "webhook", "telegram":
	default:
		return fmt.Errorf("notifier.transport must be console, webhook or telegram, got %q", cfg.Notifier.Transport)
	}
	if cfg.Trading.ExecutionThreshold < 0 || cfg.Trading.ExecutionThreshold > 1 {
		return fmt.Errorf("trading.execution_threshold must be in [0,1], got %v", cfg.Trading.ExecutionThreshold)
	}
	if cfg.Trading.LotSize <= 0 {
		return fmt.Errorf("trading.lot_size must be positive, got %d", cfg.Trading.LotSize)
	}
	return nil
}
