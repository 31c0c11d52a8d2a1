// Package types provides configuration types for the trading engine.
package types

import "time"

// AppConfig is the root configuration for the trading engine process.
type AppConfig struct {
	Server     ServerConfig     `mapstructure:"server"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Trading    TradingConfig    `mapstructure:"trading"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
}

// ServerConfig configures the HTTP/WebSocket trigger surface.
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	WebSocketPath string        `mapstructure:"websocket_path"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
}

// MarketDataConfig configures the broker quote client.
type MarketDataConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	AccessToken         string        `mapstructure:"access_token"`
	PrimaryInstrument   string        `mapstructure:"primary_instrument"`
	SecondaryInstrument string        `mapstructure:"secondary_instrument"`
	Instruments         []string      `mapstructure:"instruments"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig selects and configures the persistence sink. Driver is
// one of "sqlite", "rest" or "none".
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	RestURL    string `mapstructure:"rest_url"`
	RestKey    string `mapstructure:"rest_key"`
}

// NotifierConfig selects and configures the outbound message transport.
// Transport is one of "console", "webhook" or "telegram".
type NotifierConfig struct {
	Transport      string `mapstructure:"transport"`
	WebhookURL     string `mapstructure:"webhook_url"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID string `mapstructure:"telegram_chat_id"`
}

// TradingConfig holds the decision-engine constants. The threshold and
// multiplier values are deliberate carry-overs from the calibrated system;
// they are configuration, not derived quantities.
type TradingConfig struct {
	Paper              bool    `mapstructure:"paper"`
	Capital            float64 `mapstructure:"capital"`
	LotSize            int     `mapstructure:"lot_size"`
	ExecutionThreshold float64 `mapstructure:"execution_threshold"`
}

// ScheduleConfig configures the in-process cron trigger.
type ScheduleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
}
