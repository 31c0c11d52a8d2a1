// Package types provides the shared domain types for the trading engine.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Regime is a discrete label summarizing short-term market directionality
// and volatility, derived from index price deltas.
type Regime string

const (
	RegimeBullTrending Regime = "Bull Trending"
	RegimeBearTrending Regime = "Bear Trending"
	RegimeSideways     Regime = "Sideways"
	RegimeVolatile     Regime = "Volatile"
	RegimeUnknown      Regime = "Unknown"
)

// VolatilityLevel classifies the magnitude of index moves.
type VolatilityLevel string

const (
	VolatilityLow     VolatilityLevel = "Low"
	VolatilityMedium  VolatilityLevel = "Medium"
	VolatilityHigh    VolatilityLevel = "High"
	VolatilityUnknown VolatilityLevel = "Unknown"
)

// Quote is a point-in-time index quote. Quotes are produced fresh each
// cycle and never persisted directly.
type Quote struct {
	InstrumentKey string          `json:"instrument_key"`
	LastPrice     decimal.Decimal `json:"last_price"`
	NetChange     float64         `json:"net_change"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Position is an open broker position, used for reporting only.
type Position struct {
	TradingSymbol string          `json:"trading_symbol"`
	Exchange      string          `json:"exchange"`
	Quantity      int64           `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	PnL           decimal.Decimal `json:"pnl"`
}

// RegimeAnalysis is the classifier's verdict for one cycle. It is created
// once per cycle and immutable after creation.
type RegimeAnalysis struct {
	Regime          Regime          `json:"regime"`
	Confidence      float64         `json:"confidence"`
	Volatility      VolatilityLevel `json:"volatility_regime"`
	TrendStrength   float64         `json:"trend_strength"`
	PrimaryChange   float64         `json:"primary_change"`
	SecondaryChange float64         `json:"secondary_change"`
	AnalyzedAt      time.Time       `json:"analyzed_at"`
}

// StrategyRecommendation is the selector's output, derived
// deterministically from a RegimeAnalysis.
type StrategyRecommendation struct {
	Strategy   string          `json:"strategy"`
	Confidence float64         `json:"confidence"`
	Rationale  string          `json:"rationale"`
	Regime     Regime          `json:"regime"`
	Volatility VolatilityLevel `json:"volatility_regime"`
}

// TradeStatus is the lifecycle state of a trade record.
type TradeStatus string

const (
	TradeStatusOpen    TradeStatus = "OPEN"
	TradeStatusClosed  TradeStatus = "CLOSED"
	TradeStatusPartial TradeStatus = "PARTIAL"
)

// TradeRecord is a simulated (or tagged-live) options trade.
type TradeRecord struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Strategy   string          `json:"strategy"`
	EntryTime  time.Time       `json:"entry_time"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Quantity   int             `json:"quantity"`
	TradeType  string          `json:"trade_type"`
	OrderType  string          `json:"order_type"`
	Category   string          `json:"trade_category"`
	Paper      bool            `json:"paper_trade"`
	Status     TradeStatus     `json:"status"`
	Notes      string          `json:"notes"`
}

// CycleStatus is the top-level outcome of one orchestrator invocation.
type CycleStatus string

const (
	CycleSuccess  CycleStatus = "success"
	CycleError    CycleStatus = "error"
	CycleSkipped  CycleStatus = "skipped"
	CycleFallback CycleStatus = "fallback"
)

// TradingMode distinguishes how trades are tagged.
type TradingMode string

const (
	ModePaper      TradingMode = "paper"
	ModeLive       TradingMode = "live"
	ModeSimulation TradingMode = "simulation"
)

// CycleResult is the externally visible contract of a full trading cycle.
type CycleResult struct {
	ExecutionID        string          `json:"execution_id"`
	Status             CycleStatus     `json:"status"`
	Reason             string          `json:"reason,omitempty"`
	Error              string          `json:"error,omitempty"`
	Mode               TradingMode     `json:"mode"`
	Regime             Regime          `json:"market_regime"`
	RegimeConfidence   float64         `json:"regime_confidence"`
	Volatility         VolatilityLevel `json:"volatility_regime"`
	TrendStrength      float64         `json:"trend_strength"`
	Strategy           string          `json:"strategy,omitempty"`
	StrategyConfidence float64         `json:"strategy_confidence,omitempty"`
	SignalsGenerated   int             `json:"signals_generated"`
	TradesSimulated    int             `json:"trades_simulated"`
	StartedAt          time.Time       `json:"started_at"`
	CompletedAt        time.Time       `json:"completed_at"`
}

// Action selects what a trigger invocation should do.
type Action string

const (
	ActionTrading     Action = "trading"
	ActionAnalysis    Action = "analysis"
	ActionHealthCheck Action = "health_check"
)

// TriggerRequest is the payload delivered by the invoking scheduler.
type TriggerRequest struct {
	Action   Action `json:"action"`
	ForceRun bool   `json:"force_run"`
}

// HealthReport describes collaborator availability and gate state without
// running any decision component.
type HealthReport struct {
	Status            string      `json:"status"`
	Timestamp         time.Time   `json:"timestamp"`
	MarketOpen        bool        `json:"market_hours"`
	BrokerConnected   bool        `json:"broker_connected"`
	DatabaseConnected bool        `json:"database_connected"`
	NotifierReady     bool        `json:"notifier_ready"`
	Mode              TradingMode `json:"mode"`
}
