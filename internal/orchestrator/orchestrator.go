// Package orchestrator composes the calendar gate, market data provider,
// regime classifier, strategy selector and execution simulator into one
// end-to-end trading cycle. The central contract is failure tolerance:
// every external collaborator is optional at every step, and the absence
// of a collaborator turns the corresponding side effect into a no-op. The
// single exception is market data during analysis, without which no
// regime can be classified.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/internal/calendar"
	"github.com/indexflow/trading-engine/internal/marketdata"
	"github.com/indexflow/trading-engine/internal/metrics"
	"github.com/indexflow/trading-engine/internal/notify"
	"github.com/indexflow/trading-engine/internal/store"
	"github.com/indexflow/trading-engine/pkg/types"
	"github.com/indexflow/trading-engine/pkg/utils"
)

// Classifier produces a regime analysis from quotes. Total; never fails.
type Classifier interface {
	Classify(quotes map[string]types.Quote) types.RegimeAnalysis
}

// Selector maps an analysis to a recommendation. Total; never fails.
type Selector interface {
	Select(analysis types.RegimeAnalysis) types.StrategyRecommendation
}

// Simulator produces at most one trade per cycle.
type Simulator interface {
	Simulate(ctx context.Context, rec types.StrategyRecommendation, quotes map[string]types.Quote) *types.TradeRecord
}

// Config configures the cycle engine.
type Config struct {
	Instruments         []string
	PrimaryInstrument   string
	SecondaryInstrument string
	ExecutionThreshold  float64
	Mode                types.TradingMode
}

// DefaultConfig returns the production cycle settings.
func DefaultConfig() Config {
	return Config{
		Instruments:         []string{"NSE:NIFTY 50", "NSE:NIFTY BANK", "NSE:NIFTY FIN SERVICE"},
		PrimaryInstrument:   "NSE:NIFTY 50",
		SecondaryInstrument: "NSE:NIFTY BANK",
		ExecutionThreshold:  0.6,
		Mode:                types.ModePaper,
	}
}

// Deps are the engine's collaborators. Provider, Classifier, Selector and
// Simulator are required; Sink and Notifier may be nil and degrade to
// no-op and console respectively.
type Deps struct {
	Provider   marketdata.Provider
	Classifier Classifier
	Selector   Selector
	Simulator  Simulator
	Sink       store.Sink
	Notifier   notify.Notifier
	Metrics    *metrics.Recorder
}

// Engine runs trading cycles. It is a process-lifetime singleton: the
// collaborators are reused across invocations, and a mutex ensures only
// one cycle executes at a time.
type Engine struct {
	logger *zap.Logger
	config Config

	provider   marketdata.Provider
	classifier Classifier
	selector   Selector
	simulator  Simulator
	sink       store.Sink
	notifier   notify.Notifier
	metrics    *metrics.Recorder

	// Capability flags from Init; reported by health checks only.
	sinkAvailable     bool
	notifierAvailable bool

	mu  sync.Mutex
	now func() time.Time
}

// NewEngine wires the engine. Missing optional collaborators degrade
// capability rather than failing construction.
func NewEngine(logger *zap.Logger, config Config, deps Deps) *Engine {
	sink := deps.Sink
	sinkAvailable := sink != nil
	if sink == nil {
		sink = store.NewNoopSink()
	}
	notifier := deps.Notifier
	notifierAvailable := notifier != nil
	if notifier == nil {
		notifier = notify.NewConsoleNotifier(logger)
	}
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.New(nil)
	}

	e := &Engine{
		logger:            logger.Named("orchestrator"),
		config:            config,
		provider:          deps.Provider,
		classifier:        deps.Classifier,
		selector:          deps.Selector,
		simulator:         deps.Simulator,
		sink:              sink,
		notifier:          notifier,
		metrics:           rec,
		sinkAvailable:     sinkAvailable,
		notifierAvailable: notifierAvailable,
		now:               time.Now,
	}

	e.metrics.SetCollaborator("database", sinkAvailable)
	e.metrics.SetCollaborator("notifier", notifierAvailable)
	e.metrics.SetCollaborator("broker", deps.Provider != nil)

	if !sinkAvailable {
		e.logger.Warn("No persistence sink configured, writes disabled")
	}
	return e
}

// WithClock overrides the engine clock, used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// RunCycle executes one complete trading cycle and always returns a
// well-formed CycleResult; no fault, including a panic in a step,
// escapes to the caller.
func (e *Engine) RunCycle(ctx context.Context, trigger types.TriggerRequest) (result types.CycleResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := e.now()
	result = types.CycleResult{
		ExecutionID: uuid.NewString(),
		Mode:        e.config.Mode,
		Regime:      types.RegimeUnknown,
		Volatility:  types.VolatilityUnknown,
		StartedAt:   started,
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Cycle panicked", zap.Any("panic", r))
			result.Status = types.CycleError
			result.Error = fmt.Sprintf("cycle panic: %v", r)
		}
		result.CompletedAt = e.now()
		e.metrics.CycleFinished(string(result.Status), result.CompletedAt.Sub(started).Seconds())
		e.logger.Info("Cycle finished",
			zap.String("executionId", result.ExecutionID),
			zap.String("status", string(result.Status)),
			zap.String("regime", string(result.Regime)),
			zap.Int("signals", result.SignalsGenerated),
			zap.Int("trades", result.TradesSimulated),
		)
	}()

	// GateCheck. A skipped cycle makes no downstream calls: no quotes,
	// no writes, no notification.
	if !calendar.IsTradableWindow(started, trigger.ForceRun) {
		e.logger.Info("Outside trading window, cycle skipped")
		result.Status = types.CycleSkipped
		result.Reason = "outside_market_hours"
		return result
	}

	// Analyzing: the one step where collaborator failure is terminal.
	quotes, err := e.provider.GetQuotes(ctx, e.config.Instruments)
	if err != nil {
		e.logger.Error("Market data unavailable, cycle aborted", zap.Error(err))
		result.Status = types.CycleError
		result.Error = fmt.Sprintf("market data unavailable: %v", err)
		e.bestEffortNotify(ctx, fmt.Sprintf("Trading cycle error: %s", result.Error))
		return result
	}

	analysis := e.classifier.Classify(quotes)
	result.Regime = analysis.Regime
	result.RegimeConfidence = analysis.Confidence
	result.Volatility = analysis.Volatility
	result.TrendStrength = analysis.TrendStrength
	e.metrics.SetRegime(string(analysis.Regime))
	e.persistIntelligence(ctx, analysis)

	// Selecting: total, always succeeds.
	rec := e.selector.Select(analysis)
	result.Strategy = rec.Strategy
	result.StrategyConfidence = rec.Confidence

	// Executing.
	var trade *types.TradeRecord
	if rec.Confidence >= e.config.ExecutionThreshold {
		result.SignalsGenerated = 1
		e.metrics.SignalGenerated()
		e.persistSignal(ctx, rec, quotes)

		trade = e.simulator.Simulate(ctx, rec, quotes)
		if trade != nil {
			result.TradesSimulated = 1
			e.metrics.TradeSimulated()
		}
	}

	// Notifying.
	e.bestEffortNotify(ctx, e.summary(analysis, rec, quotes, trade))

	result.Status = types.CycleSuccess
	return result
}

// HealthCheck reports gate state and collaborator availability. It never
// touches the classifier, selector or simulator and writes nothing.
func (e *Engine) HealthCheck(_ context.Context) types.HealthReport {
	return types.HealthReport{
		Status:            "healthy",
		Timestamp:         e.now(),
		MarketOpen:        calendar.IsTradableWindow(e.now(), false),
		BrokerConnected:   e.provider != nil,
		DatabaseConnected: e.sinkAvailable,
		NotifierReady:     e.notifierAvailable,
		Mode:              e.config.Mode,
	}
}

// persistIntelligence stores the regime analysis as market intelligence.
// Best-effort: failure is logged and the cycle proceeds.
func (e *Engine) persistIntelligence(ctx context.Context, analysis types.RegimeAnalysis) {
	row := store.Record{
		"source":          "trading_engine",
		"content_type":    "regime_analysis",
		"title":           fmt.Sprintf("Market Analysis - %s", e.now().In(calendar.IST).Format("2006-01-02 15:04:05")),
		"content":         fmt.Sprintf("Market Regime: %s", analysis.Regime),
		"sentiment_score": analysis.Confidence,
		"symbols":         []string{"NIFTY", "BANKNIFTY"},
		"extracted_data": map[string]interface{}{
			"regime":            string(analysis.Regime),
			"confidence":        analysis.Confidence,
			"volatility_regime": string(analysis.Volatility),
			"trend_strength":    analysis.TrendStrength,
		},
	}
	if err := e.sink.Insert(ctx, store.TableIntelligence, row); err != nil {
		e.logger.Warn("Intelligence persistence failed, continuing", zap.Error(err))
	}
}

// persistSignal stores an above-threshold recommendation. Best-effort.
func (e *Engine) persistSignal(ctx context.Context, rec types.StrategyRecommendation, quotes map[string]types.Quote) {
	row := store.Record{
		"id":          utils.GenerateSignalID(),
		"source":      "trading_engine",
		"symbol":      "NIFTY",
		"signal_type": rec.Strategy,
		"strategy":    rec.Strategy,
		"confidence":  rec.Confidence,
		"metadata": map[string]interface{}{
			"market_regime":      string(rec.Regime),
			"volatility":         string(rec.Volatility),
			"strategy_rationale": rec.Rationale,
		},
	}
	if q, ok := quotes[e.config.PrimaryInstrument]; ok {
		row["entry_price"] = q.LastPrice.String()
	}
	if err := e.sink.Insert(ctx, store.TableSignals, row); err != nil {
		e.logger.Warn("Signal persistence failed, continuing", zap.Error(err))
	}
}

func (e *Engine) bestEffortNotify(ctx context.Context, text string) {
	if err := e.notifier.Send(ctx, text); err != nil {
		e.logger.Warn("Notification failed, continuing", zap.Error(err))
	}
}

// summary renders the human-readable cycle report sent to the notifier.
func (e *Engine) summary(analysis types.RegimeAnalysis, rec types.StrategyRecommendation, quotes map[string]types.Quote, trade *types.TradeRecord) string {
	tradeLine := "none"
	if trade != nil {
		tag := "live"
		if trade.Paper {
			tag = "paper"
		}
		tradeLine = fmt.Sprintf("%s x%d (%s)", trade.Strategy, trade.Quantity, tag)
	}

	primary := quotes[e.config.PrimaryInstrument]
	secondary := quotes[e.config.SecondaryInstrument]

	return fmt.Sprintf(
		"Trading Cycle Report\n"+
			"Regime: %s (%.0f%% confidence, %s volatility)\n"+
			"Strategy: %s (%.0f%%) - %s\n"+
			"Nifty: %s (%+.1f) | Bank Nifty: %s (%+.1f)\n"+
			"Trade: %s\n"+
			"Time: %s IST",
		analysis.Regime, analysis.Confidence*100, analysis.Volatility,
		rec.Strategy, rec.Confidence*100, rec.Rationale,
		primary.LastPrice, primary.NetChange, secondary.LastPrice, secondary.NetChange,
		tradeLine,
		e.now().In(calendar.IST).Format("2006-01-02 15:04:05"),
	)
}
