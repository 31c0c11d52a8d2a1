// Package orchestrator_test provides end-to-end tests for the cycle
// engine, exercising the degraded-mode policy with counting fakes.
package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/internal/calendar"
	"github.com/indexflow/trading-engine/internal/execution"
	"github.com/indexflow/trading-engine/internal/marketdata"
	"github.com/indexflow/trading-engine/internal/metrics"
	"github.com/indexflow/trading-engine/internal/orchestrator"
	"github.com/indexflow/trading-engine/internal/regime"
	"github.com/indexflow/trading-engine/internal/store"
	"github.com/indexflow/trading-engine/internal/strategy"
	"github.com/indexflow/trading-engine/pkg/types"
)

type failingProvider struct {
	calls int
}

func (p *failingProvider) GetQuotes(context.Context, []string) (map[string]types.Quote, error) {
	p.calls++
	return nil, errors.New("connect: connection refused")
}
func (p *failingProvider) GetPositions(context.Context) ([]types.Position, error) {
	return nil, errors.New("connect: connection refused")
}
func (p *failingProvider) Name() string { return "failing" }

type countingClassifier struct {
	inner *regime.Classifier
	calls int
}

func (c *countingClassifier) Classify(quotes map[string]types.Quote) types.RegimeAnalysis {
	c.calls++
	return c.inner.Classify(quotes)
}

type panickingClassifier struct{}

func (panickingClassifier) Classify(map[string]types.Quote) types.RegimeAnalysis {
	panic("index out of range")
}

type recordingSink struct {
	inserts map[string]int
	fail    bool
}

func newRecordingSink(fail bool) *recordingSink {
	return &recordingSink{inserts: make(map[string]int), fail: fail}
}

func (s *recordingSink) Insert(_ context.Context, table string, _ store.Record) error {
	s.inserts[table]++
	if s.fail {
		return errors.New("sink unavailable")
	}
	return nil
}
func (s *recordingSink) Name() string { return "recording" }
func (s *recordingSink) Close() error { return nil }

type recordingNotifier struct {
	messages []string
	fail     bool
}

func (n *recordingNotifier) Send(_ context.Context, text string) error {
	n.messages = append(n.messages, text)
	if n.fail {
		return errors.New("notifier unavailable")
	}
	return nil
}
func (n *recordingNotifier) Name() string { return "recording" }

func bullQuotes() map[string]types.Quote {
	return map[string]types.Quote{
		"NSE:NIFTY 50": {
			InstrumentKey: "NSE:NIFTY 50",
			LastPrice:     decimal.NewFromInt(24500),
			NetChange:     60,
		},
		"NSE:NIFTY BANK": {
			InstrumentKey: "NSE:NIFTY BANK",
			LastPrice:     decimal.NewFromInt(52000),
			NetChange:     150,
		},
	}
}

type engineOpts struct {
	provider   marketdata.Provider
	classifier orchestrator.Classifier
	sink       store.Sink
	notifier   *recordingNotifier
	paper      bool
}

func newEngine(t *testing.T, opts engineOpts) (*orchestrator.Engine, *recordingNotifier) {
	t.Helper()
	logger := zap.NewNop()

	if opts.classifier == nil {
		opts.classifier = regime.NewClassifier(logger, regime.DefaultConfig())
	}
	if opts.notifier == nil {
		opts.notifier = &recordingNotifier{}
	}

	simCfg := execution.DefaultConfig()
	simCfg.Paper = opts.paper
	var sinkForSim store.Sink = store.NewNoopSink()
	if opts.sink != nil {
		sinkForSim = opts.sink
	}

	engine := orchestrator.NewEngine(logger, orchestrator.DefaultConfig(), orchestrator.Deps{
		Provider:   opts.provider,
		Classifier: opts.classifier,
		Selector:   strategy.NewSelector(logger, strategy.DefaultConfig()),
		Simulator:  execution.NewSimulator(logger, simCfg, sinkForSim),
		Sink:       opts.sink,
		Notifier:   opts.notifier,
		Metrics:    metrics.New(prometheus.NewRegistry()),
	})
	return engine, opts.notifier
}

func tradingTrigger(force bool) types.TriggerRequest {
	return types.TriggerRequest{Action: types.ActionTrading, ForceRun: force}
}

// Scenario A: bull quotes with force_run produce a full successful cycle.
func TestCycleBullTrendingSuccess(t *testing.T) {
	provider := marketdata.NewStaticProvider(bullQuotes())
	sink := newRecordingSink(false)
	engine, notifier := newEngine(t, engineOpts{provider: provider, sink: sink, paper: true})

	result := engine.RunCycle(context.Background(), tradingTrigger(true))

	if result.Status != types.CycleSuccess {
		t.Fatalf("status = %s (%s), want success", result.Status, result.Error)
	}
	if result.Regime != types.RegimeBullTrending || result.RegimeConfidence != 0.8 {
		t.Errorf("regime = %s/%v, want Bull Trending/0.8", result.Regime, result.RegimeConfidence)
	}
	if result.Strategy != "Bull Call Spread" {
		t.Errorf("strategy = %q, want Bull Call Spread", result.Strategy)
	}
	if got, want := result.StrategyConfidence, 0.8*0.9; got != want {
		t.Errorf("strategy confidence = %v, want %v", got, want)
	}
	if result.SignalsGenerated != 1 || result.TradesSimulated != 1 {
		t.Errorf("counts = %d signals / %d trades, want 1/1", result.SignalsGenerated, result.TradesSimulated)
	}
	if result.ExecutionID == "" {
		t.Error("execution ID missing")
	}

	// One row per table: intelligence, signal, trade.
	for _, table := range []string{store.TableIntelligence, store.TableSignals, store.TableTrades} {
		if sink.inserts[table] != 1 {
			t.Errorf("%s inserts = %d, want 1", table, sink.inserts[table])
		}
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "Bull Trending") {
		t.Errorf("notifier messages = %v", notifier.messages)
	}
}

// Scenario B: provider connectivity failure is terminal but still notifies.
func TestCycleMarketDataFailure(t *testing.T) {
	provider := &failingProvider{}
	sink := newRecordingSink(false)
	engine, notifier := newEngine(t, engineOpts{provider: provider, sink: sink})

	result := engine.RunCycle(context.Background(), tradingTrigger(true))

	if result.Status != types.CycleError {
		t.Fatalf("status = %s, want error", result.Status)
	}
	if !strings.Contains(result.Error, "market data unavailable") {
		t.Errorf("error = %q", result.Error)
	}
	if result.TradesSimulated != 0 {
		t.Errorf("trades = %d, want 0", result.TradesSimulated)
	}
	if len(sink.inserts) != 0 {
		t.Errorf("no rows should be written, got %v", sink.inserts)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "error") {
		t.Errorf("notifier must still receive an error message, got %v", notifier.messages)
	}
}

// Scenario C: outside the window without force, nothing downstream runs.
func TestCycleSkippedOutsideWindow(t *testing.T) {
	classifier := &countingClassifier{inner: regime.NewClassifier(zap.NewNop(), regime.DefaultConfig())}
	provider := marketdata.NewStaticProvider(bullQuotes())
	sink := newRecordingSink(false)
	engine, notifier := newEngine(t, engineOpts{provider: provider, classifier: classifier, sink: sink})

	// Sunday 11:00 IST.
	engine.WithClock(func() time.Time {
		return time.Date(2025, time.June, 8, 11, 0, 0, 0, calendar.IST)
	})

	result := engine.RunCycle(context.Background(), tradingTrigger(false))

	if result.Status != types.CycleSkipped {
		t.Fatalf("status = %s, want skipped", result.Status)
	}
	if result.Reason != "outside_market_hours" {
		t.Errorf("reason = %q", result.Reason)
	}
	if classifier.calls != 0 {
		t.Errorf("classifier called %d times, want 0", classifier.calls)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("skipped cycle must not notify, got %v", notifier.messages)
	}
	if len(sink.inserts) != 0 {
		t.Errorf("skipped cycle must not persist, got %v", sink.inserts)
	}
}

// Scenario D: a sink failing on every call never fails the cycle.
func TestCycleSinkFailureTolerated(t *testing.T) {
	provider := marketdata.NewStaticProvider(bullQuotes())
	sink := newRecordingSink(true)
	engine, _ := newEngine(t, engineOpts{provider: provider, sink: sink, paper: true})

	result := engine.RunCycle(context.Background(), tradingTrigger(true))

	if result.Status != types.CycleSuccess {
		t.Fatalf("status = %s (%s), want success despite sink failures", result.Status, result.Error)
	}
	if result.Regime != types.RegimeBullTrending {
		t.Errorf("regime = %s", result.Regime)
	}
	if result.SignalsGenerated != 1 || result.TradesSimulated != 1 {
		t.Errorf("counts = %d/%d, want 1/1", result.SignalsGenerated, result.TradesSimulated)
	}
	// Each write attempted exactly once, no retries.
	for table, n := range sink.inserts {
		if n != 1 {
			t.Errorf("%s attempted %d times, want 1", table, n)
		}
	}
}

func TestCycleNotifierFailureTolerated(t *testing.T) {
	provider := marketdata.NewStaticProvider(bullQuotes())
	notifier := &recordingNotifier{fail: true}
	engine, _ := newEngine(t, engineOpts{provider: provider, notifier: notifier})

	result := engine.RunCycle(context.Background(), tradingTrigger(true))
	if result.Status != types.CycleSuccess {
		t.Fatalf("status = %s, want success despite notifier failure", result.Status)
	}
}

func TestCyclePanicConvertedToError(t *testing.T) {
	provider := marketdata.NewStaticProvider(bullQuotes())
	engine, _ := newEngine(t, engineOpts{provider: provider, classifier: panickingClassifier{}})

	result := engine.RunCycle(context.Background(), tradingTrigger(true))

	if result.Status != types.CycleError {
		t.Fatalf("status = %s, want error", result.Status)
	}
	if !strings.Contains(result.Error, "panic") {
		t.Errorf("error = %q, want panic context", result.Error)
	}
}

func TestSidewaysBelowThresholdProducesNoTrade(t *testing.T) {
	// Sideways at 0.7 selects Iron Condor at 0.595, just under the 0.6
	// execution cutoff: a signal-free, trade-free successful cycle.
	quotes := map[string]types.Quote{
		"NSE:NIFTY 50":   {InstrumentKey: "NSE:NIFTY 50", LastPrice: decimal.NewFromInt(24500), NetChange: 10},
		"NSE:NIFTY BANK": {InstrumentKey: "NSE:NIFTY BANK", LastPrice: decimal.NewFromInt(52000), NetChange: 30},
	}
	provider := marketdata.NewStaticProvider(quotes)
	sink := newRecordingSink(false)
	engine, _ := newEngine(t, engineOpts{provider: provider, sink: sink})

	result := engine.RunCycle(context.Background(), tradingTrigger(true))

	if result.Status != types.CycleSuccess {
		t.Fatalf("status = %s, want success", result.Status)
	}
	if result.Strategy != "Iron Condor" {
		t.Errorf("strategy = %q", result.Strategy)
	}
	if result.SignalsGenerated != 0 || result.TradesSimulated != 0 {
		t.Errorf("counts = %d/%d, want 0/0", result.SignalsGenerated, result.TradesSimulated)
	}
	if sink.inserts[store.TableTrades] != 0 || sink.inserts[store.TableSignals] != 0 {
		t.Errorf("no signal or trade rows expected, got %v", sink.inserts)
	}
	if sink.inserts[store.TableIntelligence] != 1 {
		t.Errorf("intelligence row still expected, got %v", sink.inserts)
	}
}

func TestHealthCheckIsIdempotent(t *testing.T) {
	classifier := &countingClassifier{inner: regime.NewClassifier(zap.NewNop(), regime.DefaultConfig())}
	provider := marketdata.NewStaticProvider(bullQuotes())
	sink := newRecordingSink(false)
	engine, _ := newEngine(t, engineOpts{provider: provider, classifier: classifier, sink: sink})

	engine.WithClock(func() time.Time {
		return time.Date(2025, time.June, 2, 11, 0, 0, 0, calendar.IST)
	})

	ctx := context.Background()
	var first types.HealthReport
	for i := 0; i < 3; i++ {
		report := engine.HealthCheck(ctx)
		if i == 0 {
			first = report
		} else if report != first {
			t.Errorf("health report changed between calls: %+v vs %+v", first, report)
		}
	}

	if !first.MarketOpen {
		t.Error("expected market open at Monday 11:00 IST")
	}
	if !first.DatabaseConnected || !first.BrokerConnected {
		t.Errorf("capability flags wrong: %+v", first)
	}
	if len(sink.inserts) != 0 {
		t.Errorf("health check must not persist anything, got %v", sink.inserts)
	}
	if classifier.calls != 0 {
		t.Errorf("health check must not classify, got %d calls", classifier.calls)
	}
}

func TestDegradedEngineReportsMissingSink(t *testing.T) {
	provider := marketdata.NewStaticProvider(bullQuotes())
	engine, _ := newEngine(t, engineOpts{provider: provider, sink: nil})

	report := engine.HealthCheck(context.Background())
	if report.DatabaseConnected {
		t.Error("nil sink must report database disconnected")
	}

	// And the cycle still runs to success with persistence as a no-op.
	result := engine.RunCycle(context.Background(), tradingTrigger(true))
	if result.Status != types.CycleSuccess {
		t.Fatalf("status = %s, want success without a sink", result.Status)
	}
}
