// Package execution_test provides tests for the execution simulator.
package execution_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/internal/execution"
	"github.com/indexflow/trading-engine/internal/store"
	"github.com/indexflow/trading-engine/pkg/types"
)

type failingSink struct {
	calls int
}

func (f *failingSink) Insert(context.Context, string, store.Record) error {
	f.calls++
	return errors.New("sink unavailable")
}
func (f *failingSink) Name() string { return "failing" }
func (f *failingSink) Close() error { return nil }

func testQuotes() map[string]types.Quote {
	return map[string]types.Quote{
		"NSE:NIFTY 50": {
			InstrumentKey: "NSE:NIFTY 50",
			LastPrice:     decimal.NewFromInt(24500),
			NetChange:     60,
		},
	}
}

func recommendation(confidence float64) types.StrategyRecommendation {
	return types.StrategyRecommendation{
		Strategy:   "Bull Call Spread",
		Confidence: confidence,
		Rationale:  "Bullish market favors call spreads",
		Regime:     types.RegimeBullTrending,
	}
}

func TestThresholdBoundary(t *testing.T) {
	sim := execution.NewSimulator(zap.NewNop(), execution.DefaultConfig(), store.NewNoopSink())
	ctx := context.Background()

	if trade := sim.Simulate(ctx, recommendation(0.59), testQuotes()); trade != nil {
		t.Errorf("confidence 0.59 must not trade, got %+v", trade)
	}
	if trade := sim.Simulate(ctx, recommendation(0.60), testQuotes()); trade == nil {
		t.Error("confidence 0.60 (exactly at threshold) must trade")
	}
}

func TestTradeRecordShape(t *testing.T) {
	cfg := execution.DefaultConfig()
	cfg.Paper = true
	sim := execution.NewSimulator(zap.NewNop(), cfg, store.NewNoopSink())

	trade := sim.Simulate(context.Background(), recommendation(0.72), testQuotes())
	if trade == nil {
		t.Fatal("expected a trade")
	}

	if trade.Symbol != "NIFTY" {
		t.Errorf("symbol = %q", trade.Symbol)
	}
	if trade.Quantity != cfg.LotSize {
		t.Errorf("quantity = %d, want lot size %d", trade.Quantity, cfg.LotSize)
	}
	if !trade.EntryPrice.Equal(decimal.NewFromInt(24500)) {
		t.Errorf("entry price = %s, want 24500", trade.EntryPrice)
	}
	if !trade.Paper {
		t.Error("paper flag must mirror config")
	}
	if trade.Status != types.TradeStatusOpen {
		t.Errorf("status = %s, want OPEN", trade.Status)
	}
	if trade.ID == "" || trade.EntryTime.IsZero() {
		t.Error("trade must carry an ID and entry time")
	}
}

func TestSinkFailureDoesNotSuppressTrade(t *testing.T) {
	sink := &failingSink{}
	sim := execution.NewSimulator(zap.NewNop(), execution.DefaultConfig(), sink)

	trade := sim.Simulate(context.Background(), recommendation(0.8), testQuotes())
	if trade == nil {
		t.Fatal("trade must be produced even when persistence fails")
	}
	if sink.calls != 1 {
		t.Errorf("sink called %d times, want exactly 1 (no retries)", sink.calls)
	}
}

func TestLiveModeTagging(t *testing.T) {
	cfg := execution.DefaultConfig()
	cfg.Paper = false
	sim := execution.NewSimulator(zap.NewNop(), cfg, store.NewNoopSink())

	trade := sim.Simulate(context.Background(), recommendation(0.9), testQuotes())
	if trade == nil {
		t.Fatal("expected a trade")
	}
	if trade.Paper {
		t.Error("live mode must not tag trades as paper")
	}
}

func TestMissingQuoteLeavesZeroEntryPrice(t *testing.T) {
	sim := execution.NewSimulator(zap.NewNop(), execution.DefaultConfig(), store.NewNoopSink())

	trade := sim.Simulate(context.Background(), recommendation(0.8), map[string]types.Quote{})
	if trade == nil {
		t.Fatal("expected a trade")
	}
	if !trade.EntryPrice.IsZero() {
		t.Errorf("entry price = %s, want zero without a quote", trade.EntryPrice)
	}
}
