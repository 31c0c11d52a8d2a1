// Package execution turns strategy recommendations into trade records.
// Paper and live trades share this path and differ only in how the
// record is tagged; the simulator never places real orders itself.
package execution

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/internal/store"
	"github.com/indexflow/trading-engine/pkg/types"
	"github.com/indexflow/trading-engine/pkg/utils"
)

// Config configures the execution simulator.
type Config struct {
	// ConfidenceThreshold gates execution: recommendations at or above
	// the threshold produce a trade, below it none. 0.6 in production.
	ConfidenceThreshold float64

	// LotSize is the fixed contract quantity per trade. There is no
	// position sizing beyond this constant.
	LotSize int

	// Symbol is the traded underlying.
	Symbol string

	// PrimaryInstrument keys the quote used for the entry price.
	PrimaryInstrument string

	// Paper tags produced records as paper trades.
	Paper bool
}

// DefaultConfig returns the production execution settings.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.6,
		LotSize:             50,
		Symbol:              "NIFTY",
		PrimaryInstrument:   "NSE:NIFTY 50",
		Paper:               true,
	}
}

// Simulator produces at most one TradeRecord per cycle.
type Simulator struct {
	logger *zap.Logger
	config Config
	sink   store.Sink
}

// NewSimulator creates a simulator writing through the given sink.
func NewSimulator(logger *zap.Logger, config Config, sink store.Sink) *Simulator {
	if sink == nil {
		sink = store.NewNoopSink()
	}
	return &Simulator{
		logger: logger.Named("execution"),
		config: config,
		sink:   sink,
	}
}

// Simulate produces a trade record for a sufficiently confident
// recommendation, or nil below the threshold. The record is persisted
// best-effort: a sink failure is logged and the record is still returned,
// since the decision was made regardless of whether it was stored.
func (s *Simulator) Simulate(ctx context.Context, rec types.StrategyRecommendation, quotes map[string]types.Quote) *types.TradeRecord {
	if rec.Confidence < s.config.ConfidenceThreshold {
		s.logger.Debug("Recommendation below execution threshold",
			zap.String("strategy", rec.Strategy),
			zap.Float64("confidence", rec.Confidence),
			zap.Float64("threshold", s.config.ConfidenceThreshold),
		)
		return nil
	}

	trade := &types.TradeRecord{
		ID:        utils.GenerateTradeID(),
		Symbol:    s.config.Symbol,
		Strategy:  rec.Strategy,
		EntryTime: time.Now(),
		Quantity:  s.config.LotSize,
		TradeType: "BUY",
		OrderType: "MARKET",
		Category:  "OPTIONS",
		Paper:     s.config.Paper,
		Status:    types.TradeStatusOpen,
		Notes:     fmt.Sprintf("%s (%s regime)", rec.Rationale, rec.Regime),
	}
	if q, ok := quotes[s.config.PrimaryInstrument]; ok {
		trade.EntryPrice = q.LastPrice
	}

	if err := s.sink.Insert(ctx, store.TableTrades, tradeRecordRow(trade)); err != nil {
		// Best-effort write: the in-memory record stands either way.
		s.logger.Warn("Trade persistence failed, continuing",
			zap.String("tradeId", trade.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("Trade simulated",
		zap.String("tradeId", trade.ID),
		zap.String("strategy", trade.Strategy),
		zap.Int("quantity", trade.Quantity),
		zap.Bool("paper", trade.Paper),
	)
	return trade
}

func tradeRecordRow(t *types.TradeRecord) store.Record {
	return store.Record{
		"id":             t.ID,
		"symbol":         t.Symbol,
		"strategy":       t.Strategy,
		"entry_time":     t.EntryTime.Format(time.RFC3339),
		"entry_price":    t.EntryPrice.String(),
		"quantity":       t.Quantity,
		"trade_type":     t.TradeType,
		"order_type":     t.OrderType,
		"trade_category": t.Category,
		"paper_trade":    t.Paper,
		"status":         string(t.Status),
		"notes":          t.Notes,
	}
}
