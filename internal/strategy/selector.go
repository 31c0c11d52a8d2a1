// Package strategy maps a regime analysis to an options strategy
// recommendation. The mapping is a total function: every regime has an
// entry, and any unexpected input or internal fault collapses to a fixed
// conservative fallback instead of an error.
package strategy

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/pkg/types"
	"github.com/indexflow/trading-engine/pkg/utils"
)

// Fallback strategy emitted for the Unknown regime or on internal error.
const (
	FallbackStrategy           = "Conservative Cash"
	FallbackConfidence         = 0.5
	FallbackInternalConfidence = 0.3
)

// Config holds the per-regime confidence multipliers.
type Config struct {
	TrendingMultiplier float64
	SidewaysMultiplier float64
	VolatileMultiplier float64
}

// DefaultConfig returns the production multipliers.
func DefaultConfig() Config {
	return Config{
		TrendingMultiplier: 0.9,
		SidewaysMultiplier: 0.85,
		VolatileMultiplier: 0.75,
	}
}

// Selector derives one StrategyRecommendation per cycle.
type Selector struct {
	logger *zap.Logger
	config Config
	table  map[types.Regime]entry
}

type entry struct {
	strategy   string
	multiplier float64
	rationale  string
}

// NewSelector creates a selector with the given multipliers.
func NewSelector(logger *zap.Logger, config Config) *Selector {
	return &Selector{
		logger: logger.Named("strategy"),
		config: config,
		table: map[types.Regime]entry{
			types.RegimeBullTrending: {
				strategy:   "Bull Call Spread",
				multiplier: config.TrendingMultiplier,
				rationale:  "Bullish market favors call spreads",
			},
			types.RegimeBearTrending: {
				strategy:   "Bear Put Spread",
				multiplier: config.TrendingMultiplier,
				rationale:  "Bearish market favors put spreads",
			},
			types.RegimeSideways: {
				strategy:   "Iron Condor",
				multiplier: config.SidewaysMultiplier,
				rationale:  "Range-bound market ideal for condors",
			},
			types.RegimeVolatile: {
				strategy:   "Short Straddle",
				multiplier: config.VolatileMultiplier,
				rationale:  "Elevated movement favors straddles",
			},
		},
	}
}

// Select maps a regime analysis to a recommendation. It never fails: the
// Unknown regime (or any regime without a table entry) yields the
// conservative fallback at 0.5, and an internal fault yields the same
// fallback at 0.3.
func (s *Selector) Select(analysis types.RegimeAnalysis) (rec types.StrategyRecommendation) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Selector fault, using conservative fallback",
				zap.Any("panic", r),
				zap.String("regime", string(analysis.Regime)),
			)
			rec = s.fallback(analysis, FallbackInternalConfidence, fmt.Sprintf("Selector fault: %v", r))
		}
	}()

	e, ok := s.table[analysis.Regime]
	if !ok {
		return s.fallback(analysis, FallbackConfidence, "Unknown conditions require caution")
	}

	name := e.strategy
	if analysis.Regime == types.RegimeVolatile && analysis.Volatility == types.VolatilityHigh {
		// High realized movement makes premium selling unattractive; buy
		// the straddle instead.
		name = "Long Straddle"
	}

	rec = types.StrategyRecommendation{
		Strategy:   name,
		Confidence: utils.Clamp01(analysis.Confidence * e.multiplier),
		Rationale:  e.rationale,
		Regime:     analysis.Regime,
		Volatility: analysis.Volatility,
	}

	s.logger.Info("Strategy selected",
		zap.String("strategy", rec.Strategy),
		zap.Float64("confidence", rec.Confidence),
		zap.String("regime", string(rec.Regime)),
	)
	return rec
}

func (s *Selector) fallback(analysis types.RegimeAnalysis, confidence float64, rationale string) types.StrategyRecommendation {
	return types.StrategyRecommendation{
		Strategy:   FallbackStrategy,
		Confidence: confidence,
		Rationale:  rationale,
		Regime:     analysis.Regime,
		Volatility: analysis.Volatility,
	}
}
