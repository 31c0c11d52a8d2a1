// Package regime classifies the prevailing market regime from index
// price deltas. Classification is deterministic thresholding over the
// primary and secondary index net changes; the classifier is total and
// never fails, because every downstream component depends on receiving
// a well-formed analysis.
package regime

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/pkg/types"
	"github.com/indexflow/trading-engine/pkg/utils"
)

// Config holds the classification thresholds. The values are carried
// over from the calibrated production system and surface here as
// configuration rather than re-derived.
type Config struct {
	PrimaryInstrument   string
	SecondaryInstrument string

	// Trending thresholds on net change, points.
	BullPrimary   float64
	BullSecondary float64
	BearPrimary   float64
	BearSecondary float64

	// Sideways thresholds on absolute net change, points.
	SidewaysPrimary   float64
	SidewaysSecondary float64

	// Volatility label thresholds on absolute primary net change.
	HighVolThreshold   float64
	MediumVolThreshold float64

	// Confidence assigned per matched rule.
	TrendingConfidence float64
	SidewaysConfidence float64
	VolatileConfidence float64
}

// DefaultConfig returns the production thresholds for NIFTY/BANKNIFTY.
func DefaultConfig() Config {
	return Config{
		PrimaryInstrument:   "NSE:NIFTY 50",
		SecondaryInstrument: "NSE:NIFTY BANK",
		BullPrimary:         50,
		BullSecondary:       100,
		BearPrimary:         -50,
		BearSecondary:       -100,
		SidewaysPrimary:     20,
		SidewaysSecondary:   50,
		HighVolThreshold:    100,
		MediumVolThreshold:  30,
		TrendingConfidence:  0.8,
		SidewaysConfidence:  0.7,
		VolatileConfidence:  0.6,
	}
}

// Classifier turns raw quotes into a RegimeAnalysis.
type Classifier struct {
	logger *zap.Logger
	config Config
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(logger *zap.Logger, config Config) *Classifier {
	return &Classifier{
		logger: logger.Named("regime"),
		config: config,
	}
}

// Classify evaluates the ordered regime rules against the quote map.
// Rules are checked in declaration order and the first match wins. A
// missing or empty quote map yields the Unknown regime with zero
// confidence; Classify never returns an error and never panics.
func (c *Classifier) Classify(quotes map[string]types.Quote) types.RegimeAnalysis {
	analysis := types.RegimeAnalysis{
		Regime:     types.RegimeUnknown,
		Confidence: 0,
		Volatility: types.VolatilityUnknown,
		AnalyzedAt: time.Now(),
	}

	primary, okP := quotes[c.config.PrimaryInstrument]
	secondary, okS := quotes[c.config.SecondaryInstrument]
	if len(quotes) == 0 || !okP || !okS ||
		math.IsNaN(primary.NetChange) || math.IsNaN(secondary.NetChange) {
		c.logger.Warn("Insufficient quote data, regime unknown",
			zap.Int("quotes", len(quotes)),
			zap.Bool("primary", okP),
			zap.Bool("secondary", okS),
		)
		return analysis
	}

	p, s := primary.NetChange, secondary.NetChange
	analysis.PrimaryChange = p
	analysis.SecondaryChange = s
	analysis.TrendStrength = utils.Clamp01(math.Abs(p) / 100)
	analysis.Volatility = c.volatilityLabel(p)

	switch {
	case p > c.config.BullPrimary && s > c.config.BullSecondary:
		analysis.Regime = types.RegimeBullTrending
		analysis.Confidence = c.config.TrendingConfidence
	case p < c.config.BearPrimary && s < c.config.BearSecondary:
		analysis.Regime = types.RegimeBearTrending
		analysis.Confidence = c.config.TrendingConfidence
	case math.Abs(p) < c.config.SidewaysPrimary && math.Abs(s) < c.config.SidewaysSecondary:
		analysis.Regime = types.RegimeSideways
		analysis.Confidence = c.config.SidewaysConfidence
	default:
		analysis.Regime = types.RegimeVolatile
		analysis.Confidence = c.config.VolatileConfidence
	}
	analysis.Confidence = utils.Clamp01(analysis.Confidence)

	c.logger.Info("Regime classified",
		zap.String("regime", string(analysis.Regime)),
		zap.Float64("confidence", analysis.Confidence),
		zap.String("volatility", string(analysis.Volatility)),
		zap.Float64("primaryChange", p),
		zap.Float64("secondaryChange", s),
	)
	return analysis
}

func (c *Classifier) volatilityLabel(primaryChange float64) types.VolatilityLevel {
	abs := math.Abs(primaryChange)
	switch {
	case abs > c.config.HighVolThreshold:
		return types.VolatilityHigh
	case abs > c.config.MediumVolThreshold:
		return types.VolatilityMedium
	default:
		return types.VolatilityLow
	}
}
