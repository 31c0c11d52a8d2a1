// Package regime_test provides tests for the regime classifier.
package regime_test

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/internal/regime"
	"github.com/indexflow/trading-engine/pkg/types"
)

func quotes(primary, secondary float64) map[string]types.Quote {
	return map[string]types.Quote{
		"NSE:NIFTY 50":   {InstrumentKey: "NSE:NIFTY 50", NetChange: primary},
		"NSE:NIFTY BANK": {InstrumentKey: "NSE:NIFTY BANK", NetChange: secondary},
	}
}

func newClassifier() *regime.Classifier {
	return regime.NewClassifier(zap.NewNop(), regime.DefaultConfig())
}

func TestClassifyRules(t *testing.T) {
	cases := []struct {
		name           string
		primary        float64
		secondary      float64
		wantRegime     types.Regime
		wantConfidence float64
		wantVolatility types.VolatilityLevel
	}{
		{"bull trending", 60, 150, types.RegimeBullTrending, 0.8, types.VolatilityMedium},
		{"bear trending", -80, -200, types.RegimeBearTrending, 0.8, types.VolatilityMedium},
		{"sideways", 10, 30, types.RegimeSideways, 0.7, types.VolatilityLow},
		{"volatile", 40, 60, types.RegimeVolatile, 0.6, types.VolatilityMedium},
		{"high vol spike", 150, 80, types.RegimeVolatile, 0.6, types.VolatilityHigh},
		{"bull needs both indices", 60, 50, types.RegimeVolatile, 0.6, types.VolatilityMedium},
		{"boundary 50 not bull", 50, 150, types.RegimeVolatile, 0.6, types.VolatilityMedium},
		{"boundary 20 not sideways", 20, 30, types.RegimeVolatile, 0.6, types.VolatilityLow},
		{"big bear is high vol", -120, -300, types.RegimeBearTrending, 0.8, types.VolatilityHigh},
	}

	c := newClassifier()
	for _, tc := range cases {
		got := c.Classify(quotes(tc.primary, tc.secondary))
		if got.Regime != tc.wantRegime {
			t.Errorf("%s: regime = %s, want %s", tc.name, got.Regime, tc.wantRegime)
		}
		if got.Confidence != tc.wantConfidence {
			t.Errorf("%s: confidence = %v, want %v", tc.name, got.Confidence, tc.wantConfidence)
		}
		if got.Volatility != tc.wantVolatility {
			t.Errorf("%s: volatility = %s, want %s", tc.name, got.Volatility, tc.wantVolatility)
		}
	}
}

func TestBullTrendingHoldsAcrossMagnitudes(t *testing.T) {
	// Any input with primary > 50 and secondary > 100 must classify as
	// Bull Trending at 0.8, regardless of magnitude.
	c := newClassifier()
	for _, p := range []float64{50.01, 75, 120, 400} {
		for _, s := range []float64{100.01, 180, 900} {
			got := c.Classify(quotes(p, s))
			if got.Regime != types.RegimeBullTrending || got.Confidence != 0.8 {
				t.Errorf("primary=%v secondary=%v: got %s/%v", p, s, got.Regime, got.Confidence)
			}
		}
	}
}

func TestClassifyMissingInput(t *testing.T) {
	c := newClassifier()

	cases := []struct {
		name   string
		quotes map[string]types.Quote
	}{
		{"nil map", nil},
		{"empty map", map[string]types.Quote{}},
		{"missing secondary", map[string]types.Quote{
			"NSE:NIFTY 50": {InstrumentKey: "NSE:NIFTY 50", NetChange: 60},
		}},
		{"nan change", map[string]types.Quote{
			"NSE:NIFTY 50":   {InstrumentKey: "NSE:NIFTY 50", NetChange: math.NaN()},
			"NSE:NIFTY BANK": {InstrumentKey: "NSE:NIFTY BANK", NetChange: 150},
		}},
	}

	for _, tc := range cases {
		got := c.Classify(tc.quotes)
		if got.Regime != types.RegimeUnknown {
			t.Errorf("%s: regime = %s, want Unknown", tc.name, got.Regime)
		}
		if got.Confidence != 0 {
			t.Errorf("%s: confidence = %v, want 0", tc.name, got.Confidence)
		}
		if got.Volatility != types.VolatilityUnknown {
			t.Errorf("%s: volatility = %s, want Unknown", tc.name, got.Volatility)
		}
	}
}

func TestTrendStrengthClamped(t *testing.T) {
	c := newClassifier()

	got := c.Classify(quotes(260, 500))
	if got.TrendStrength != 1 {
		t.Errorf("trend strength = %v, want clamp to 1", got.TrendStrength)
	}

	got = c.Classify(quotes(60, 150))
	if got.TrendStrength != 0.6 {
		t.Errorf("trend strength = %v, want 0.6", got.TrendStrength)
	}
}
