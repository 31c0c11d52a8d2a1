package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/indexflow/trading-engine/pkg/types"
)

// StaticProvider serves a fixed quote set. It backs simulation mode and
// tests, where broker connectivity is unavailable or undesirable.
type StaticProvider struct {
	mu     sync.RWMutex
	quotes map[string]types.Quote
}

// NewStaticProvider creates a provider seeded with the given quotes.
func NewStaticProvider(quotes map[string]types.Quote) *StaticProvider {
	if quotes == nil {
		quotes = make(map[string]types.Quote)
	}
	return &StaticProvider{quotes: quotes}
}

// Name implements Provider.
func (p *StaticProvider) Name() string { return "static" }

// SetQuote replaces the stored quote for an instrument.
func (p *StaticProvider) SetQuote(q types.Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[q.InstrumentKey] = q
}

// GetQuotes implements Provider. Instruments without a stored quote are
// omitted; an entirely empty result is ErrNoData.
func (p *StaticProvider) GetQuotes(_ context.Context, instrumentKeys []string) (map[string]types.Quote, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	now := time.Now()
	out := make(map[string]types.Quote, len(instrumentKeys))
	for _, key := range instrumentKeys {
		if q, ok := p.quotes[key]; ok {
			q.Timestamp = now
			out[key] = q
		}
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// GetPositions implements Provider. Simulation mode has no positions.
func (p *StaticProvider) GetPositions(context.Context) ([]types.Position, error) {
	return nil, nil
}
