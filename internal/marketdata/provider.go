// Package marketdata provides index quote and position retrieval.
package marketdata

import (
	"context"
	"errors"

	"github.com/indexflow/trading-engine/pkg/types"
)

// ErrNoData indicates the provider returned nothing usable. A cycle
// cannot classify a regime without quotes, so callers treat this as
// terminal for the cycle.
var ErrNoData = errors.New("marketdata: no quotes available")

// Provider supplies quotes and open positions. Implementations own their
// timeouts; callers only distinguish success from failure.
type Provider interface {
	// GetQuotes returns a quote per requested instrument key. An empty
	// result is reported as ErrNoData.
	GetQuotes(ctx context.Context, instrumentKeys []string) (map[string]types.Quote, error)

	// GetPositions returns open positions, used for reporting only.
	GetPositions(ctx context.Context) ([]types.Position, error)

	// Name identifies the provider in logs and health reports.
	Name() string
}
