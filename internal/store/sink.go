// Package store persists trades, signals and market intelligence through
// a narrow row-insert interface. The engine treats the store as opaque:
// writes are at-most-once and best-effort, and a missing or failing sink
// never fails a trading cycle.
package store

import "context"

// Table names written by the engine.
const (
	TableTrades       = "trades"
	TableSignals      = "signals"
	TableIntelligence = "market_intelligence"
)

// Record is one row payload. Values must be JSON-serializable.
type Record map[string]interface{}

// Sink is the persistence capability. Implementations do not guarantee
// idempotency; callers must not retry failed inserts within a cycle.
type Sink interface {
	Insert(ctx context.Context, table string, record Record) error
	Name() string
	Close() error
}
