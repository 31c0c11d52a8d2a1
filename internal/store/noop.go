package store

import "context"

// NoopSink is used when no database is configured or initialization
// failed. Inserts silently succeed so the cycle proceeds with persistence
// disabled.
type NoopSink struct{}

// NewNoopSink returns the degraded-mode sink.
func NewNoopSink() *NoopSink { return &NoopSink{} }

func (*NoopSink) Insert(context.Context, string, Record) error { return nil }
func (*NoopSink) Name() string                                 { return "noop" }
func (*NoopSink) Close() error                                 { return nil }
