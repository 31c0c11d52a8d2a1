package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteSink stores rows in a local SQLite database. Each known table
// holds opaque JSON payloads; the schema stays deliberately narrow so the
// sink can absorb any record shape the engine produces.
type SQLiteSink struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteSink opens (and if needed creates) the database at path.
func NewSQLiteSink(logger *zap.Logger, path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteSink{logger: logger.Named("store"), db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) migrate() error {
	for _, table := range []string{TableTrades, TableSignals, TableIntelligence} {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			record TEXT NOT NULL
		)`, table)
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}
	return nil
}

// Insert implements Sink.
func (s *SQLiteSink) Insert(ctx context.Context, table string, record Record) error {
	if !validTable(table) {
		return fmt.Errorf("unknown table %q", table)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %s (created_at, record) VALUES (?, ?)", table)
	if _, err := s.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339), string(payload)); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}

	s.logger.Debug("Record persisted", zap.String("table", table))
	return nil
}

// Count returns the number of rows in a table, used by tests and
// diagnostics.
func (s *SQLiteSink) Count(ctx context.Context, table string) (int, error) {
	if !validTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Name implements Sink.
func (s *SQLiteSink) Name() string { return "sqlite" }

// Close implements Sink.
func (s *SQLiteSink) Close() error { return s.db.Close() }

func validTable(table string) bool {
	switch table {
	case TableTrades, TableSignals, TableIntelligence:
		return true
	}
	return false
}
