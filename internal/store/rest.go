package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RestSink writes rows to a hosted REST row store (Supabase-style
// PostgREST endpoint): one POST per insert, no reads.
type RestSink struct {
	logger  *zap.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRestSink creates a sink for the given endpoint and service key.
func NewRestSink(logger *zap.Logger, baseURL, apiKey string) *RestSink {
	return &RestSink{
		logger:  logger.Named("store"),
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Insert implements Sink.
func (s *RestSink) Insert(ctx context.Context, table string, record Record) error {
	if !validTable(table) {
		return fmt.Errorf("unknown table %q", table)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("row store status %d for %s: %s", resp.StatusCode, table, string(body))
	}

	s.logger.Debug("Record persisted", zap.String("table", table))
	return nil
}

// Name implements Sink.
func (s *RestSink) Name() string { return "rest" }

// Close implements Sink.
func (s *RestSink) Close() error { return nil }
