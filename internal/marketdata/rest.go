package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/pkg/types"
)

// RestProvider fetches quotes from a Kite-style broker REST API.
type RestProvider struct {
	logger      *zap.Logger
	baseURL     string
	apiKey      string
	accessToken string
	client      *http.Client
}

// RestConfig configures the broker client.
type RestConfig struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	Timeout     time.Duration
}

// NewRestProvider creates a broker-backed provider.
func NewRestProvider(logger *zap.Logger, cfg RestConfig) *RestProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RestProvider{
		logger:      logger.Named("marketdata"),
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (p *RestProvider) Name() string { return "broker-rest" }

type quotePayload struct {
	Status string `json:"status"`
	Data   map[string]struct {
		LastPrice decimal.Decimal `json:"last_price"`
		NetChange float64         `json:"net_change"`
	} `json:"data"`
}

type positionsPayload struct {
	Status string `json:"status"`
	Data   struct {
		Net []struct {
			TradingSymbol string          `json:"tradingsymbol"`
			Exchange      string          `json:"exchange"`
			Quantity      int64           `json:"quantity"`
			AveragePrice  decimal.Decimal `json:"average_price"`
			PnL           decimal.Decimal `json:"pnl"`
		} `json:"net"`
	} `json:"data"`
}

// GetQuotes implements Provider.
func (p *RestProvider) GetQuotes(ctx context.Context, instrumentKeys []string) (map[string]types.Quote, error) {
	if len(instrumentKeys) == 0 {
		return nil, ErrNoData
	}

	q := url.Values{}
	for _, key := range instrumentKeys {
		q.Add("i", key)
	}

	var payload quotePayload
	if err := p.get(ctx, "/quote?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, ErrNoData
	}

	now := time.Now()
	quotes := make(map[string]types.Quote, len(payload.Data))
	for key, raw := range payload.Data {
		quotes[key] = types.Quote{
			InstrumentKey: key,
			LastPrice:     raw.LastPrice,
			NetChange:     raw.NetChange,
			Timestamp:     now,
		}
	}

	p.logger.Debug("Quotes fetched", zap.Int("count", len(quotes)))
	return quotes, nil
}

// GetPositions implements Provider.
func (p *RestProvider) GetPositions(ctx context.Context) ([]types.Position, error) {
	var payload positionsPayload
	if err := p.get(ctx, "/portfolio/positions", &payload); err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	positions := make([]types.Position, 0, len(payload.Data.Net))
	for _, raw := range payload.Data.Net {
		positions = append(positions, types.Position{
			TradingSymbol: raw.TradingSymbol,
			Exchange:      raw.Exchange,
			Quantity:      raw.Quantity,
			AveragePrice:  raw.AveragePrice,
			PnL:           raw.PnL,
		})
	}
	return positions, nil
}

func (p *RestProvider) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Kite-Version", "3")
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", p.apiKey, p.accessToken))

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("broker API status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
