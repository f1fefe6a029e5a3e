package mexc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mxarb/internal/application/port"
)

const (
	DefaultSpotRESTURL    = "https://api.mexc.com"
	DefaultFuturesRESTURL = "https://contract.mexc.com"

	spotTradingStatus = "1"
)

// CatalogueClient fetches the tradable USDT pairs of both markets.
type CatalogueClient struct {
	spotURL    string
	futuresURL string
	client     *http.Client
}

type exchangeInfoResp struct {
	Symbols []struct {
		Symbol string `json:"symbol"`
		Status string `json:"status"`
	} `json:"symbols"`
}

type contractDetailResp struct {
	Success bool `json:"success"`
	Data    []struct {
		Symbol string `json:"symbol"`
	} `json:"data"`
}

func NewCatalogueClient(spotURL, futuresURL string, timeout time.Duration) *CatalogueClient {
	if spotURL == "" {
		spotURL = DefaultSpotRESTURL
	}
	if futuresURL == "" {
		futuresURL = DefaultFuturesRESTURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CatalogueClient{
		spotURL:    strings.TrimRight(spotURL, "/"),
		futuresURL: strings.TrimRight(futuresURL, "/"),
		client:     &http.Client{Timeout: timeout},
	}
}

// FetchSpot returns coins of USDT spot pairs that are currently trading.
func (c *CatalogueClient) FetchSpot(ctx context.Context) ([]string, error) {
	var resp exchangeInfoResp
	if err := c.getJSON(ctx, c.spotURL+"/api/v3/exchangeInfo", &resp); err != nil {
		return nil, err
	}
	coins := make([]string, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status != spotTradingStatus {
			continue
		}
		if coin := spotConverter.Symbol2Coin(s.Symbol); coin != "" {
			coins = append(coins, coin)
		}
	}
	return coins, nil
}

// FetchFutures returns coins of USDT perpetual contracts.
func (c *CatalogueClient) FetchFutures(ctx context.Context) ([]string, error) {
	var resp contractDetailResp
	if err := c.getJSON(ctx, c.futuresURL+"/api/v1/contract/detail", &resp); err != nil {
		return nil, err
	}
	coins := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if coin := futuresConverter.Symbol2Coin(d.Symbol); coin != "" {
			coins = append(coins, coin)
		}
	}
	return coins, nil
}

func (c *CatalogueClient) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("mexc api error: %d %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// maxErrorBody caps how much of an error response ends up in the error.
const maxErrorBody = 4 << 10

var _ port.CatalogueSource = (*CatalogueClient)(nil)
