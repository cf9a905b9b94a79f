package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kovalyov-valentin/market-news-bot/internal/model"
)

const pricePath = "/simple/price"

// Клиент CoinGecko-совместимого API: /simple/price?ids=..&vs_currencies=..&include_24hr_change=true
type Client struct {
	client   *http.Client
	baseURL  string
	currency string
}

func NewClient(baseURL, currency string, timeout time.Duration) *Client {
	return &Client{
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		currency: currency,
	}
}

// Изменение цены актива за 24 часа в процентах. Одна повторная попытка при сбое
func (c *Client) Change24h(ctx context.Context, assetID string) (float64, error) {
	var err error

	for attempt := 0; attempt < 2; attempt++ {
		var change float64

		change, err = c.fetchChange(ctx, assetID)
		if err == nil {
			return change, nil
		}

		if ctx.Err() != nil {
			break
		}
	}

	return 0, fmt.Errorf("%w: %s: %v", model.ErrDataSource, assetID, err)
}

func (c *Client) fetchChange(ctx context.Context, assetID string) (float64, error) {
	query := url.Values{}
	query.Set("ids", assetID)
	query.Set("vs_currencies", c.currency)
	query.Set("include_24hr_change", "true")

	endpoint := strings.TrimRight(c.baseURL, "/") + pricePath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// {"bitcoin": {"usd": 67000.1, "usd_24h_change": -5.31}}
	var prices map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	change, ok := prices[assetID][c.currency+"_24h_change"]
	if !ok {
		return 0, fmt.Errorf("no 24h change for %s in response", assetID)
	}

	return change, nil
}
