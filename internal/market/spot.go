package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	spotDefaultBaseURL = "https://api.gateio.ws/api/v4"
	infoDefaultBaseURL = "https://api.kryptex.network/api/v1"
)

// SpotSource reads the trade price and 24h volume from the spot-ticker
// feed and the market cap from the coin-info feed. Prices are decoded from
// their decimal string form, never through float64.
type SpotSource struct {
	baseURL     string
	infoBaseURL string
	client      *http.Client
	quoteAsset  string
}

type spotTicker struct {
	Last        string `json:"last"`
	QuoteVolume string `json:"quote_volume"`
}

type coinInfo struct {
	MarketCap string `json:"market_cap"`
}

func NewSpotSource(baseURL, infoBaseURL string) *SpotSource {
	resolvedBaseURL := strings.TrimRight(baseURL, "/")
	if resolvedBaseURL == "" {
		resolvedBaseURL = spotDefaultBaseURL
	}
	resolvedInfoBaseURL := strings.TrimRight(infoBaseURL, "/")
	if resolvedInfoBaseURL == "" {
		resolvedInfoBaseURL = infoDefaultBaseURL
	}

	return &SpotSource{
		baseURL:     resolvedBaseURL,
		infoBaseURL: resolvedInfoBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		quoteAsset: "USDT",
	}
}

func (s *SpotSource) Fetch(ctx context.Context, ticker string) (Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Quote{}, fmt.Errorf("ticker is required")
	}

	price, volume, err := s.fetchTicker(ctx, ticker)
	if err != nil {
		return Quote{}, err
	}

	marketCap, err := s.fetchMarketCap(ctx, ticker)
	if err != nil {
		return Quote{}, err
	}

	return Quote{Price: price, MarketCap: marketCap, Volume24h: volume}, nil
}

func (s *SpotSource) fetchTicker(ctx context.Context, ticker string) (decimal.Decimal, decimal.NullDecimal, error) {
	endpoint, err := url.Parse(s.baseURL + "/spot/tickers")
	if err != nil {
		return decimal.Zero, decimal.NullDecimal{}, err
	}
	query := endpoint.Query()
	query.Set("currency_pair", ticker+"_"+s.quoteAsset)
	endpoint.RawQuery = query.Encode()

	var tickers []spotTicker
	if err := s.getJSON(ctx, endpoint.String(), &tickers); err != nil {
		return decimal.Zero, decimal.NullDecimal{}, err
	}
	if len(tickers) == 0 {
		return decimal.Zero, decimal.NullDecimal{}, fmt.Errorf("no ticker data for %s", ticker)
	}

	price, err := decimal.NewFromString(tickers[0].Last)
	if err != nil {
		return decimal.Zero, decimal.NullDecimal{}, fmt.Errorf("unusable price for %s: %q", ticker, tickers[0].Last)
	}

	volume := decimal.NullDecimal{}
	if v, err := decimal.NewFromString(tickers[0].QuoteVolume); err == nil {
		volume = decimal.NullDecimal{Decimal: v, Valid: true}
	}

	return price, volume, nil
}

func (s *SpotSource) fetchMarketCap(ctx context.Context, ticker string) (decimal.NullDecimal, error) {
	endpoint := s.infoBaseURL + "/coin/" + strings.ToLower(ticker) + "/info"

	var info coinInfo
	if err := s.getJSON(ctx, endpoint, &info); err != nil {
		return decimal.NullDecimal{}, err
	}

	// The info feed omits market_cap for thinly listed coins; that is
	// missing data, not an error.
	if strings.TrimSpace(info.MarketCap) == "" {
		return decimal.NullDecimal{}, nil
	}

	mcap, err := decimal.NewFromString(info.MarketCap)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("unusable market cap for %s: %q", ticker, info.MarketCap)
	}
	return decimal.NullDecimal{Decimal: mcap, Valid: true}, nil
}

func (s *SpotSource) getJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("feed error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
