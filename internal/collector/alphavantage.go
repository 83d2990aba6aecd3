package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"FriendlyTicker/internal/model"
)

const defaultAlphaVantageURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage
// TIME_SERIES_DAILY endpoint.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates an Alpha Vantage fetcher with optional base
// URL and proxy overrides.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = defaultAlphaVantageURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &AlphaVantageFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// alphaVantageDaily is the response shape: bars are keyed by date strings,
// every value is a string.
type alphaVantageDaily struct {
	TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`
	Note       string                       `json:"Note"`
	ErrorMsg   string                       `json:"Error Message"`
}

func (f *AlphaVantageFetcher) FetchDailyHistory(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	u := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&outputsize=full&apikey=%s",
		f.BaseURL, url.QueryEscape(symbol), url.QueryEscape(f.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var daily alphaVantageDaily
	if err := json.Unmarshal(body, &daily); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if daily.ErrorMsg != "" {
		return nil, fmt.Errorf("alphavantage api error: %s", daily.ErrorMsg)
	}
	if daily.Note != "" {
		return nil, fmt.Errorf("alphavantage throttled: %s", daily.Note)
	}
	if len(daily.TimeSeries) == 0 {
		return nil, fmt.Errorf("alphavantage: no data returned for %s", symbol)
	}

	dates := make([]string, 0, len(daily.TimeSeries))
	for d := range daily.TimeSeries {
		dates = append(dates, d)
	}
	sort.Strings(dates) // ISO dates, so lexical order is chronological

	points := make([]model.PricePoint, 0, len(dates))
	for _, d := range dates {
		values := daily.TimeSeries[d]
		closePrice, err := strconv.ParseFloat(values["4. close"], 64)
		if err != nil {
			continue // drop unparsable bars rather than failing the series
		}
		pt := model.PricePoint{Close: closePrice}
		if v, err := strconv.ParseFloat(values["5. volume"], 64); err == nil {
			pt.Volume = v
			pt.HasVolume = true
		}
		points = append(points, pt)
	}

	if len(points) > days {
		points = points[len(points)-days:]
	}
	return points, nil
}
