// Package openweather implements the pollution data provider against the
// OpenWeatherMap Air Pollution API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/aqi"
	"github.com/airsight/airsight/internal/provider/resilience"
)

const (
	// ProviderName identifies this pollution provider.
	ProviderName = "openweather"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to OpenWeatherMap).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a
	// single-attempt resilient client is used: the gateway service owns
	// the retry schedule, the client only contributes the breaker.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap Air Pollution API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.SingleAttemptConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrent fetches the current pollution reading for a location.
func (c *Client) GetCurrent(ctx context.Context, lat, lon float64) (*airquality.Reading, error) {
	url := fmt.Sprintf("%s/air_pollution?lat=%.6f&lon=%.6f&appid=%s",
		c.baseURL, lat, lon, c.apiKey)

	resp, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if len(resp.List) == 0 {
		// A 200 with no observation list is not a success.
		return nil, airquality.ErrInvalidUpstreamResponse
	}

	reading := toReading(&resp.List[0])
	return &reading, nil
}

// GetForecast fetches hourly pollution forecast readings for a location.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) ([]airquality.Reading, error) {
	url := fmt.Sprintf("%s/air_pollution/forecast?lat=%.6f&lon=%.6f&appid=%s",
		c.baseURL, lat, lon, c.apiKey)

	resp, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	readings := make([]airquality.Reading, 0, len(resp.List))
	for i := range resp.List {
		readings = append(readings, toReading(&resp.List[i]))
	}
	return readings, nil
}

// fetch executes a GET and decodes the shared pollution response shape.
func (c *Client) fetch(ctx context.Context, url string) (*pollutionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var owmResp pollutionResponse
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", airquality.ErrInvalidUpstreamResponse)
	}

	return &owmResp, nil
}

// toReading converts one OpenWeatherMap list entry to the domain model.
func toReading(entry *pollutionEntry) airquality.Reading {
	return airquality.Reading{
		SourceAQI: entry.Main.AQI,
		Components: aqi.Concentrations{
			CO:   entry.Components.CO,
			NO:   entry.Components.NO,
			NO2:  entry.Components.NO2,
			O3:   entry.Components.O3,
			SO2:  entry.Components.SO2,
			PM25: entry.Components.PM25,
			PM10: entry.Components.PM10,
			NH3:  entry.Components.NH3,
		},
		ObservedAt: time.Unix(entry.Dt, 0),
	}
}

// OpenWeatherMap API response structures.

type pollutionResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	List []pollutionEntry `json:"list"`
}

type pollutionEntry struct {
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components struct {
		CO   float64 `json:"co"`
		NO   float64 `json:"no"`
		NO2  float64 `json:"no2"`
		O3   float64 `json:"o3"`
		SO2  float64 `json:"so2"`
		PM25 float64 `json:"pm2_5"`
		PM10 float64 `json:"pm10"`
		NH3  float64 `json:"nh3"`
	} `json:"components"`
	Dt int64 `json:"dt"`
}
