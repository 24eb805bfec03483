// Package osm fetches map features relevant to air quality from the
// OpenStreetMap Overpass API.
package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "overpass"

	// DefaultBaseURL is the public Overpass interpreter endpoint.
	DefaultBaseURL = "https://overpass-api.de/api"

	// DefaultRadius is the search radius in meters when the caller
	// does not set one.
	DefaultRadius = 2000
)

// Feature is one map element near the queried location.
type Feature struct {
	ID       int64             `json:"id"`
	Type     string            `json:"type"`
	Category string            `json:"category"`
	Name     string            `json:"name,omitempty"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// FeatureCollection groups features by air quality relevance.
type FeatureCollection struct {
	Features []Feature      `json:"features"`
	Counts   map[string]int `json:"counts"`
}

// ClientConfig holds configuration for the Overpass client.
type ClientConfig struct {
	// BaseURL is the Overpass endpoint (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client queries the Overpass API.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates an Overpass client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// GetFeatures returns green, industrial and traffic features within radius
// meters of the coordinates.
func (c *Client) GetFeatures(ctx context.Context, lat, lon float64, radius int) (*FeatureCollection, error) {
	if radius <= 0 {
		radius = DefaultRadius
	}

	query := buildQuery(lat, lon, radius)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/interpreter", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var overpassResp overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return toCollection(overpassResp.Elements), nil
}

// buildQuery asks Overpass for parks/forests, industrial land use and major
// roads around the point, with way centers resolved.
func buildQuery(lat, lon float64, radius int) string {
	return fmt.Sprintf(`[out:json][timeout:25];
(
  nwr["leisure"="park"](around:%d,%f,%f);
  nwr["landuse"~"forest|grass|meadow"](around:%d,%f,%f);
  nwr["landuse"="industrial"](around:%d,%f,%f);
  way["highway"~"motorway|trunk|primary"](around:%d,%f,%f);
);
out center %d;`,
		radius, lat, lon,
		radius, lat, lon,
		radius, lat, lon,
		radius, lat, lon,
		200)
}

func toCollection(elements []overpassElement) *FeatureCollection {
	features := make([]Feature, 0, len(elements))
	counts := map[string]int{"green": 0, "industrial": 0, "traffic": 0}

	for _, el := range elements {
		category := categorize(el.Tags)
		if category == "" {
			continue
		}

		lat, lon := el.Lat, el.Lon
		if el.Center != nil {
			lat, lon = el.Center.Lat, el.Center.Lon
		}

		features = append(features, Feature{
			ID:       el.ID,
			Type:     el.Type,
			Category: category,
			Name:     el.Tags["name"],
			Lat:      lat,
			Lon:      lon,
			Tags:     el.Tags,
		})
		counts[category]++
	}

	return &FeatureCollection{Features: features, Counts: counts}
}

func categorize(tags map[string]string) string {
	switch {
	case tags["leisure"] == "park",
		tags["landuse"] == "forest",
		tags["landuse"] == "grass",
		tags["landuse"] == "meadow":
		return "green"
	case tags["landuse"] == "industrial":
		return "industrial"
	case tags["highway"] != "":
		return "traffic"
	default:
		return ""
	}
}

// Overpass API response structures.

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
