package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tomschnierer025/weedtracker/internal/config"
)

// Client exposes the reverse-geocoding lookup used at job save time.
type Client interface {
	RoadName(ctx context.Context, lat, lng float64) (string, error)
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road    string `json:"road"`
		Hamlet  string `json:"hamlet"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

// APIClient is a resty-backed Nominatim client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a reverse-geocoding client from the provided configuration.
func NewClient(cfg config.GeocodeConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(10 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// RoadName resolves a coordinate to the nearest named road, falling back to
// the locality and finally the full display name.
func (c *APIClient) RoadName(ctx context.Context, lat, lng float64) (string, error) {
	result := new(reverseResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    fmt.Sprintf("%.6f", lat),
			"lon":    fmt.Sprintf("%.6f", lng),
			"format": "jsonv2",
			"zoom":   "17",
		}).
		SetResult(result).
		Get("/reverse")
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("geocode provider returned status %d", resp.StatusCode())
	}

	for _, candidate := range []string{
		result.Address.Road,
		result.Address.Hamlet,
		result.Address.Village,
		result.Address.Town,
		result.DisplayName,
	} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no road name for %.6f,%.6f", lat, lng)
}
