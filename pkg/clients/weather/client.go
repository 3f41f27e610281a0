package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tomschnierer025/weedtracker/internal/config"
)

// Client exposes the current-conditions lookup used at job save time.
type Client interface {
	Current(ctx context.Context, lat, lng float64) (*Conditions, error)
}

// Conditions is the subset of the forecast response the tracker records.
type Conditions struct {
	Temperature float64
	WindSpeed   float64
	Humidity    float64
}

type forecastResponse struct {
	Current struct {
		Temperature2m      float64 `json:"temperature_2m"`
		WindSpeed10m       float64 `json:"wind_speed_10m"`
		RelativeHumidity2m float64 `json:"relative_humidity_2m"`
	} `json:"current"`
}

// APIClient is a resty-backed Open-Meteo client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a weather client from the provided configuration values.
func NewClient(cfg config.WeatherConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// Current fetches temperature, wind speed and humidity for a coordinate.
func (c *APIClient) Current(ctx context.Context, lat, lng float64) (*Conditions, error) {
	result := new(forecastResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  fmt.Sprintf("%.5f", lat),
			"longitude": fmt.Sprintf("%.5f", lng),
			"current":   "temperature_2m,wind_speed_10m,relative_humidity_2m",
		}).
		SetResult(result).
		Get("/v1/forecast")
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather provider returned status %d", resp.StatusCode())
	}

	return &Conditions{
		Temperature: result.Current.Temperature2m,
		WindSpeed:   result.Current.WindSpeed10m,
		Humidity:    result.Current.RelativeHumidity2m,
	}, nil
}
