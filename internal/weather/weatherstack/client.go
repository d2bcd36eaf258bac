package weatherstack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/namefreezers/weather-lookup-service/internal/config"
	"github.com/namefreezers/weather-lookup-service/internal/weather/types"
)

// Client queries the Weatherstack current endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient returns a new Client. An empty API key is accepted; Weatherstack
// rejects the request and the failure surfaces on the first lookup.
// A nil httpClient means http.DefaultClient.
func NewClient(cfg *config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:  cfg.WeatherstackAPIKey,
		baseURL: strings.TrimRight(cfg.WeatherstackBaseURL, "/"),
		http:    httpClient,
	}
}

// apiError is the error object Weatherstack embeds in a 200 response.
type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type currentResponse struct {
	Error    *apiError `json:"error"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		Temperature         *float64 `json:"temperature"`
		WeatherDescriptions []string `json:"weather_descriptions"`
	} `json:"current"`
}

// FetchCurrent implements weather.Fetcher.
// Any error object in the payload is reported as types.ErrCityNotFound;
// network errors, non-200 statuses, undecodable bodies and payloads without
// a location name or temperature are returned as plain errors.
func (c *Client) FetchCurrent(ctx context.Context, city string) (types.Weather, error) {
	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("query", city)
	u := c.baseURL + "/current?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.Weather{}, fmt.Errorf("weatherstack: failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Weather{}, fmt.Errorf("weatherstack: HTTP request failed: %w", redactKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Weather{}, fmt.Errorf(
			"weatherstack: unexpected status %d %s",
			resp.StatusCode, http.StatusText(resp.StatusCode),
		)
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Weather{}, fmt.Errorf("weatherstack: JSON decode error: %w", err)
	}
	if body.Error != nil {
		return types.Weather{}, fmt.Errorf("weatherstack: %w (code %d, %s: %s)",
			types.ErrCityNotFound, body.Error.Code, body.Error.Type, body.Error.Info)
	}

	if body.Location.Name == "" {
		return types.Weather{}, fmt.Errorf("weatherstack: no location name in response")
	}
	if body.Current.Temperature == nil {
		return types.Weather{}, fmt.Errorf("weatherstack: no temperature in response")
	}

	return types.Weather{
		City:         body.Location.Name,
		Temp:         *body.Current.Temperature,
		Descriptions: body.Current.WeatherDescriptions,
	}, nil
}

// redactKey strips the access key from the URL quoted in transport errors.
func redactKey(err error, key string) error {
	var uerr *url.Error
	if key != "" && errors.As(err, &uerr) {
		uerr.URL = strings.ReplaceAll(uerr.URL, key, "REDACTED")
	}
	return err
}
