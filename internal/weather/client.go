package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenWeatherMap current conditions endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// StatusSuccess is the provider's "cod" value for a found city.
const StatusSuccess = 200

// Client handles OpenWeatherMap API interactions.
type Client struct {
	APIKey     string
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		APIKey:    apiKey,
		BaseURL:   baseURL,
		UserAgent: "wthr-widget/1.0",
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// get returns the body and HTTP status. Non-2xx statuses are not errors
// here because the provider reports "city not found" in the body.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// StatusCode is the provider's "cod" field, sent as a number on success
// and as a string on errors.
type StatusCode int

func (s *StatusCode) UnmarshalJSON(b []byte) error {
	str := strings.Trim(string(b), `"`)
	if str == "" || str == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("invalid cod %s: %w", b, err)
	}
	*s = StatusCode(n)
	return nil
}

// CurrentResponse represents the /data/2.5/weather response.
type CurrentResponse struct {
	Cod     StatusCode `json:"cod"`
	Message string     `json:"message,omitempty"`
	Name    string     `json:"name"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
}

// FetchCurrent requests current conditions for city in metric units.
// A provider-reported failure comes back as a response with a non-200 Cod;
// err is reserved for transport and decoding failures.
func (c *Client) FetchCurrent(ctx context.Context, city string) (*CurrentResponse, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.APIKey)
	params.Set("units", "metric")
	requestURL := c.BaseURL + "?" + params.Encode()

	data, status, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, fmt.Errorf("request current weather: %w", err)
	}

	var cr CurrentResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		if status < 200 || status > 299 {
			return nil, fmt.Errorf("OpenWeatherMap API error: %d %s", status, http.StatusText(status))
		}
		return nil, fmt.Errorf("decode current weather: %w", err)
	}
	return &cr, nil
}

// IconURL builds the 4x icon image reference for an icon id.
func IconURL(base, icon string) string {
	return strings.TrimRight(base, "/") + "/" + icon + "@4x.png"
}
