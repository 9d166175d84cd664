package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"syscall"

	"github.com/neexbeast/skycast/internal/weather"
)

// DefaultBaseURL is the World Weather Online premium API root.
const DefaultBaseURL = "https://api.worldweatheronline.com/premium/v1"

const (
	searchPath   = "/search.ashx"
	forecastPath = "/weather.ashx"
	forecastDays = "5"
)

// Client talks to the World Weather Online search and forecast endpoints.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient constructs a Client against the production API.
func NewClient(apiKey string) *Client {
	return NewClientWithURL(DefaultBaseURL, apiKey)
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL, apiKey string) *Client {
	return &Client{apiKey: apiKey, baseURL: baseURL, client: &http.Client{}}
}

// Search looks up places matching text. A no-match answer is an empty slice.
func (c *Client) Search(ctx context.Context, text string) ([]weather.Place, error) {
	body, err := c.get(ctx, searchPath, c.query(text))
	if err != nil {
		return nil, err
	}
	return weather.DecodeSearchResponse(body)
}

// FetchForecast fetches current conditions and a 5-day hourly forecast for
// a location descriptor such as weather.Place.Query().
func (c *Client) FetchForecast(ctx context.Context, location string) (*weather.LocalWeather, error) {
	q := c.query(location)
	q.Set("num_of_days", forecastDays)
	q.Set("fx", "yes")
	q.Set("cc", "yes")
	q.Set("mca", "no")
	q.Set("includelocation", "no")
	q.Set("show_comments", "no")
	q.Set("tp", "1")

	body, err := c.get(ctx, forecastPath, q)
	if err != nil {
		return nil, err
	}
	return weather.DecodeWeatherResponse(body)
}

func (c *Client) query(text string) url.Values {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", text)
	q.Set("format", "json")
	return q
}

// get performs a GET and returns the body of a 2xx response. Failures are
// mapped onto ErrUnknown and *StatusError.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	rawURL := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrUnknown, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	if resp == nil {
		return nil, ErrUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	return body, nil
}

func transportError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &StatusError{Code: int(errno), Err: err}
	}
	return &StatusError{Code: TransportFailure, Err: err}
}
