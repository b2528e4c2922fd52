package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lox/weatherscreen/internal/metrics"
	"github.com/lox/weatherscreen/internal/models"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org"

	currentEndpoint = "/data/2.5/weather"
	onecallEndpoint = "/data/3.0/onecall"
	reverseEndpoint = "/geo/1.0/reverse"

	userAgent = "WeatherScreen/1.0"
)

// Client talks to the OpenWeather API. It keeps no state between calls.
type Client struct {
	apiKey string
	rc     *resty.Client
}

// NewClient creates a client for baseURL using hc as the underlying transport.
func NewClient(apiKey, baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		apiKey: apiKey,
		rc:     rc,
	}
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

type onecallResponse struct {
	Timezone string                       `json:"timezone"`
	Hourly   []models.HourlyForecastPoint `json:"hourly"`
}

type reversePlace struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentWeather fetches current conditions for a city in metric units.
func (c *Client) CurrentWeather(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyCity
	}

	var data currentResponse
	if err := c.get(ctx, "weather", currentEndpoint, map[string]string{
		"q":     city,
		"units": "metric",
	}, &data); err != nil {
		return nil, err
	}

	if len(data.Weather) == 0 || data.Weather[0].Description == "" {
		return nil, &TransportError{Op: "weather", Message: "response has no weather description"}
	}

	return &models.WeatherSnapshot{
		Temperature:     data.Main.Temp,
		FeelsLike:       data.Main.FeelsLike,
		WindSpeed:       data.Wind.Speed,
		Humidity:        data.Main.Humidity,
		Description:     data.Weather[0].Description,
		CityDisplayName: data.Name,
	}, nil
}

// HourlyForecast returns every hourly point the provider sends, in provider order.
func (c *Client) HourlyForecast(ctx context.Context, coords models.Coordinates) ([]models.HourlyForecastPoint, error) {
	var data onecallResponse
	if err := c.get(ctx, "onecall", onecallEndpoint, map[string]string{
		"lat":     formatCoord(coords.Latitude),
		"lon":     formatCoord(coords.Longitude),
		"exclude": "minutely,daily",
		"units":   "metric",
	}, &data); err != nil {
		return nil, err
	}
	return data.Hourly, nil
}

// ReverseGeocode returns the nearest named place, or nil if there is none.
func (c *Client) ReverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Place, error) {
	var places []reversePlace
	if err := c.get(ctx, "reverse", reverseEndpoint, map[string]string{
		"lat":   formatCoord(coords.Latitude),
		"lon":   formatCoord(coords.Longitude),
		"limit": "1",
	}, &places); err != nil {
		return nil, err
	}

	if len(places) == 0 || places[0].Name == "" {
		return nil, nil
	}
	p := places[0]
	return &models.Place{
		Name:      p.Name,
		Country:   p.Country,
		State:     p.State,
		Latitude:  p.Lat,
		Longitude: p.Lon,
	}, nil
}

func (c *Client) get(ctx context.Context, op, endpoint string, params map[string]string, out any) error {
	if c.apiKey == "" {
		metrics.APICallsTotal.WithLabelValues(op, "no_key").Inc()
		return &TransportError{Op: op, Err: ErrMissingAPIKey}
	}
	params["appid"] = c.apiKey

	start := time.Now()
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	metrics.APILatency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.APICallsTotal.WithLabelValues(op, "error").Inc()
		return &TransportError{Op: op, Err: err}
	}
	metrics.APICallsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode())).Inc()

	if !resp.IsSuccess() {
		return statusError(op, resp)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode(), Err: fmt.Errorf("unmarshal: %w", err)}
	}
	return nil
}

// statusError builds a TransportError from a non-2xx response, preferring the
// provider's own message.
func statusError(op string, resp *resty.Response) error {
	var apiErr struct {
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Message != "" {
		msg = apiErr.Message
	} else {
		switch resp.StatusCode() {
		case http.StatusUnauthorized:
			msg = "invalid API key"
		case http.StatusNotFound:
			msg = "not found"
		case http.StatusTooManyRequests:
			msg = "rate limited"
		default:
			msg = strings.TrimSpace(string(resp.Body()))
		}
	}
	return &TransportError{Op: op, StatusCode: resp.StatusCode(), Message: msg}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
