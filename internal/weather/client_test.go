package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lox/weatherscreen/internal/httputil"
	"github.com/lox/weatherscreen/internal/models"
)

const mumbaiWeather = `{
	"name": "Mumbai",
	"main": {"temp": 29.4, "feels_like": 33.1, "humidity": 70},
	"wind": {"speed": 4.1},
	"weather": [{"main": "Haze", "description": "haze"}]
}`

func newTestClient(t *testing.T, apiKey string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(apiKey, srv.URL, httputil.NewClient(httputil.DefaultTimeout))
}

func TestCurrentWeather(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != currentEndpoint {
			t.Errorf("path = %s, want %s", r.URL.Path, currentEndpoint)
		}
		q := r.URL.Query()
		if q.Get("q") != "Mumbai" || q.Get("appid") != "secret" || q.Get("units") != "metric" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, mumbaiWeather)
	})

	snap, err := client.CurrentWeather(context.Background(), "Mumbai")
	if err != nil {
		t.Fatalf("CurrentWeather: %v", err)
	}
	want := models.WeatherSnapshot{
		Temperature:     29.4,
		FeelsLike:       33.1,
		WindSpeed:       4.1,
		Humidity:        70,
		Description:     "haze",
		CityDisplayName: "Mumbai",
	}
	if *snap != want {
		t.Errorf("snapshot = %+v, want %+v", *snap, want)
	}
	if math.IsNaN(snap.Temperature) || math.IsInf(snap.Temperature, 0) {
		t.Error("temperature should be finite")
	}
}

func TestCurrentWeather_EmptyCity(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.CurrentWeather(context.Background(), "  ")
	if !errors.Is(err, ErrEmptyCity) {
		t.Fatalf("err = %v, want ErrEmptyCity", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no request, got %d", calls.Load())
	}
}

func TestCurrentWeather_MissingDescription(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"Nowhere","main":{"temp":10},"weather":[]}`)
	})

	_, err := client.CurrentWeather(context.Background(), "Nowhere")
	if !IsTransport(err) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestCurrentWeather_StatusErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
		wantMsg  string
	}{
		{"provider message", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, 404, "city not found"},
		{"unauthorized fallback", http.StatusUnauthorized, ``, 401, "invalid API key"},
		{"server error body", http.StatusInternalServerError, `boom`, 500, "boom"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.CurrentWeather(context.Background(), "Atlantis")
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("err = %v, want TransportError", err)
			}
			if te.StatusCode != tt.wantCode {
				t.Errorf("StatusCode = %d, want %d", te.StatusCode, tt.wantCode)
			}
			if te.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", te.Message, tt.wantMsg)
			}
			if te.Op != "weather" {
				t.Errorf("Op = %q, want weather", te.Op)
			}
		})
	}
}

func TestCurrentWeather_BadJSON(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"main":`)
	})

	_, err := client.CurrentWeather(context.Background(), "Mumbai")
	if !IsTransport(err) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestCurrentWeather_NetworkFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient("secret", url, httputil.NewClient(httputil.DefaultTimeout))
	_, err := client.CurrentWeather(context.Background(), "Mumbai")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.StatusCode != 0 || te.Err == nil {
		t.Errorf("expected wrapped network error, got %+v", te)
	}
}

func TestMissingAPIKey(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	ctx := context.Background()

	if _, err := client.CurrentWeather(ctx, "Mumbai"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("CurrentWeather err = %v, want ErrMissingAPIKey", err)
	}
	if _, err := client.HourlyForecast(ctx, models.Coordinates{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("HourlyForecast err = %v, want ErrMissingAPIKey", err)
	}
	if _, err := client.ReverseGeocode(ctx, models.Coordinates{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("ReverseGeocode err = %v, want ErrMissingAPIKey", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no requests without a key, got %d", calls.Load())
	}
}

func TestHourlyForecast_NotTruncated(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != onecallEndpoint {
			t.Errorf("path = %s, want %s", r.URL.Path, onecallEndpoint)
		}
		q := r.URL.Query()
		if q.Get("lat") != "19.076" || q.Get("lon") != "72.8777" {
			t.Errorf("unexpected coords: %s", r.URL.RawQuery)
		}
		if q.Get("exclude") != "minutely,daily" {
			t.Errorf("exclude = %q", q.Get("exclude"))
		}
		fmt.Fprint(w, hourlyJSON(1700000000, 48))
	})

	points, err := client.HourlyForecast(context.Background(), models.Coordinates{Latitude: 19.076, Longitude: 72.8777})
	if err != nil {
		t.Fatalf("HourlyForecast: %v", err)
	}
	if len(points) != 48 {
		t.Fatalf("got %d points, want 48", len(points))
	}
	if points[0].Timestamp != 1700000000 || points[47].Timestamp != 1700000000+47*3600 {
		t.Errorf("points out of provider order: first=%d last=%d", points[0].Timestamp, points[47].Timestamp)
	}
	if points[1].Temperature != 21 {
		t.Errorf("points[1].Temperature = %v, want 21", points[1].Temperature)
	}
}

func TestReverseGeocode(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != reverseEndpoint {
			t.Errorf("path = %s, want %s", r.URL.Path, reverseEndpoint)
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit = %q, want 1", r.URL.Query().Get("limit"))
		}
		fmt.Fprint(w, `[{"name":"Mumbai","country":"IN","state":"Maharashtra","lat":19.07,"lon":72.88}]`)
	})

	place, err := client.ReverseGeocode(context.Background(), models.Coordinates{Latitude: 19.076, Longitude: 72.8777})
	if err != nil {
		t.Fatalf("ReverseGeocode: %v", err)
	}
	if place == nil || place.Name != "Mumbai" || place.Country != "IN" {
		t.Errorf("place = %+v, want Mumbai, IN", place)
	}
}

func TestReverseGeocode_NoMatch(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	place, err := client.ReverseGeocode(context.Background(), models.Coordinates{})
	if err != nil {
		t.Fatalf("ReverseGeocode: %v", err)
	}
	if place != nil {
		t.Errorf("place = %+v, want nil", place)
	}
}

func TestTransportError_Error(t *testing.T) {
	err := &TransportError{Op: "onecall", StatusCode: 401, Message: "invalid API key"}
	if got := err.Error(); got != "onecall: status 401: invalid API key" {
		t.Errorf("Error() = %q", got)
	}
	wrapped := &TransportError{Op: "reverse", Err: errors.New("dial tcp: refused")}
	if !strings.Contains(wrapped.Error(), "dial tcp") {
		t.Errorf("Error() = %q, want wrapped cause", wrapped.Error())
	}
}

func hourlyJSON(start int64, n int) string {
	var b strings.Builder
	b.WriteString(`{"timezone":"Asia/Kolkata","hourly":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"dt":%d,"temp":%d}`, start+int64(i)*3600, 20+i)
	}
	b.WriteString("]}")
	return b.String()
}
