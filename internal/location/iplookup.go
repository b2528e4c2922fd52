package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/lox/weatherscreen/internal/models"
)

const DefaultGeoIPBaseURL = "http://ip-api.com"

// IPLookup estimates the host position from its public IP address.
type IPLookup struct {
	consent
	rc *resty.Client
}

func NewIPLookup(baseURL string, hc *http.Client, allowed bool) *IPLookup {
	if baseURL == "" {
		baseURL = DefaultGeoIPBaseURL
	}
	return &IPLookup{
		consent: consent(allowed),
		rc: resty.NewWithClient(hc).
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json"),
	}
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

func (p *IPLookup) Name() string { return "ip" }

func (p *IPLookup) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	resp, err := p.rc.R().
		SetContext(ctx).
		SetQueryParam("fields", "status,message,lat,lon,city").
		Get("/json/")
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("ip lookup: %w", err)
	}
	if !resp.IsSuccess() {
		return models.Coordinates{}, fmt.Errorf("ip lookup: status %d", resp.StatusCode())
	}

	var data ipResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return models.Coordinates{}, fmt.Errorf("ip lookup: unmarshal: %w", err)
	}
	if data.Status != "success" {
		return models.Coordinates{}, fmt.Errorf("ip lookup: %s %s", data.Status, data.Message)
	}

	coords := models.Coordinates{Latitude: data.Lat, Longitude: data.Lon}
	if !validCoordinates(coords) {
		return models.Coordinates{}, fmt.Errorf("ip lookup: coordinates out of range: %.4f,%.4f", data.Lat, data.Lon)
	}
	return coords, nil
}
