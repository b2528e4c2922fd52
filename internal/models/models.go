package models

import "time"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a reverse geocode match.
type Place struct {
	Name      string
	Country   string
	State     string
	Latitude  float64
	Longitude float64
}

type WeatherSnapshot struct {
	Temperature     float64 `json:"temperature"` // °C
	FeelsLike       float64 `json:"feels_like"`
	WindSpeed       float64 `json:"wind_speed"` // m/s
	Humidity        int     `json:"humidity"`   // percent
	Description     string  `json:"description"`
	CityDisplayName string  `json:"city"`
}

type HourlyForecastPoint struct {
	Timestamp   int64   `json:"dt"` // unix seconds
	Temperature float64 `json:"temp"`
}

// ChartSeries holds index-aligned labels and temperatures, at most five of each.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Temps  []float64 `json:"temps"`
}

func (c ChartSeries) Len() int {
	return len(c.Temps)
}

func (c ChartSeries) Empty() bool {
	return len(c.Temps) == 0
}

type ClockState struct {
	Weekday string `json:"weekday"`
	Time    string `json:"time"`
}

// ViewModel is a point-in-time copy of everything the screen renders.
type ViewModel struct {
	Coordinates  *Coordinates     `json:"coordinates,omitempty"`
	City         string           `json:"city,omitempty"`
	Weather      *WeatherSnapshot `json:"weather"`
	Chart        ChartSeries      `json:"chart"`
	Clock        ClockState       `json:"clock"`
	ErrorMessage string           `json:"error,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Loaded reports whether a weather snapshot has arrived.
func (v ViewModel) Loaded() bool {
	return v.Weather != nil
}

// Halted reports whether location acquisition failed, which stops the pipeline.
func (v ViewModel) Halted() bool {
	return v.ErrorMessage != ""
}
