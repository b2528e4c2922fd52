package api

import (
	"fmt"
	"math"
	"strings"

	"github.com/lox/weatherscreen/internal/forecast"
	"github.com/lox/weatherscreen/internal/models"
)

// compactCityLen is the city name length above which the name is drawn smaller.
const compactCityLen = 10

// ScreenData is the ViewModel formatted for display.
type ScreenData struct {
	Loaded       bool
	ErrorMessage string

	Temperature string // "29", the unit is drawn separately
	FeelsLike   string // "33°C"
	Wind        string // "14.8 Km/h"
	Humidity    string // "70%"
	City        string // upper-cased display name
	CompactCity bool
	Description string   // upper-cased
	Letters     []string // Description split for vertical display

	Weekday string
	Time    string

	HasChart        bool
	ChartLabels     []string
	ChartTemps      []float64
	FirstAnnotation string
	LastAnnotation  string // empty unless the final chart slot is filled
}

func NewScreenData(vm models.ViewModel) ScreenData {
	d := ScreenData{
		Loaded:       vm.Loaded(),
		ErrorMessage: vm.ErrorMessage,
		Weekday:      vm.Clock.Weekday,
		Time:         vm.Clock.Time,
	}

	if w := vm.Weather; w != nil {
		name := w.CityDisplayName
		if name == "" {
			name = vm.City
		}
		d.Temperature = fmt.Sprintf("%d", roundHalfUp(w.Temperature))
		d.FeelsLike = fmt.Sprintf("%d°C", roundHalfUp(w.FeelsLike))
		d.Wind = fmt.Sprintf("%.1f Km/h", KilometresPerHour(w.WindSpeed))
		d.Humidity = fmt.Sprintf("%d%%", w.Humidity)
		d.City = strings.ToUpper(name)
		d.CompactCity = len([]rune(name)) > compactCityLen
		d.Description = strings.ToUpper(w.Description)
		d.Letters = strings.Split(d.Description, "")
	}

	if !vm.Chart.Empty() {
		d.HasChart = true
		d.ChartLabels = vm.Chart.Labels
		d.ChartTemps = vm.Chart.Temps
		d.FirstAnnotation = forecast.PointAnnotation(vm.Chart.Temps[0])
		if last := len(vm.Chart.Temps) - 1; last > 0 && forecast.Annotated(last) {
			d.LastAnnotation = forecast.PointAnnotation(vm.Chart.Temps[last])
		}
	}
	return d
}

// KilometresPerHour converts a wind speed from m/s.
func KilometresPerHour(ms float64) float64 {
	return ms * 3.6
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
