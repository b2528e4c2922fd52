package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/lox/weatherscreen/internal/models"
)

// ChartPoints is the number of upcoming hours shown on the chart.
const ChartPoints = 5

// BuildChartSeries takes the first ChartPoints entries in provider order and
// labels each with its local hour. The result never shares memory with a
// previous series.
func BuildChartSeries(points []models.HourlyForecastPoint, loc *time.Location) models.ChartSeries {
	n := min(len(points), ChartPoints)
	series := models.ChartSeries{
		Labels: make([]string, 0, n),
		Temps:  make([]float64, 0, n),
	}
	for _, p := range points[:n] {
		series.Labels = append(series.Labels, HourLabel(p.Timestamp, loc))
		series.Temps = append(series.Temps, p.Temperature)
	}
	return series
}

// HourLabel formats a unix timestamp as a 12-hour label like "3 PM".
// Midnight and noon both render as 12.
func HourLabel(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	hour := time.Unix(ts, 0).In(loc).Hour()
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d %s", hour12, suffix)
}

// Annotated reports whether the dot at index i carries a temperature label.
// Only the first dot and the dot in the last chart slot are labelled, so a
// short series shows a single annotation.
func Annotated(i int) bool {
	return i == 0 || i == ChartPoints-1
}

// PointAnnotation is the temperature label drawn over an annotated dot.
func PointAnnotation(temp float64) string {
	return fmt.Sprintf("%s°C", formatTenths(temp))
}

func formatTenths(v float64) string {
	// Halves round towards +Inf, so -2.25 shows as -2.2.
	r := math.Floor(v*10+0.5) / 10
	if r == math.Trunc(r) {
		return fmt.Sprintf("%.0f", r)
	}
	return fmt.Sprintf("%.1f", r)
}
