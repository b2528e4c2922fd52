package forecast

import (
	"regexp"
	"testing"
	"time"

	"github.com/lox/weatherscreen/internal/models"
)

func TestHourLabel(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	day := time.Date(2026, 10, 14, 0, 0, 0, 0, loc)

	tests := []struct {
		hour int
		want string
	}{
		{0, "12 AM"},
		{1, "1 AM"},
		{11, "11 AM"},
		{12, "12 PM"},
		{15, "3 PM"},
		{23, "11 PM"},
	}

	for _, tt := range tests {
		ts := day.Add(time.Duration(tt.hour) * time.Hour).Unix()
		if got := HourLabel(ts, loc); got != tt.want {
			t.Errorf("HourLabel(hour %d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestHourLabel_UsesLocation(t *testing.T) {
	ts := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC).Unix()
	if got := HourLabel(ts, time.UTC); got != "12 PM" {
		t.Errorf("UTC label = %q, want 12 PM", got)
	}
	if got := HourLabel(ts, time.FixedZone("UTC+3", 3*3600)); got != "3 PM" {
		t.Errorf("UTC+3 label = %q, want 3 PM", got)
	}
}

func hourly(start time.Time, n int) []models.HourlyForecastPoint {
	points := make([]models.HourlyForecastPoint, n)
	for i := range points {
		points[i] = models.HourlyForecastPoint{
			Timestamp:   start.Add(time.Duration(i) * time.Hour).Unix(),
			Temperature: 20 + float64(i)/2,
		}
	}
	return points
}

func TestBuildChartSeries_Length(t *testing.T) {
	start := time.Date(2026, 10, 14, 22, 0, 0, 0, time.UTC)
	for _, n := range []int{0, 1, 4, 5, 6, 48} {
		series := BuildChartSeries(hourly(start, n), time.UTC)
		want := min(n, ChartPoints)
		if len(series.Labels) != want || len(series.Temps) != want {
			t.Errorf("n=%d: got %d labels, %d temps, want %d", n, len(series.Labels), len(series.Temps), want)
		}
	}
}

func TestBuildChartSeries_Aligned(t *testing.T) {
	start := time.Date(2026, 10, 14, 22, 0, 0, 0, time.UTC)
	points := hourly(start, 48)
	series := BuildChartSeries(points, time.UTC)

	wantLabels := []string{"10 PM", "11 PM", "12 AM", "1 AM", "2 AM"}
	for i := range series.Labels {
		if series.Labels[i] != wantLabels[i] {
			t.Errorf("labels[%d] = %q, want %q", i, series.Labels[i], wantLabels[i])
		}
		if series.Temps[i] != points[i].Temperature {
			t.Errorf("temps[%d] = %v, want %v", i, series.Temps[i], points[i].Temperature)
		}
		if series.Labels[i] != HourLabel(points[i].Timestamp, time.UTC) {
			t.Errorf("labels[%d] not derived from point %d", i, i)
		}
	}
}

func TestBuildChartSeries_KeepsProviderOrder(t *testing.T) {
	points := []models.HourlyForecastPoint{
		{Timestamp: time.Date(2026, 1, 1, 15, 0, 0, 0, time.UTC).Unix(), Temperature: 3},
		{Timestamp: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC).Unix(), Temperature: 1},
	}
	series := BuildChartSeries(points, time.UTC)
	if series.Labels[0] != "3 PM" || series.Labels[1] != "9 AM" {
		t.Errorf("labels = %v, want provider order [3 PM 9 AM]", series.Labels)
	}
}

func TestBuildChartSeries_Empty(t *testing.T) {
	series := BuildChartSeries(nil, time.UTC)
	if !series.Empty() || series.Len() != 0 {
		t.Errorf("series = %+v, want empty", series)
	}
}

func TestBuildChartSeries_FreshSlices(t *testing.T) {
	start := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	first := BuildChartSeries(hourly(start, 5), time.UTC)
	second := BuildChartSeries(hourly(start.Add(time.Hour), 2), time.UTC)

	if first.Labels[0] != "8 AM" {
		t.Errorf("first series mutated: %v", first.Labels)
	}
	if second.Len() != 2 {
		t.Errorf("second series has %d points, want 2", second.Len())
	}
}

func TestPointAnnotation(t *testing.T) {
	tests := []struct {
		temp float64
		want string
	}{
		{29.44, "29.4°C"},
		{33.06, "33.1°C"},
		{30, "30°C"},
		{-1.26, "-1.3°C"},
		{-2.25, "-2.2°C"},
		{-0.05, "0°C"},
		{2.25, "2.3°C"},
	}
	for _, tt := range tests {
		if got := PointAnnotation(tt.temp); got != tt.want {
			t.Errorf("PointAnnotation(%v) = %q, want %q", tt.temp, got, tt.want)
		}
	}
}

func TestAnnotated(t *testing.T) {
	var got []int
	for i := 0; i < 8; i++ {
		if Annotated(i) {
			got = append(got, i)
		}
	}
	if len(got) != 2 || got[0] != 0 || got[1] != ChartPoints-1 {
		t.Errorf("annotated indexes = %v, want [0 %d]", got, ChartPoints-1)
	}
}

func TestNewClockState(t *testing.T) {
	// 14 October 2026 is a Wednesday.
	now := time.Date(2026, 10, 14, 15, 7, 42, 0, time.UTC)
	clock := NewClockState(now)

	if clock.Weekday != "Wednesday" {
		t.Errorf("Weekday = %q, want Wednesday", clock.Weekday)
	}
	if clock.Time != "3:07 PM" {
		t.Errorf("Time = %q, want 3:07 PM", clock.Time)
	}

	twelveHour := regexp.MustCompile(`^(1[0-2]|[1-9]):[0-5][0-9] (AM|PM)$`)
	for h := 0; h < 24; h++ {
		c := NewClockState(time.Date(2026, 10, 14, h, 0, 0, 0, time.UTC))
		if !twelveHour.MatchString(c.Time) {
			t.Errorf("hour %d: Time = %q, not 12-hour format", h, c.Time)
		}
	}
}
