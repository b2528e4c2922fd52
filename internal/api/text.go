package api

import (
	"fmt"
	"io"
	"strings"
)

// WriteText renders the screen for a terminal.
func WriteText(w io.Writer, d ScreenData) error {
	var b strings.Builder

	switch {
	case d.ErrorMessage != "":
		fmt.Fprintf(&b, "%s\n", d.ErrorMessage)
	case !d.Loaded:
		fmt.Fprintf(&b, "Loading weather...\n")
	default:
		fmt.Fprintf(&b, "%s°C  %s\n", d.Temperature, d.Description)
		fmt.Fprintf(&b, "%s\n", d.City)
		fmt.Fprintf(&b, "%s %s\n\n", d.Weekday, d.Time)
		fmt.Fprintf(&b, "Feels Like  %s\n", d.FeelsLike)
		fmt.Fprintf(&b, "Wind        %s\n", d.Wind)
		fmt.Fprintf(&b, "Humidity    %s\n", d.Humidity)
	}

	if d.Loaded && d.HasChart && d.ErrorMessage == "" {
		b.WriteString("\n")
		for i, label := range d.ChartLabels {
			fmt.Fprintf(&b, "%-6s %5.1f°C %s\n", label, d.ChartTemps[i], bar(d.ChartTemps, i))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// bar draws temps[i] relative to the series range.
func bar(temps []float64, i int) string {
	const width = 20
	lo, hi := temps[0], temps[0]
	for _, t := range temps {
		lo = min(lo, t)
		hi = max(hi, t)
	}
	n := width / 2
	if hi > lo {
		n = 1 + int(float64(width-1)*(temps[i]-lo)/(hi-lo))
	}
	return strings.Repeat("#", n)
}
