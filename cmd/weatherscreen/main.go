package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/weatherscreen/internal/api"
	"github.com/lox/weatherscreen/internal/httputil"
	"github.com/lox/weatherscreen/internal/ingest"
	"github.com/lox/weatherscreen/internal/location"
	"github.com/lox/weatherscreen/internal/models"
	"github.com/lox/weatherscreen/internal/store"
	"github.com/lox/weatherscreen/internal/weather"
)

type Globals struct {
	EnvFile kongdotenv.ENVFileConfig `embed:""`

	APIKey      string        `name:"api-key" env:"OPENWEATHER_API_KEY" help:"OpenWeather API key."`
	BaseURL     string        `name:"base-url" env:"WEATHER_BASE_URL" default:"${weather_base_url}" help:"OpenWeather API base URL."`
	Location    string        `name:"location" env:"LOCATION_MODE" enum:"static,ip" default:"static" help:"Location provider (static or ip)."`
	Lat         float64       `name:"lat" env:"LOCATION_LAT" default:"19.076" help:"Latitude for the static provider."`
	Lon         float64       `name:"lon" env:"LOCATION_LON" default:"72.8777" help:"Longitude for the static provider."`
	GeoIPURL    string        `name:"geoip-url" env:"GEOIP_BASE_URL" default:"${geoip_base_url}" help:"IP geolocation base URL."`
	City        string        `name:"city" env:"WEATHER_CITY" help:"Use this city instead of reverse geocoding."`
	DenyLoc     bool          `name:"deny-location" env:"DENY_LOCATION" help:"Refuse location permission."`
	TZ          string        `name:"tz" env:"TZ_NAME" default:"Local" help:"Time zone for the clock and chart labels."`
	HTTPTimeout time.Duration `name:"http-timeout" env:"HTTP_TIMEOUT" default:"0s" help:"Per-request timeout, 0 for none."`
	JournalDSN  string        `name:"journal" env:"JOURNAL_DSN" default:"${journal_dsn}" help:"SQLite DSN for the fetch journal."`
}

type CLI struct {
	Globals

	Serve ServeCmd `cmd:"" help:"Serve the weather screen over HTTP."`
	Show  ShowCmd  `cmd:"" help:"Load the weather once and print it."`
}

type ServeCmd struct {
	Port string `env:"PORT" default:"8080" help:"HTTP server port."`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	seq, journal, err := g.build()
	if err != nil {
		return err
	}
	defer journal.Close()

	done := make(chan error, 1)
	go func() { done <- seq.Run(ctx) }()

	server := api.NewServer(seq, journal, c.Port)
	log.Printf("starting server on :%s", c.Port)
	if err := server.Run(ctx); err != nil {
		cancel()
		<-done
		return fmt.Errorf("server: %w", err)
	}
	return <-done
}

type ShowCmd struct {
	Wait time.Duration `default:"15s" help:"Give up waiting for data after this long."`
}

func (c *ShowCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	seq, journal, err := g.build()
	if err != nil {
		return err
	}
	defer journal.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- seq.Run(runCtx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, c.Wait)
	vm, err := seq.Await(waitCtx, func(vm models.ViewModel) bool {
		return vm.Halted() || (vm.Loaded() && !vm.Chart.Empty())
	})
	waitCancel()
	if errors.Is(err, context.DeadlineExceeded) {
		log.Printf("show: gave up after %s", c.Wait)
	}

	stop()
	if err := <-done; err != nil {
		return err
	}
	return api.WriteText(os.Stdout, api.NewScreenData(vm))
}

// build wires the sequence from configuration.
func (g *Globals) build() (*ingest.Sequence, *store.Store, error) {
	loc, err := time.LoadLocation(g.TZ)
	if err != nil {
		log.Printf("Warning: could not load %s timezone, using UTC: %v", g.TZ, err)
		loc = time.UTC
	}

	if g.APIKey == "" {
		log.Println("Warning: OPENWEATHER_API_KEY not set, requests will fail")
	}

	hc := httputil.NewClient(g.HTTPTimeout)
	client := weather.NewClient(g.APIKey, g.BaseURL, hc)

	var locator location.Provider
	switch g.Location {
	case "ip":
		locator = location.NewIPLookup(g.GeoIPURL, hc, !g.DenyLoc)
	default:
		locator = location.NewStatic(models.Coordinates{Latitude: g.Lat, Longitude: g.Lon}, !g.DenyLoc)
	}

	journal, err := store.Open(g.JournalDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	seq := ingest.NewSequence(client, locator, loc)
	seq.SetJournal(journal)
	seq.SetCityOverride(g.City)
	return seq, journal, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("weatherscreen"),
		kong.Description("Current weather and the next hours for where you are."),
		kong.UsageOnError(),
		kong.Vars{
			"weather_base_url": weather.DefaultBaseURL,
			"geoip_base_url":   location.DefaultGeoIPBaseURL,
			"journal_dsn":      store.DefaultDSN,
		},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
