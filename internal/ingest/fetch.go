package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lox/weatherscreen/internal/location"
	"github.com/lox/weatherscreen/internal/models"
	"github.com/lox/weatherscreen/internal/store"
	"github.com/lox/weatherscreen/internal/weather"
)

type event interface{ isEvent() }

type coordsAcquired struct{ coords models.Coordinates }

type locationFailed struct{ err error }

type cityResolved struct{ name string }

type weatherArrived struct{ snapshot *models.WeatherSnapshot }

type forecastArrived struct{ points []models.HourlyForecastPoint }

func (coordsAcquired) isEvent()  {}
func (locationFailed) isEvent()  {}
func (cityResolved) isEvent()    {}
func (weatherArrived) isEvent()  {}
func (forecastArrived) isEvent() {}

func (s *Sequence) acquireLocation(ctx context.Context) {
	run := s.startFetch("location", s.locator.Name())
	coords, err := location.RequestCoordinates(ctx, s.locator)
	s.completeFetch(run, err, 1)

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, location.ErrPermissionDenied) {
			log.Printf("sequence: location permission denied")
		} else {
			log.Printf("sequence: acquire location: %v", err)
		}
		s.post(ctx, locationFailed{err: err})
		return
	}
	s.post(ctx, coordsAcquired{coords: coords})
}

func (s *Sequence) resolveCity(ctx context.Context, coords models.Coordinates) {
	run := s.startFetch("reverse", coordsTarget(coords))
	place, err := s.weather.ReverseGeocode(ctx, coords)
	if err != nil {
		s.completeFetch(run, err, 0)
		log.Printf("sequence: reverse geocode: %v", err)
		return
	}
	if place == nil {
		s.completeFetch(run, nil, 0)
		log.Printf("sequence: reverse geocode: no place near %s", coordsTarget(coords))
		return
	}
	s.completeFetch(run, nil, 1)
	s.post(ctx, cityResolved{name: place.Name})
}

func (s *Sequence) fetchWeather(ctx context.Context, city string) {
	run := s.startFetch("weather", city)
	snap, err := s.weather.CurrentWeather(ctx, city)
	if err != nil {
		s.completeFetch(run, err, 0)
		log.Printf("sequence: fetch weather for %s: %v", city, err)
		return
	}
	s.completeFetch(run, nil, 1)
	s.post(ctx, weatherArrived{snapshot: snap})
}

func (s *Sequence) fetchForecast(ctx context.Context, coords models.Coordinates) {
	run := s.startFetch("onecall", coordsTarget(coords))
	points, err := s.weather.HourlyForecast(ctx, coords)
	if err != nil {
		s.completeFetch(run, err, 0)
		log.Printf("sequence: fetch hourly forecast: %v", err)
		return
	}
	s.completeFetch(run, nil, len(points))
	s.post(ctx, forecastArrived{points: points})
}

func (s *Sequence) startFetch(kind, target string) *store.Fetch {
	if s.journal == nil {
		return nil
	}
	run, err := s.journal.StartFetch(kind, target)
	if err != nil {
		log.Printf("sequence: journal start %s: %v", kind, err)
		return nil
	}
	return run
}

func (s *Sequence) completeFetch(run *store.Fetch, err error, records int) {
	if s.journal == nil || run == nil {
		return
	}
	run.Success = err == nil
	run.Records = sql.NullInt64{Int64: int64(records), Valid: err == nil}
	if err != nil {
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		var te *weather.TransportError
		if errors.As(err, &te) && te.StatusCode != 0 {
			run.HTTPStatus = sql.NullInt64{Int64: int64(te.StatusCode), Valid: true}
		}
	}
	if err := s.journal.CompleteFetch(run); err != nil {
		log.Printf("sequence: journal complete %s: %v", run.Kind, err)
	}
}

func coordsTarget(c models.Coordinates) string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}
