package ingest

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lox/weatherscreen/internal/forecast"
	"github.com/lox/weatherscreen/internal/location"
	"github.com/lox/weatherscreen/internal/metrics"
	"github.com/lox/weatherscreen/internal/models"
	"github.com/lox/weatherscreen/internal/store"
)

const DefaultClockInterval = time.Second

var ErrAlreadyRunning = errors.New("sequence already running")

// WeatherSource is the provider side of the sequence.
type WeatherSource interface {
	CurrentWeather(ctx context.Context, city string) (*models.WeatherSnapshot, error)
	HourlyForecast(ctx context.Context, coords models.Coordinates) ([]models.HourlyForecastPoint, error)
	ReverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Place, error)
}

// Sequence drives location -> city -> weather, and location -> forecast, for
// one screen session. A single loop goroutine owns the screen state; fetches
// run concurrently and post their results back to it.
type Sequence struct {
	weather       WeatherSource
	locator       location.Provider
	journal       *store.Store
	loc           *time.Location
	cityOverride  string
	clockInterval time.Duration
	now           func() time.Time

	events  chan event
	running atomic.Bool
	fetches sync.WaitGroup

	// state is only touched by the loop goroutine.
	state   models.ViewModel
	current atomic.Pointer[models.ViewModel]

	subMu   sync.Mutex
	subs    map[int]chan models.ViewModel
	nextSub int
	stopped bool
}

func NewSequence(weather WeatherSource, locator location.Provider, loc *time.Location) *Sequence {
	if loc == nil {
		loc = time.Local
	}
	s := &Sequence{
		weather:       weather,
		locator:       locator,
		loc:           loc,
		clockInterval: DefaultClockInterval,
		now:           time.Now,
		events:        make(chan event, 8),
		subs:          make(map[int]chan models.ViewModel),
	}
	s.state.Clock = forecast.NewClockState(s.now().In(loc))
	s.publish()
	return s
}

// SetJournal records every fetch attempt in st.
func (s *Sequence) SetJournal(st *store.Store) {
	s.journal = st
}

// SetCityOverride uses city instead of reverse geocoding once coordinates exist.
func (s *Sequence) SetCityOverride(city string) {
	s.cityOverride = strings.TrimSpace(city)
}

func (s *Sequence) SetClockInterval(d time.Duration) {
	if d > 0 {
		s.clockInterval = d
	}
}

// Snapshot returns the latest published view. Safe from any goroutine.
func (s *Sequence) Snapshot() models.ViewModel {
	if vm := s.current.Load(); vm != nil {
		return *vm
	}
	return models.ViewModel{}
}

// Subscribe returns a channel that receives each new view. A slow reader only
// sees the most recent one. The channel is closed by cancel or when Run exits.
func (s *Sequence) Subscribe() (<-chan models.ViewModel, func()) {
	ch := make(chan models.ViewModel, 1)

	s.subMu.Lock()
	if s.stopped {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Await blocks until a published view satisfies cond.
func (s *Sequence) Await(ctx context.Context, cond func(models.ViewModel) bool) (models.ViewModel, error) {
	ch, cancel := s.Subscribe()
	defer cancel()

	if vm := s.Snapshot(); cond(vm) {
		return vm, nil
	}
	for {
		select {
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		case vm, ok := <-ch:
			if !ok {
				return s.Snapshot(), errors.New("sequence stopped")
			}
			if cond(vm) {
				return vm, nil
			}
		}
	}
}

// Run starts location acquisition and the clock, and processes results until
// ctx is cancelled. It can only be called once.
func (s *Sequence) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	s.spawn(func() { s.acquireLocation(ctx) })

	ticker := time.NewTicker(s.clockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("sequence: shutting down")
			s.fetches.Wait()
			s.closeSubscribers()
			return nil
		case <-ticker.C:
			s.state.Clock = forecast.NewClockState(s.now().In(s.loc))
			s.publish()
		case ev := <-s.events:
			s.apply(ctx, ev)
			s.state.UpdatedAt = s.now()
			s.publish()
		}
	}
}

func (s *Sequence) apply(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case coordsAcquired:
		if s.state.Coordinates != nil {
			return
		}
		coords := ev.coords
		s.state.Coordinates = &coords
		metrics.StateUpdatesTotal.WithLabelValues("coordinates").Inc()
		log.Printf("sequence: coordinates %.4f,%.4f", coords.Latitude, coords.Longitude)

		s.spawn(func() { s.fetchForecast(ctx, coords) })
		if s.cityOverride != "" {
			s.setCity(ctx, s.cityOverride)
		} else {
			s.spawn(func() { s.resolveCity(ctx, coords) })
		}

	case locationFailed:
		s.state.ErrorMessage = ev.err.Error()
		metrics.StateUpdatesTotal.WithLabelValues("error").Inc()

	case cityResolved:
		s.setCity(ctx, ev.name)

	case weatherArrived:
		s.state.Weather = ev.snapshot
		metrics.StateUpdatesTotal.WithLabelValues("weather").Inc()

	case forecastArrived:
		s.state.Chart = forecast.BuildChartSeries(ev.points, s.loc)
		metrics.StateUpdatesTotal.WithLabelValues("chart").Inc()
	}
}

// setCity fires a weather fetch when the city goes from unset to set or changes.
func (s *Sequence) setCity(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" || name == s.state.City {
		return
	}
	s.state.City = name
	metrics.StateUpdatesTotal.WithLabelValues("city").Inc()
	s.spawn(func() { s.fetchWeather(ctx, name) })
}

func (s *Sequence) publish() {
	vm := s.state
	s.current.Store(&vm)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- vm:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- vm:
			default:
			}
		}
	}
}

func (s *Sequence) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.stopped = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Sequence) spawn(fn func()) {
	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		fn()
	}()
}

func (s *Sequence) post(ctx context.Context, ev event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}
