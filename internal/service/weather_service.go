package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/alerts"
	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/forecast"
	"github.com/fakhrymubarak/skytrackr/internal/model"
	"github.com/fakhrymubarak/skytrackr/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrGeolocationTimeout = errors.New("geolocation timed out")
)

// WeatherServiceInterface defines the dashboard operations used by the handlers
type WeatherServiceInterface interface {
	FetchByCity(ctx context.Context, query string) (*model.Dashboard, error)
	FetchByCoords(ctx context.Context, lat, lon float64, name, country string) (*model.Dashboard, error)
	FetchByPosition(ctx context.Context, lat, lon float64) (*model.Dashboard, error)
}

// RecentsRecorder receives every successfully searched location.
type RecentsRecorder interface {
	AddRecent(ctx context.Context, city model.SavedCity)
}

// WeatherService assembles dashboards from the weather repository
type WeatherService struct {
	WeatherRepo        repository.WeatherRepository
	Recents            RecentsRecorder
	HourlyCount        int
	GeolocationTimeout time.Duration
	Logger             *zap.SugaredLogger
}

// NewWeatherService creates a weather service. A nil repo uses the configured
// OpenWeatherMap repository; a nil recents recorder disables recording.
func NewWeatherService(repo repository.WeatherRepository, recents RecentsRecorder) *WeatherService {
	if repo == nil {
		repo = repository.NewWeatherRepository()
	}
	return &WeatherService{
		WeatherRepo:        repo,
		Recents:            recents,
		HourlyCount:        config.GetHourlyCount(),
		GeolocationTimeout: config.GetGeolocationTimeout(),
		Logger:             config.GetLogger(),
	}
}

func (s *WeatherService) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return s.Logger
}

// FetchByCity geocodes query and builds its dashboard. When geocoding is rate
// limited the coordinates are recovered from the current-weather endpoint instead.
func (s *WeatherService) FetchByCity(ctx context.Context, query string) (*model.Dashboard, error) {
	out := s.WeatherRepo.Geocode(ctx, query)

	var (
		dash *model.Dashboard
		err  error
	)
	switch out.Kind {
	case repository.GeocodeResolved:
		loc, _ := out.Location()
		dash, err = s.FetchByCoords(ctx, loc.Lat, loc.Lon, loc.Name, loc.Country)
	case repository.GeocodeRateLimited:
		s.logger().Warnw("Geocoding rate limited, falling back to weather by name", "query", query)
		dash, err = s.fetchByName(ctx, query)
	default:
		return nil, out.Err
	}
	if err != nil {
		return nil, err
	}
	s.record(ctx, dash.Location)
	return dash, nil
}

func (s *WeatherService) fetchByName(ctx context.Context, query string) (*model.Dashboard, error) {
	_, loc, err := s.WeatherRepo.GetCurrentWeatherByName(ctx, query)
	if err != nil {
		if errors.Is(err, repository.ErrNoCoordinates) {
			return nil, repository.ErrRateLimited
		}
		return nil, err
	}
	return s.FetchByCoords(ctx, loc.Lat, loc.Lon, loc.Name, loc.Country)
}

// FetchByCoords fetches current conditions, forecast, and air quality
// concurrently. Air quality is optional: its failure yields a zero reading.
func (s *WeatherService) FetchByCoords(ctx context.Context, lat, lon float64, name, country string) (*model.Dashboard, error) {
	if !validCoords(lat, lon) {
		return nil, ErrInvalidCoordinates
	}

	var (
		current *model.CurrentConditions
		fc      *model.OWMForecastResponse
		air     = model.EmptyAirQuality()
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.WeatherRepo.GetCurrentWeather(gctx, lat, lon)
		if err != nil {
			return err
		}
		current = c
		return nil
	})
	g.Go(func() error {
		f, err := s.WeatherRepo.GetForecast(gctx, lat, lon)
		if err != nil {
			return err
		}
		fc = f
		return nil
	})
	g.Go(func() error {
		aq, err := s.WeatherRepo.GetAirPollution(gctx, lat, lon)
		if err != nil {
			s.logger().Warnw("Air quality unavailable", "lat", lat, "lon", lon, "error", err)
			return nil
		}
		air = *aq
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if lvl, ok := model.AQILabel(air.AQI); ok {
		air.Level = &lvl
	}
	if name == "" {
		name = "Unknown"
	}
	hourly := forecast.HourlySlice(fc.List, s.HourlyCount)
	daily := forecast.DailySummaries(fc.List)
	return &model.Dashboard{
		Location:   model.Location{Name: name, Country: country, Lat: lat, Lon: lon},
		Current:    *current,
		Hourly:     hourly,
		Daily:      daily,
		Alerts:     alerts.Evaluate(alerts.Input{Current: current, Hourly: hourly, Daily: daily}),
		AirQuality: air,
	}, nil
}

// FetchByPosition resolves a device position to a place name and builds its
// dashboard. The lookup is bounded by the geolocation timeout.
func (s *WeatherService) FetchByPosition(ctx context.Context, lat, lon float64) (*model.Dashboard, error) {
	if !validCoords(lat, lon) {
		return nil, ErrInvalidCoordinates
	}
	timeout := s.GeolocationTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	loc, err := s.WeatherRepo.ReverseGeocode(lctx, lat, lon)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrGeolocationTimeout, timeout)
		}
		return nil, err
	}

	dash, err := s.FetchByCoords(ctx, lat, lon, loc.Name, loc.Country)
	if err != nil {
		return nil, err
	}
	s.record(ctx, dash.Location)
	return dash, nil
}

func (s *WeatherService) record(ctx context.Context, loc model.Location) {
	if s.Recents == nil {
		return
	}
	s.Recents.AddRecent(ctx, model.CityFromLocation(loc))
}

func validCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
