package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/model"
	"go.uber.org/zap"
)

// WeatherRepository defines the interface for OpenWeatherMap data access
type WeatherRepository interface {
	Geocode(ctx context.Context, query string) GeocodeOutcome
	ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Location, error)
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*model.CurrentConditions, error)
	GetCurrentWeatherByName(ctx context.Context, query string) (*model.CurrentConditions, *model.Location, error)
	GetForecast(ctx context.Context, lat, lon float64) (*model.OWMForecastResponse, error)
	GetAirPollution(ctx context.Context, lat, lon float64) (*model.AirQuality, error)
}

// weatherRepository implements WeatherRepository
type weatherRepository struct {
	httpClient *http.Client
	baseURL    string
	geoURL     string
	apiKey     string
	retries    int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	cache      *GeocodeCache
	logger     *zap.SugaredLogger
}

type Option func(*weatherRepository)

func WithHTTPClient(c *http.Client) Option {
	return func(r *weatherRepository) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithBaseURL points both the weather and the geocoding endpoints at baseURL.
func WithBaseURL(baseURL string) Option {
	return func(r *weatherRepository) {
		r.baseURL = strings.TrimRight(baseURL, "/")
		r.geoURL = r.baseURL
	}
}

func WithAPIKey(key string) Option {
	return func(r *weatherRepository) { r.apiKey = key }
}

// WithRetry sets how often a rate-limited geocoding request is retried and the
// base backoff used when the response has no Retry-After header.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(r *weatherRepository) {
		r.retries = retries
		r.backoff = backoff
	}
}

func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *weatherRepository) { r.sleep = sleep }
}

func WithGeocodeCache(c *GeocodeCache) Option {
	return func(r *weatherRepository) { r.cache = c }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *weatherRepository) { r.logger = l }
}

// NewWeatherRepository creates a new weather repository instance
func NewWeatherRepository(opts ...Option) WeatherRepository {
	r := &weatherRepository{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(config.GetOpenWeatherApiUrl(), "/"),
		geoURL:     strings.TrimRight(config.GetOpenWeatherGeoUrl(), "/"),
		retries:    config.GetGeocodeRetries(),
		backoff:    config.GetRetryBackoff(),
		sleep:      sleepContext,
		cache:      NewGeocodeCache(),
		logger:     config.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *weatherRepository) key() (string, error) {
	if r.apiKey != "" {
		return r.apiKey, nil
	}
	if k := config.GetOpenWeatherMapAPIKey(); k != "" {
		return k, nil
	}
	return "", ErrAPIKeyMissing
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// get issues a GET against endpoint with the API key appended. The caller closes the body.
func (r *weatherRepository) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	key, err := r.key()
	if err != nil {
		return nil, err
	}
	params.Set("appid", key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp, nil
}

func decode(resp *http.Response, endpoint string, out interface{}) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: failed to parse response: %v", endpoint, ErrExternalAPI, err)
	}
	return nil
}

func (r *weatherRepository) fetchCurrent(ctx context.Context, params url.Values) (*model.OpenWeatherMapResponse, error) {
	params.Set("units", "metric")
	resp, err := r.get(ctx, r.baseURL+"/data/2.5/weather", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("current weather", resp.StatusCode)
	}
	var data model.OpenWeatherMapResponse
	if err := decode(resp, "current weather", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func toConditions(data *model.OpenWeatherMapResponse) *model.CurrentConditions {
	weather := data.Weather
	if weather == nil {
		weather = []model.WeatherDescriptor{}
	}
	return &model.CurrentConditions{
		Temp:       data.Main.Temp,
		FeelsLike:  data.Main.FeelsLike,
		Humidity:   data.Main.Humidity,
		Pressure:   data.Main.Pressure,
		Visibility: data.Visibility,
		WindSpeed:  data.Wind.Speed,
		WindGust:   data.Wind.Gust,
		Weather:    weather,
	}
}

// GetCurrentWeather retrieves current conditions for a coordinate pair
func (r *weatherRepository) GetCurrentWeather(ctx context.Context, lat, lon float64) (*model.CurrentConditions, error) {
	data, err := r.fetchCurrent(ctx, url.Values{"lat": {coord(lat)}, "lon": {coord(lon)}})
	if err != nil {
		return nil, err
	}
	return toConditions(data), nil
}

// GetCurrentWeatherByName queries current weather by city name. Besides the
// conditions it returns the location the provider resolved the name to.
func (r *weatherRepository) GetCurrentWeatherByName(ctx context.Context, query string) (*model.CurrentConditions, *model.Location, error) {
	raw := strings.TrimSpace(query)
	if raw == "" {
		return nil, nil, ErrLocationNotFound
	}
	data, err := r.fetchCurrent(ctx, url.Values{"q": {raw}})
	if err != nil {
		return nil, nil, err
	}
	if data.Coord.Lat == nil || data.Coord.Lon == nil {
		return nil, nil, ErrNoCoordinates
	}
	loc := &model.Location{
		Name:    data.Name,
		Country: data.Sys.Country,
		Lat:     *data.Coord.Lat,
		Lon:     *data.Coord.Lon,
	}
	if loc.Name == "" {
		loc.Name = raw
	}
	return toConditions(data), loc, nil
}

// GetForecast retrieves the 5-day / 3-hour forecast
func (r *weatherRepository) GetForecast(ctx context.Context, lat, lon float64) (*model.OWMForecastResponse, error) {
	params := url.Values{"lat": {coord(lat)}, "lon": {coord(lon)}, "units": {"metric"}}
	resp, err := r.get(ctx, r.baseURL+"/data/2.5/forecast", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("forecast", resp.StatusCode)
	}
	var data model.OWMForecastResponse
	if err := decode(resp, "forecast", &data); err != nil {
		return nil, err
	}
	if data.List == nil {
		data.List = []model.OWMForecastItem{}
	}
	return &data, nil
}

// GetAirPollution retrieves the current air-quality reading. An empty list yields a zero reading.
func (r *weatherRepository) GetAirPollution(ctx context.Context, lat, lon float64) (*model.AirQuality, error) {
	params := url.Values{"lat": {coord(lat)}, "lon": {coord(lon)}}
	resp, err := r.get(ctx, r.baseURL+"/data/2.5/air_pollution", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("air pollution: %w", ErrInvalidAPIKey)
		}
		return nil, fmt.Errorf("air pollution: %w (status %d)", ErrExternalAPI, resp.StatusCode)
	}
	var data model.OWMAirPollutionResponse
	if err := decode(resp, "air pollution", &data); err != nil {
		return nil, err
	}
	aq := model.EmptyAirQuality()
	if len(data.List) == 0 {
		return &aq, nil
	}
	aq.AQI = data.List[0].Main.AQI
	if data.List[0].Components != nil {
		aq.Components = data.List[0].Components
	}
	return &aq, nil
}

// ReverseGeocode resolves coordinates to a place name
func (r *weatherRepository) ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Location, error) {
	params := url.Values{"lat": {coord(lat)}, "lon": {coord(lon)}, "limit": {"1"}}
	resp, err := r.get(ctx, r.geoURL+"/geo/1.0/reverse", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("reverse geocoding: %w", ErrInvalidAPIKey)
		}
		return nil, fmt.Errorf("reverse geocoding: %w (status %d)", ErrLocationNotFound, resp.StatusCode)
	}
	var results []model.OWMGeocodeResult
	if err := decode(resp, "reverse geocoding", &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("reverse geocoding: %w", ErrLocationNotFound)
	}
	return &model.Location{Name: results[0].Name, Country: results[0].Country, Lat: lat, Lon: lon}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
