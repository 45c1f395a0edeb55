package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/middleware"
	"github.com/fakhrymubarak/skytrackr/internal/model"
	"github.com/fakhrymubarak/skytrackr/internal/repository"
	"github.com/fakhrymubarak/skytrackr/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Mock service for testing
type mockWeatherService struct {
	err      error
	mockData *model.Dashboard
	block    chan struct{}
	lastLat  float64
	lastLon  float64
}

func (m *mockWeatherService) FetchByCity(ctx context.Context, query string) (*model.Dashboard, error) {
	if m.block != nil && query == "slow" {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	d := *m.mockData
	d.Location.Name = query
	return &d, nil
}

func (m *mockWeatherService) FetchByCoords(ctx context.Context, lat, lon float64, name, country string) (*model.Dashboard, error) {
	return m.FetchByPosition(ctx, lat, lon)
}

func (m *mockWeatherService) FetchByPosition(ctx context.Context, lat, lon float64) (*model.Dashboard, error) {
	m.lastLat, m.lastLon = lat, lon
	if m.err != nil {
		return nil, m.err
	}
	d := *m.mockData
	return &d, nil
}

// Ensure mockWeatherService implements WeatherServiceInterface
var _ service.WeatherServiceInterface = (*mockWeatherService)(nil)

func sampleDashboard() *model.Dashboard {
	return &model.Dashboard{
		Location: model.Location{Name: "London", Country: "GB"},
		Current:  model.CurrentConditions{Temp: 15.2, Weather: []model.WeatherDescriptor{}},
		Hourly:   []model.ForecastSample{},
		Daily:    []model.DailySummary{},
		Alerts:   []model.Alert{},
	}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
	return env
}

func TestNewWeatherHandler(t *testing.T) {
	handler := NewWeatherHandler(nil, nil)
	if handler == nil {
		t.Fatal("Expected handler to be created")
	}
	if handler.WeatherService == nil || handler.Generations == nil {
		t.Error("Expected weather service and generations to be initialized")
	}
}

func TestWeatherHandler_HandleWeather(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"Missing location parameter", "", nil, http.StatusBadRequest, "Missing 'location' query parameter"},
		{"Blank location parameter", "location=%20%20", nil, http.StatusBadRequest, "Missing 'location' query parameter"},
		{"Successful weather request", "location=London", nil, http.StatusOK, ""},
		{"City not found", "location=Atlantis", repository.ErrLocationNotFound, http.StatusNotFound, "City not found. Check the spelling and try again."},
		{"Invalid key", "location=London", fmt.Errorf("geocoding: %w", repository.ErrInvalidAPIKey), http.StatusBadGateway, "Invalid API key. Check your OpenWeatherMap configuration."},
		{"Rate limited", "location=London", repository.ErrRateLimited, http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again."},
		{"Upstream failure", "location=London", repository.ErrExternalAPI, http.StatusInternalServerError, service.GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &WeatherHandler{
				WeatherService: &mockWeatherService{err: tt.err, mockData: sampleDashboard()},
				Generations:    service.NewGenerations(),
			}

			req := httptest.NewRequest(http.MethodGet, "/weather?"+tt.query, nil)
			rr := httptest.NewRecorder()
			handler.HandleWeather(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", status, tt.expectedStatus)
			}
			env := decodeEnvelope(t, rr)
			if tt.expectedError != "" {
				if env.Error == nil || *env.Error != tt.expectedError {
					t.Errorf("Expected error %q, got %v", tt.expectedError, env.Error)
				}
				return
			}
			var dash model.Dashboard
			if err := json.Unmarshal(env.Data, &dash); err != nil {
				t.Fatalf("Failed to decode dashboard: %v", err)
			}
			if dash.Location.Name != "London" || dash.Current.Temp != 15.2 {
				t.Errorf("Unexpected dashboard %+v", dash)
			}
		})
	}
}

func TestWeatherHandler_MethodNotAllowed(t *testing.T) {
	handler := &WeatherHandler{WeatherService: &mockWeatherService{mockData: sampleDashboard()}, Generations: service.NewGenerations()}
	rr := httptest.NewRecorder()
	handler.HandleWeather(rr, httptest.NewRequest(http.MethodPost, "/weather?location=London", nil))
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != http.MethodGet {
		t.Errorf("Expected 405 with Allow header, got %d %q", rr.Code, rr.Header().Get("Allow"))
	}
}

func TestWeatherHandler_HandleWeatherByCoords(t *testing.T) {
	svc := &mockWeatherService{mockData: sampleDashboard()}
	handler := &WeatherHandler{WeatherService: svc, Generations: service.NewGenerations()}

	rr := httptest.NewRecorder()
	handler.HandleWeatherByCoords(rr, httptest.NewRequest(http.MethodGet, "/weather/coords?lat=51.5&lon=-0.12", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if svc.lastLat != 51.5 || svc.lastLon != -0.12 {
		t.Errorf("Expected coordinates passed through, got %v,%v", svc.lastLat, svc.lastLon)
	}

	for _, q := range []string{"lat=abc&lon=1", "lat=1", ""} {
		rr = httptest.NewRecorder()
		handler.HandleWeatherByCoords(rr, httptest.NewRequest(http.MethodGet, "/weather/coords?"+q, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", q, rr.Code)
		}
	}

	svc.err = service.ErrInvalidCoordinates
	rr = httptest.NewRecorder()
	handler.HandleWeatherByCoords(rr, httptest.NewRequest(http.MethodGet, "/weather/coords?lat=100&lon=0", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out-of-range coordinates, got %d", rr.Code)
	}
}

func TestWeatherHandler_TokenIssuedPerSession(t *testing.T) {
	handler := &WeatherHandler{WeatherService: &mockWeatherService{mockData: sampleDashboard()}, Generations: service.NewGenerations()}

	for want := uint64(1); want <= 2; want++ {
		req := httptest.NewRequest(http.MethodGet, "/weather?location=London", nil)
		req.Header.Set(SessionHeader, "tab-1")
		rr := httptest.NewRecorder()
		handler.HandleWeather(rr, req)

		var dash model.Dashboard
		if err := json.Unmarshal(decodeEnvelope(t, rr).Data, &dash); err != nil {
			t.Fatal(err)
		}
		if dash.Token != want {
			t.Errorf("Expected token %d, got %d", want, dash.Token)
		}
	}
}

func TestWeatherHandler_StaleResponseDiscarded(t *testing.T) {
	svc := &mockWeatherService{mockData: sampleDashboard(), block: make(chan struct{})}
	handler := &WeatherHandler{WeatherService: svc, Generations: service.NewGenerations()}

	slow := httptest.NewRecorder()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodGet, "/weather?location=slow", nil)
		req.Header.Set(SessionHeader, "tab-1")
		handler.HandleWeather(slow, req)
	}()

	// wait for the slow request to take its token
	deadline := time.Now().Add(2 * time.Second)
	for !handler.Generations.Commit("tab-1", 1) {
		if time.Now().After(deadline) {
			t.Fatal("slow request never started")
		}
		time.Sleep(time.Millisecond)
	}

	fast := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/weather?location=Paris", nil)
	req.Header.Set(SessionHeader, "tab-1")
	handler.HandleWeather(fast, req)
	close(svc.block)
	wg.Wait()

	if fast.Code != http.StatusOK {
		t.Errorf("Expected newer request to succeed, got %d", fast.Code)
	}
	if slow.Code != http.StatusConflict {
		t.Errorf("Expected stale request to get 409, got %d", slow.Code)
	}
	if !strings.Contains(slow.Body.String(), "A newer request replaced this one.") {
		t.Errorf("Unexpected stale body %s", slow.Body.String())
	}
}

func TestWeatherHandler_FailureLogsRequestID(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	handler := &WeatherHandler{
		WeatherService: &mockWeatherService{err: repository.ErrLocationNotFound},
		Generations:    service.NewGenerations(),
		Logger:         zap.New(core).Sugar(),
	}

	req := httptest.NewRequest(http.MethodGet, "/weather?location=Atlantis", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-7")
	rr := httptest.NewRecorder()
	middleware.RequestLogger(zap.NewNop().Sugar())(http.HandlerFunc(handler.HandleWeather)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
	entries := logs.FilterMessage("Weather request failed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-7" {
		t.Errorf("Expected request_id req-7, got %v", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{repository.ErrLocationNotFound, http.StatusNotFound},
		{repository.ErrAPIKeyMissing, http.StatusBadGateway},
		{repository.ErrInvalidAPIKey, http.StatusBadGateway},
		{repository.ErrRateLimited, http.StatusTooManyRequests},
		{service.ErrInvalidCoordinates, http.StatusBadRequest},
		{service.ErrStaleResponse, http.StatusConflict},
		{service.ErrGeolocationTimeout, http.StatusGatewayTimeout},
		{fmt.Errorf("%w after 10s", service.ErrGeolocationTimeout), http.StatusGatewayTimeout},
		{repository.ErrNoArticles, http.StatusBadGateway},
		{repository.ErrNetwork, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func BenchmarkWeatherHandler_HandleWeather(b *testing.B) {
	handler := &WeatherHandler{WeatherService: &mockWeatherService{mockData: sampleDashboard()}, Generations: service.NewGenerations()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/weather?location=London", nil)
		rr := httptest.NewRecorder()
		handler.HandleWeather(rr, req)
	}
}
