package integrationtest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"

	"github.com/alicebob/miniredis/v2"
	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/handler"
	"github.com/fakhrymubarak/skytrackr/internal/middleware"
	"github.com/fakhrymubarak/skytrackr/internal/redis"
	"github.com/fakhrymubarak/skytrackr/internal/repository"
	"github.com/fakhrymubarak/skytrackr/internal/service"
	"github.com/fakhrymubarak/skytrackr/internal/storage"
)

const testAPIKey = "test_api_key"

var miniRedisMock *miniredis.Miniredis

func createMockRedisServer() {
	miniRedisMock = miniredis.NewMiniRedis()
	if err := miniRedisMock.StartAddr(config.GetTestRedisMockPort()); err != nil {
		// the fixed port may be taken; any free port works since the client is injected
		if err := miniRedisMock.Start(); err != nil {
			panic(err)
		}
	}
}

// owmMock is a fake OpenWeatherMap covering the geocoding, weather, forecast,
// and air pollution endpoints. Geocoding answers 429 while geoRateLimited is set.
type owmMock struct {
	server         *httptest.Server
	geoCalls       int32
	geoRateLimited atomic.Bool
	airDown        atomic.Bool
}

func newOWMMock() *owmMock {
	m := &owmMock{}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (m *owmMock) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("appid") != testAPIKey {
		writeJSON(w, http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`)
		return
	}

	switch r.URL.Path {
	case "/geo/1.0/direct":
		atomic.AddInt32(&m.geoCalls, 1)
		if m.geoRateLimited.Load() {
			w.Header().Set("Retry-After", "0")
			writeJSON(w, http.StatusTooManyRequests, `{"cod":429}`)
			return
		}
		if q.Get("q") == "London" {
			writeJSON(w, http.StatusOK, `[{"name":"London","country":"GB","lat":51.5073,"lon":-0.1277}]`)
			return
		}
		writeJSON(w, http.StatusOK, `[]`)
	case "/geo/1.0/reverse":
		writeJSON(w, http.StatusOK, `[{"name":"Westminster","country":"GB"}]`)
	case "/data/2.5/weather":
		if name := q.Get("q"); name != "" && name != "London" {
			writeJSON(w, http.StatusNotFound, `{"cod":"404","message":"city not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{
			"name": "London",
			"coord": {"lat": 51.51, "lon": -0.13},
			"sys": {"country": "GB"},
			"main": {"temp": 36.4, "feels_like": 38, "humidity": 40, "pressure": 1010},
			"visibility": 10000,
			"wind": {"speed": 13.2},
			"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}]
		}`)
	case "/data/2.5/forecast":
		writeJSON(w, http.StatusOK, forecastBody())
	case "/data/2.5/air_pollution":
		if m.airDown.Load() {
			writeJSON(w, http.StatusInternalServerError, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"list":[{"main":{"aqi":2},"components":{"pm2_5":5.1}}]}`)
	default:
		writeJSON(w, http.StatusNotFound, `{}`)
	}
}

// forecastBody returns 16 three-hour samples starting 2024-01-01 00:00 UTC.
func forecastBody() string {
	const start = 1704067200
	body := `{"city":{"name":"London","country":"GB"},"list":[`
	for i := 0; i < 16; i++ {
		if i > 0 {
			body += ","
		}
		dt := start + i*3*3600
		body += `{"dt":` + strconv.Itoa(dt) + `,"main":{"temp":` + strconv.Itoa(10+i) + `},"pop":0.1,"weather":[{"main":"Clouds"}]}`
	}
	return body + `]}`
}

func newsMock() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"ok","articles":[{"title":"Rain expected","url":"http://news.test/1","publishedAt":"2024-01-01T00:00:00Z"}]}`)
	}))
}

// setupIntegrationTestServer wires the full pipeline against the mocks with a
// Redis-backed store.
func setupIntegrationTestServer(owm *owmMock, news *httptest.Server) (*httptest.Server, *repository.GeocodeCache) {
	logger := config.GetLogger()
	cache := repository.NewGeocodeCache()
	weatherRepo := repository.NewWeatherRepository(
		repository.WithBaseURL(owm.server.URL),
		repository.WithAPIKey(testAPIKey),
		repository.WithGeocodeCache(cache),
		repository.WithLogger(logger),
	)
	store := storage.NewStore(storage.NewRedisKV(redis.NewClient(miniRedisMock.Addr()), config.GetStoragePrefix()), logger)
	weatherService := service.NewWeatherService(weatherRepo, store)
	newsService := service.NewNewsService(repository.NewNewsRepository(news.URL))

	limiter := middleware.NewRateLimiter(middleware.Limit{PerMinute: 600, Burst: 100}, middleware.Limit{PerMinute: 600, Burst: 100}, "location", config.GetRateLimiterCleanupTimeout())
	router := handler.NewRouter(handler.Handlers{
		Weather:     handler.NewWeatherHandler(weatherService, service.NewGenerations()),
		SavedCities: handler.NewSavedCitiesHandler(store),
		News:        handler.NewNewsHandler(newsService),
	}, limiter)
	return httptest.NewServer(middleware.RequestLogger(logger)(router)), cache
}
