package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/middleware"
	"github.com/fakhrymubarak/skytrackr/internal/model"
	"github.com/fakhrymubarak/skytrackr/internal/service"
	"go.uber.org/zap"
)

// SessionHeader identifies a client whose searches are ordered by the stale-response guard.
const SessionHeader = "X-Session-ID"

type WeatherHandler struct {
	WeatherService service.WeatherServiceInterface
	Generations    *service.Generations
	Logger         *zap.SugaredLogger
}

func NewWeatherHandler(svc service.WeatherServiceInterface, gens *service.Generations) *WeatherHandler {
	if svc == nil {
		svc = service.NewWeatherService(nil, nil)
	}
	if gens == nil {
		gens = service.NewGenerations()
	}
	return &WeatherHandler{
		WeatherService: svc,
		Generations:    gens,
		Logger:         config.GetLogger(),
	}
}

// HandleWeather serves GET /weather?location=
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Missing 'location' query parameter")
		return
	}

	h.serveDashboard(w, r, func(ctx context.Context) (*model.Dashboard, error) {
		return h.WeatherService.FetchByCity(ctx, location)
	})
}

// HandleWeatherByCoords serves GET /weather/coords?lat=&lon=. The coordinates
// are treated as a device position and resolved to a place name.
func (h *WeatherHandler) HandleWeatherByCoords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Query parameters 'lat' and 'lon' must be numbers")
		return
	}

	h.serveDashboard(w, r, func(ctx context.Context) (*model.Dashboard, error) {
		return h.WeatherService.FetchByPosition(ctx, lat, lon)
	})
}

// serveDashboard runs fetch and writes its result. Requests carrying a session
// header get a token; a response overtaken by a newer request of the same
// session is answered with 409 instead of data.
func (h *WeatherHandler) serveDashboard(w http.ResponseWriter, r *http.Request, fetch func(context.Context) (*model.Dashboard, error)) {
	session := r.Header.Get(SessionHeader)
	var token uint64
	if session != "" {
		token = h.Generations.Next(session)
	}

	dash, err := fetch(r.Context())
	if session != "" && !h.Generations.Commit(session, token) {
		h.logger().Infow("Discarding stale response", "session", session, "token", token)
		writeError(w, service.ErrStaleResponse)
		return
	}
	if err != nil {
		h.logger().Warnw("Weather request failed", "request_id", middleware.RequestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
		writeError(w, err)
		return
	}

	dash.Token = token
	writeSuccess(w, http.StatusOK, dash)
}

func (h *WeatherHandler) logger() *zap.SugaredLogger {
	if h.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return h.Logger
}
