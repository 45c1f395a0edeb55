package handler

import (
	"net/http"

	"github.com/fakhrymubarak/skytrackr/internal/middleware"
)

// Handlers groups the route handlers served by NewRouter.
type Handlers struct {
	Weather     *WeatherHandler
	SavedCities *SavedCitiesHandler
	News        *NewsHandler
}

// NewRouter registers every route. Only the search routes go through the
// limiter: /weather is bucketed by location and /weather/coords by position.
func NewRouter(h Handlers, limiter *middleware.RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/weather", limiter.LimitBy(http.HandlerFunc(h.Weather.HandleWeather), "location"))
	mux.Handle("/weather/coords", limiter.LimitBy(http.HandlerFunc(h.Weather.HandleWeatherByCoords), "lat", "lon"))
	mux.HandleFunc("/favorites", h.SavedCities.HandleFavorites)
	mux.HandleFunc("/favorites/check", h.SavedCities.HandleFavoriteCheck)
	mux.HandleFunc("/recents", h.SavedCities.HandleRecents)
	mux.HandleFunc("/news", h.News.HandleNews)
	mux.HandleFunc("/healthz", HandleHealth)
	return mux
}
