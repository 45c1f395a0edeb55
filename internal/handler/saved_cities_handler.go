package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fakhrymubarak/skytrackr/internal/model"
)

// CityStore is the favorites/recents persistence used by SavedCitiesHandler.
type CityStore interface {
	Favorites(ctx context.Context) []model.SavedCity
	Recents(ctx context.Context) []model.SavedCity
	AddFavorite(ctx context.Context, city model.SavedCity) bool
	RemoveFavorite(ctx context.Context, city model.SavedCity) bool
	IsFavorite(ctx context.Context, city model.SavedCity) bool
	AddRecent(ctx context.Context, city model.SavedCity)
}

type SavedCitiesHandler struct {
	Store CityStore
}

func NewSavedCitiesHandler(store CityStore) *SavedCitiesHandler {
	return &SavedCitiesHandler{Store: store}
}

type FavoriteResult struct {
	Changed   bool              `json:"changed"`
	Favorites []model.SavedCity `json:"favorites"`
}

// HandleFavorites serves GET, POST, and DELETE on /favorites.
func (h *SavedCitiesHandler) HandleFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		writeSuccess(w, http.StatusOK, h.Store.Favorites(ctx))
	case http.MethodPost:
		city, ok := decodeCity(w, r)
		if !ok {
			return
		}
		added := h.Store.AddFavorite(ctx, city)
		status := http.StatusOK
		if added {
			status = http.StatusCreated
		}
		writeSuccess(w, status, FavoriteResult{Changed: added, Favorites: h.Store.Favorites(ctx)})
	case http.MethodDelete:
		city, ok := cityFromQuery(w, r)
		if !ok {
			return
		}
		removed := h.Store.RemoveFavorite(ctx, city)
		writeSuccess(w, http.StatusOK, FavoriteResult{Changed: removed, Favorites: h.Store.Favorites(ctx)})
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

// HandleFavoriteCheck serves GET /favorites/check?name=&country=
func (h *SavedCitiesHandler) HandleFavoriteCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	city, ok := cityFromQuery(w, r)
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"favorite": h.Store.IsFavorite(r.Context(), city)})
}

// HandleRecents serves GET and POST on /recents.
func (h *SavedCitiesHandler) HandleRecents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		writeSuccess(w, http.StatusOK, h.Store.Recents(ctx))
	case http.MethodPost:
		city, ok := decodeCity(w, r)
		if !ok {
			return
		}
		h.Store.AddRecent(ctx, city)
		writeSuccess(w, http.StatusOK, h.Store.Recents(ctx))
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func decodeCity(w http.ResponseWriter, r *http.Request) (model.SavedCity, bool) {
	var city model.SavedCity
	if err := json.NewDecoder(r.Body).Decode(&city); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Request body must be a JSON city")
		return city, false
	}
	if strings.TrimSpace(city.Name) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Missing city 'name'")
		return city, false
	}
	return city, true
}

func cityFromQuery(w http.ResponseWriter, r *http.Request) (model.SavedCity, bool) {
	q := r.URL.Query()
	city := model.SavedCity{Name: q.Get("name"), Country: q.Get("country")}
	if strings.TrimSpace(city.Name) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Missing 'name' query parameter")
		return city, false
	}
	return city, true
}
