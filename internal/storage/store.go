// Package storage keeps the favorites and recent-searches lists.
//
// Both lists are JSON arrays under fixed keys of an injected KV. Reads never
// fail: a missing or corrupt value reads as an empty list. There is no
// coordination between concurrent writers, the last write wins.
package storage

import (
	"context"
	"encoding/json"

	"github.com/fakhrymubarak/skytrackr/internal/model"
	"go.uber.org/zap"
)

const (
	FavoritesKey = "skytrackr_favorites"
	RecentKey    = "skytrackr_recent"

	MaxFavorites = 8
	MaxRecent    = 6
)

type Store struct {
	kv     KV
	logger *zap.SugaredLogger
}

func NewStore(kv KV, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{kv: kv, logger: logger}
}

func (s *Store) Favorites(ctx context.Context) []model.SavedCity {
	return s.load(ctx, FavoritesKey)
}

func (s *Store) Recents(ctx context.Context) []model.SavedCity {
	return s.load(ctx, RecentKey)
}

// AddFavorite appends city. It returns false, without writing, when the city is
// already a favorite or the list holds MaxFavorites entries.
func (s *Store) AddFavorite(ctx context.Context, city model.SavedCity) bool {
	list := s.Favorites(ctx)
	if contains(list, city) || len(list) >= MaxFavorites {
		return false
	}
	list = append(list, city)
	s.save(ctx, FavoritesKey, list)
	return true
}

// RemoveFavorite drops every entry matching city and reports whether any was removed.
func (s *Store) RemoveFavorite(ctx context.Context, city model.SavedCity) bool {
	list := s.Favorites(ctx)
	kept := make([]model.SavedCity, 0, len(list))
	for _, c := range list {
		if !c.SameCity(city) {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	s.save(ctx, FavoritesKey, kept)
	return true
}

func (s *Store) IsFavorite(ctx context.Context, city model.SavedCity) bool {
	return contains(s.Favorites(ctx), city)
}

// AddRecent moves city to the front of the recents, keeping at most MaxRecent entries.
func (s *Store) AddRecent(ctx context.Context, city model.SavedCity) {
	list := make([]model.SavedCity, 0, MaxRecent+1)
	list = append(list, city)
	for _, c := range s.Recents(ctx) {
		if !c.SameCity(city) {
			list = append(list, c)
		}
	}
	if len(list) > MaxRecent {
		list = list[:MaxRecent]
	}
	s.save(ctx, RecentKey, list)
}

func (s *Store) load(ctx context.Context, key string) []model.SavedCity {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warnw("Reading saved cities failed", "key", key, "error", err)
		return []model.SavedCity{}
	}
	if !ok || raw == "" {
		return []model.SavedCity{}
	}
	var list []model.SavedCity
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Debugw("Discarding corrupt saved cities", "key", key, "error", err)
		return []model.SavedCity{}
	}
	if list == nil {
		return []model.SavedCity{}
	}
	return list
}

func (s *Store) save(ctx context.Context, key string, list []model.SavedCity) {
	b, err := json.Marshal(list)
	if err != nil {
		s.logger.Warnw("Encoding saved cities failed", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, key, string(b)); err != nil {
		s.logger.Warnw("Saving cities failed", "key", key, "error", err)
	}
}

func contains(list []model.SavedCity, city model.SavedCity) bool {
	for _, c := range list {
		if c.SameCity(city) {
			return true
		}
	}
	return false
}
