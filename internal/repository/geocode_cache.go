package repository

import (
	"strings"

	"github.com/fakhrymubarak/skytrackr/internal/model"
	"github.com/patrickmn/go-cache"
)

// GeocodeCache holds geocoding results for the lifetime of the process.
// Keys are the trimmed, lowercased query, so "London" and "london" share an entry.
type GeocodeCache struct {
	c *cache.Cache
}

func NewGeocodeCache() *GeocodeCache {
	return &GeocodeCache{c: cache.New(cache.NoExpiration, 0)}
}

func cacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (g *GeocodeCache) Get(query string) ([]model.Location, bool) {
	v, found := g.c.Get(cacheKey(query))
	if !found {
		return nil, false
	}
	return v.([]model.Location), true
}

func (g *GeocodeCache) Set(query string, locations []model.Location) {
	g.c.Set(cacheKey(query), locations, cache.NoExpiration)
}

func (g *GeocodeCache) Len() int {
	return g.c.ItemCount()
}

// Flush drops every entry, as a restart would.
func (g *GeocodeCache) Flush() {
	g.c.Flush()
}
