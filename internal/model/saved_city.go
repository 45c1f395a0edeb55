package model

// SavedCity is an entry of the favorites or recents list.
type SavedCity struct {
	Name    string   `json:"name"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// SameCity reports whether both entries name the same city. The match is case-sensitive.
func (c SavedCity) SameCity(other SavedCity) bool {
	return c.Name == other.Name && c.Country == other.Country
}

// CityFromLocation converts a resolved location into a saved-city entry.
func CityFromLocation(loc Location) SavedCity {
	lat, lon := loc.Lat, loc.Lon
	return SavedCity{Name: loc.Name, Country: loc.Country, Lat: &lat, Lon: &lon}
}
