package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/model"
)

type GeocodeKind int

const (
	GeocodeResolved GeocodeKind = iota
	GeocodeRateLimited
	GeocodeNotFound
	GeocodeAuthError
	GeocodeFailed
)

func (k GeocodeKind) String() string {
	switch k {
	case GeocodeResolved:
		return "resolved"
	case GeocodeRateLimited:
		return "rate_limited"
	case GeocodeNotFound:
		return "not_found"
	case GeocodeAuthError:
		return "auth_error"
	default:
		return "failed"
	}
}

// GeocodeOutcome is the result of a forward geocoding lookup. Locations is set
// only when Kind is GeocodeResolved; Err is set for every other kind.
type GeocodeOutcome struct {
	Kind      GeocodeKind
	Locations []model.Location
	Err       error
}

// Location returns the best match of a resolved lookup.
func (o GeocodeOutcome) Location() (model.Location, bool) {
	if o.Kind != GeocodeResolved || len(o.Locations) == 0 {
		return model.Location{}, false
	}
	return o.Locations[0], true
}

func resolved(locs []model.Location) GeocodeOutcome {
	return GeocodeOutcome{Kind: GeocodeResolved, Locations: locs}
}

func failed(kind GeocodeKind, err error) GeocodeOutcome {
	return GeocodeOutcome{Kind: kind, Err: err}
}

// Geocode resolves a city query. Successful lookups are cached by lowercased
// query. HTTP 429 is retried, honoring Retry-After, before giving up with
// GeocodeRateLimited.
func (r *weatherRepository) Geocode(ctx context.Context, query string) GeocodeOutcome {
	raw := strings.TrimSpace(query)
	if raw == "" {
		return failed(GeocodeNotFound, ErrLocationNotFound)
	}
	if locs, ok := r.cache.Get(raw); ok {
		return resolved(locs)
	}

	params := url.Values{"q": {raw}, "limit": {"1"}}
	for attempt := 0; ; attempt++ {
		resp, err := r.get(ctx, r.geoURL+"/geo/1.0/direct", params)
		if err != nil {
			if errors.Is(err, ErrAPIKeyMissing) {
				return failed(GeocodeAuthError, err)
			}
			return failed(GeocodeFailed, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < r.retries {
			wait := retryDelay(resp.Header.Get("Retry-After"), r.backoff, attempt)
			resp.Body.Close()
			r.logger.Warnw("Geocoding rate limited, retrying", "query", raw, "attempt", attempt+1, "wait", wait)
			if err := r.sleep(ctx, wait); err != nil {
				return failed(GeocodeFailed, err)
			}
			continue
		}

		outcome := r.geocodeResponse(resp)
		resp.Body.Close()
		if outcome.Kind == GeocodeResolved {
			r.cache.Set(raw, outcome.Locations)
		}
		return outcome
	}
}

func (r *weatherRepository) geocodeResponse(resp *http.Response) GeocodeOutcome {
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return failed(GeocodeAuthError, fmt.Errorf("geocoding: %w", ErrInvalidAPIKey))
	case http.StatusNotFound:
		return failed(GeocodeNotFound, fmt.Errorf("geocoding: %w", ErrLocationNotFound))
	case http.StatusTooManyRequests:
		return failed(GeocodeRateLimited, ErrRateLimited)
	default:
		return failed(GeocodeFailed, fmt.Errorf("geocoding: %w (status %d)", ErrExternalAPI, resp.StatusCode))
	}

	var results []model.OWMGeocodeResult
	if err := decode(resp, "geocoding", &results); err != nil {
		return failed(GeocodeFailed, err)
	}
	if len(results) == 0 {
		return failed(GeocodeNotFound, fmt.Errorf("geocoding: %w", ErrLocationNotFound))
	}
	locs := make([]model.Location, 0, len(results))
	for _, res := range results {
		locs = append(locs, model.Location{Name: res.Name, Country: res.Country, Lat: res.Lat, Lon: res.Lon})
	}
	return resolved(locs)
}

// retryDelay honors a Retry-After header given in seconds or as an HTTP date,
// otherwise waits backoff*(attempt+1).
func retryDelay(header string, backoff time.Duration, attempt int) time.Duration {
	header = strings.TrimSpace(header)
	if header != "" {
		if secs, err := strconv.ParseFloat(header, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second))
		}
		if at, err := http.ParseTime(header); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
			return 0
		}
	}
	return backoff * time.Duration(attempt+1)
}
