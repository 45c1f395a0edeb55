package repository

import (
	"errors"
	"fmt"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrAPIKeyMissing    = errors.New("API key missing")
	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrRateLimited      = errors.New("geocoding rate limit exceeded")
	ErrExternalAPI      = errors.New("external API error")
	ErrNetwork          = errors.New("network error")
	ErrNoCoordinates    = errors.New("response carries no coordinates")
	ErrNoArticles       = errors.New("no articles in response")
)

// statusError maps a non-200 status from a weather endpoint to a sentinel.
func statusError(endpoint string, status int) error {
	switch status {
	case 401:
		return fmt.Errorf("%s: %w", endpoint, ErrInvalidAPIKey)
	case 404:
		return fmt.Errorf("%s: %w", endpoint, ErrLocationNotFound)
	case 429:
		return fmt.Errorf("%s: %w (status 429)", endpoint, ErrExternalAPI)
	default:
		return fmt.Errorf("%s: %w (status %d)", endpoint, ErrExternalAPI, status)
	}
}
