package service

import (
	"context"
	"errors"

	"github.com/fakhrymubarak/skytrackr/internal/repository"
)

const GenericMessage = "Something went wrong. Please try again."

var userMessages = []struct {
	err error
	msg string
}{
	{repository.ErrLocationNotFound, "City not found. Check the spelling and try again."},
	{repository.ErrInvalidAPIKey, "Invalid API key. Check your OpenWeatherMap configuration."},
	{repository.ErrAPIKeyMissing, "No API key configured. Set OPENWEATHERMAP_API_KEY."},
	{repository.ErrRateLimited, "Too many requests. Please wait a moment and try again."},
	{repository.ErrNetwork, "Network error. Check your connection and try again."},
	{repository.ErrNoArticles, "No news available right now."},
	{ErrInvalidCoordinates, "Those coordinates are not valid."},
	{ErrGeolocationTimeout, "Location request timed out."},
	{ErrStaleResponse, "A newer request replaced this one."},
	{context.DeadlineExceeded, "The request took too long. Please try again."},
}

// UserMessage returns the text shown to a user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return GenericMessage
}
