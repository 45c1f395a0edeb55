package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/model"
	"github.com/fakhrymubarak/skytrackr/internal/repository"
	"github.com/fakhrymubarak/skytrackr/internal/service"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSONResponse(w, statusCode, model.Response{
		Data:    data,
		Message: "Success",
	})
}

func writeErrorMessage(w http.ResponseWriter, statusCode int, errMsg string) {
	writeJSONResponse(w, statusCode, model.Response{
		Error:   &errMsg,
		Message: "Error",
	})
}

// writeError maps err to a status code and answers with its user-facing message.
func writeError(w http.ResponseWriter, err error) {
	writeErrorMessage(w, statusFor(err), service.UserMessage(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrInvalidAPIKey), errors.Is(err, repository.ErrAPIKeyMissing):
		return http.StatusBadGateway
	case errors.Is(err, repository.ErrNoArticles):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrGeolocationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, repository.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrInvalidCoordinates):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStaleResponse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}
