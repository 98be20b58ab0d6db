package handler

import (
	"errors"
	"net/http"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"

	"lifequest/internal/generation"
	"lifequest/internal/services"
)

type errorBody struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrProfileIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrMissionConflict),
		errors.Is(err, services.ErrMissionAlreadyStarted),
		errors.Is(err, services.ErrUserLock):
		return http.StatusConflict
	case errors.Is(err, services.ErrMissionNotFound),
		errors.Is(err, services.ErrMissionNotStarted),
		errors.Is(err, services.ErrStepNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway
	}
	return 0
}

// abort writes domain errors with their own status and leaves everything else
// to httpx.
func abort(c echo.Context, data any, err error) error {
	if err == nil {
		return httpx.RestAbort(c, data, nil)
	}

	status := statusOf(err)
	if status == 0 {
		return httpx.RestAbort(c, nil, err)
	}

	body := errorBody{Error: err.Error()}
	var incomplete *services.ProfileIncompleteError
	if errors.As(err, &incomplete) {
		body.MissingFields = incomplete.Missing
	}

	var generationErr *generation.Error
	if errors.As(err, &generationErr) {
		// provider details stay in the logs
		body.Error = generation.ErrGenerationFailed.Error()
	}

	return c.JSON(status, body)
}
