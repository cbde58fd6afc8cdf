package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/missionfiles/internal/models"
)

// Status сопоставляет ошибку сервиса HTTP-статусу.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrMalformedRange):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnsatisfiableRange):
		return http.StatusRequestedRangeNotSatisfiable
	default:
		return http.StatusInternalServerError
	}
}

// Write отвечает клиенту статусом по ошибке. 403 уходит с пустым телом,
// остальные с текстом ошибки.
func Write(w http.ResponseWriter, err error) int {
	status := Status(err)
	if status == http.StatusForbidden {
		w.WriteHeader(status)
		return status
	}
	http.Error(w, err.Error(), status)
	return status
}
