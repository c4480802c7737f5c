package v1

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	analyticsapp "salesdash/internal/analytics/application"
	analyticsdomain "salesdash/internal/analytics/domain"
	exportapp "salesdash/internal/export/application"
	exportdomain "salesdash/internal/export/domain"
	salesinfra "salesdash/internal/sales/infrastructure"
)

// ErrorResponse corps JSON des erreurs
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor associe une erreur applicative à un code HTTP
func StatusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, analyticsapp.ErrNoDataset),
		errors.Is(err, exportapp.ErrUnknownChart),
		errors.Is(err, exportdomain.ErrInvalidExport):
		return http.StatusNotFound
	case salesinfra.IsIngestionError(err),
		errors.Is(err, exportapp.ErrNotEnoughData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analyticsdomain.ErrInvalidRange),
		errors.Is(err, analyticsdomain.ErrInvalidHolidayMode),
		errors.Is(err, ErrBadParameter):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// abortWithError répond {"error": ...}; les 500 sont journalisées sans exposer le détail
func abortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}
