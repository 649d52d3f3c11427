package delivery

import (
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Status  string `json:"Status"`
	Message string `json:"Message"`
	Data    any    `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a failed use-case call. Server-side failures are logged
// and reported with a generic message.
func respondError(c *gin.Context, log *logrus.Logger, action string, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		log.WithField("path", c.FullPath()).Errorf("Failed to %s: %v", action, err)
		_ = c.Error(err)
		ErrorResponse(c, status, "Internal server error")
		return
	}
	log.Warnf("Failed to %s: %v", action, err)
	ErrorResponse(c, status, "Failed to "+action+": "+err.Error())
}
