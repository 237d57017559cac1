package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"erdiagram/internal/responses"
	"erdiagram/internal/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrGenerator):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope with the status the service error maps to.
func fail(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(message, "error", err, "method", c.Request.Method, "path", c.FullPath())
	}
	responses.Fail(c, status, err, message)
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return false
	}
	return true
}
