package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
)

// requestTimeout bounds each HTTP-triggered store operation.
const requestTimeout = 3 * time.Second

// authUserKey is where the auth middleware stores the verified user id.
const authUserKey = "auth_user_id"

var validate = validator.New()

// callerID returns the authenticated user id set by the auth middleware.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetString(authUserKey)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	return id, true
}

// respondError maps domain sentinels onto HTTP statuses. Anything else is a
// persistence or infrastructure failure and stays opaque to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, messaging.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, messaging.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, messaging.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, messaging.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting state"})
	case errors.Is(err, messaging.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timed out"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
