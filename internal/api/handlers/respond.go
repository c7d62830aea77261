package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certchain/backend/internal/services"
	"github.com/certchain/backend/internal/store"
)

// respondError maps the service error taxonomy onto HTTP status codes. The
// underlying message goes out as-is; services already avoid leaking
// internals in their error strings.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var authzErr *services.AuthorizationError
	var depErr *services.DependencyError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, services.ErrNotAuthenticated),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authzErr.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict), errors.Is(err, services.ErrAlreadyRevoked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &depErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream dependency failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
