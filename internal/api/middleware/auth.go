package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certchain/backend/internal/services"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_token"

// IdentityKey is the gin context key holding the resolved *services.Identity.
const IdentityKey = "identity"

type AuthMiddleware struct {
	auth *services.AuthService
}

func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth resolves the session cookie to an identity or rejects with 401.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		identity, err := am.auth.IdentityFromToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// RequireSuperAdmin stacks on RequireAuth and rejects non-super-admins.
func (am *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil || !identity.IsSuperAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "super admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by RequireAuth, or nil.
func CurrentIdentity(c *gin.Context) *services.Identity {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*services.Identity)
	return identity
}
