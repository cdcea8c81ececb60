package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/service"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticator turns a bearer token into the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// AuthMiddleware creates a gin.HandlerFunc that acts as our "security guard".
// It resolves the Bearer token into an auth.Principal and stores it on the
// context for PrincipalFrom.
func AuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "Invalid token format (must be Bearer)")
			return
		}

		// 2. --- Validate Token and load the user ---
		principal, err := authn.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			var svcErr *service.Error
			switch {
			case errors.Is(err, service.ErrForbidden) && errors.As(err, &svcErr):
				abort(c, http.StatusForbidden, svcErr.Msg)
			case errors.Is(err, service.ErrUnauthenticated) && errors.As(err, &svcErr):
				abort(c, http.StatusUnauthorized, svcErr.Msg)
			default:
				log.Printf("ERROR: authenticate: %v", err)
				abort(c, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		// 3. --- Success ---
		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
