package middleware

import (
	"net/http"
	"strings"

	"github.com/01moynul/medistore/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Role-Based Middleware ---
//
// These middleware functions are designed to be USED *AFTER*
// AuthMiddleware(). The role on the principal was read from the users
// table during authentication, so no second lookup is needed here.
//

// RequireRoles lets the request through when the caller holds any of roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	denied := "Access denied: " + strings.Join(names, " or ") + " role required"

	return func(c *gin.Context) {
		// 1. Get principal from AuthMiddleware
		p, ok := PrincipalFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		// 2. Check permission
		if !p.HasRole(roles...) {
			abort(c, http.StatusForbidden, denied)
			return
		}

		c.Next()
	}
}

// SellerMiddleware admits sellers and admins.
func SellerMiddleware() gin.HandlerFunc {
	return RequireRoles(models.RoleSeller, models.RoleAdmin)
}

// AdminMiddleware admits admins only.
func AdminMiddleware() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}
