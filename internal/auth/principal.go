package auth

import "github.com/01moynul/medistore/internal/models"

// Principal is the authenticated caller. It is resolved once per request by
// the auth middleware and passed explicitly into every service call.
type Principal struct {
	UserID int64
	Role   models.Role
}

func (p Principal) IsAdmin() bool  { return p.Role == models.RoleAdmin }
func (p Principal) IsSeller() bool { return p.Role == models.RoleSeller }

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
