package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Admin: User Moderation ---
//

// UserStatusInput is the body of PATCH /admin/users/:userId/status.
type UserStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateUserStatus bans (BANNED) or reinstates (ACTIVE) an account.
// Banned users are rejected by AuthMiddleware on their next request.
func (h *Handlers) UpdateUserStatus(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	userID, valid := pathID(c, "userId")
	if !valid {
		return
	}

	var input UserStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, err := h.Users.SetUserStatus(c.Request.Context(), p, userID, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "User status updated", user)
}
