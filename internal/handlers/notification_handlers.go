package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

// GetMyNotifications is the handler for GET /notifications.
// Unread notifications come first, then newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	notes, err := h.Notes.ListMyNotifications(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Notifications retrieved successfully", notes)
}

// MarkNotificationAsRead is the handler for PATCH /notifications/:id/read.
// Another user's notification reads as not found.
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	note, err := h.Notes.MarkRead(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Notification marked as read", note)
}
