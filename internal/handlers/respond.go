package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/middleware"
	"github.com/01moynul/medistore/internal/service"
	"github.com/gin-gonic/gin"
)

// errorStatus maps service sentinels to HTTP status codes. The first
// match wins.
var errorStatus = []struct {
	kind   error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrEmptyCart, http.StatusBadRequest},
	{service.ErrInvalidAmount, http.StatusBadRequest},
	{service.ErrInvalidTransition, http.StatusBadRequest},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrCartChanged, http.StatusConflict},
	{service.ErrConflict, http.StatusConflict},
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError writes err as an envelope. Unknown errors become a generic
// 500 and are logged; their text never reaches the client.
func respondError(c *gin.Context, err error) {
	for _, m := range errorStatus {
		if !errors.Is(err, m.kind) {
			continue
		}
		message := m.kind.Error()
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			message = svcErr.Msg
		}
		fail(c, m.status, message)
		return
	}

	log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
	fail(c, http.StatusInternalServerError, "Internal server error")
}

// principal returns the caller set by AuthMiddleware. Routes without the
// middleware get a 401.
func principal(c *gin.Context) (auth.Principal, bool) {
	p, found := middleware.PrincipalFrom(c)
	if !found {
		fail(c, http.StatusUnauthorized, "Authentication required")
	}
	return p, found
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
