package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/01moynul/medistore/internal/service"
	"github.com/gin-gonic/gin"
)

// --- User Registration ---

// Register creates a CUSTOMER or SELLER account.
func (h *Handlers) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, err := h.Users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "User registered successfully", user)
}

// --- Login ---

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	token, user, err := h.Users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Login successful", gin.H{"token": token, "user": user})
}

func (h *Handlers) Me(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}

	user, err := h.Users.Me(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "User retrieved successfully", user)
}

// --- Health ---

// Health reports liveness and, when Ping is set, store reachability.
func (h *Handlers) Health(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			fail(c, http.StatusServiceUnavailable, "Database unreachable")
			return
		}
	}
	ok(c, http.StatusOK, "OK", gin.H{"status": "up"})
}
