package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novaframes/content-admin/internal/auth"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler checks the placeholder administrator credentials.
type LoginHandler struct {
	creds   auth.Credentials
	limiter *auth.LoginLimiter
}

func NewLoginHandler(creds auth.Credentials, limiter *auth.LoginLimiter) *LoginHandler {
	return &LoginHandler{creds: creds, limiter: limiter}
}

func (h *LoginHandler) Login(c *gin.Context) {
	if !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	if !h.creds.Check(req.Email, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "email": req.Email})
}

func (h *LoginHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
}
