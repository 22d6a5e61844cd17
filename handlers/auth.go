package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/impactreport/impact/backend/go-services/internal/sessions"
	"github.com/impactreport/impact/backend/go-services/internal/tokens"
	"github.com/impactreport/impact/backend/go-services/internal/users"
	"github.com/impactreport/impact/backend/go-services/pkg/logger"
	"github.com/impactreport/impact/backend/go-services/pkg/metrics"
	"github.com/impactreport/impact/backend/go-services/pkg/middleware"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	usersSvc  *users.Service
	secret    string
	ttl       time.Duration
	blacklist *sessions.Blacklist
}

func NewAuthHandler(u *users.Service, secret string, ttl time.Duration, bl *sessions.Blacklist) *AuthHandler {
	return &AuthHandler{usersSvc: u, secret: secret, ttl: ttl, blacklist: bl}
}

// Register routes under /api/auth. loginGuard (typically a rate limiter) runs
// before the login handler; authn guards logout and me.
func (h *AuthHandler) Register(rg gin.IRouter, authn gin.HandlerFunc, loginGuard ...gin.HandlerFunc) {
	a := rg.Group("/api/auth")
	a.POST("/login", append(loginGuard, h.Login)...)
	a.POST("/logout", authn, h.Logout)
	a.GET("/me", authn, h.Me)
}

// Login verifies email and password and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		metrics.Logins.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			metrics.Logins.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		metrics.Logins.WithLabelValues("error").Inc()
		logger.Errorf("login lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	token, err := tokens.GenerateAccessToken(h.secret, u, h.ttl)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		logger.Errorf("failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	metrics.Logins.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"admin":     u.Admin,
		"token":     token,
		"expiresIn": int(h.ttl.Seconds()),
	})
}

// Logout revokes the presented token for the rest of its lifetime. Without
// Redis the call still succeeds and the client is expected to drop the token.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := c.GetString(middleware.TokenKey)
	revoked := false
	if raw != "" && h.blacklist.Enabled() {
		ttl := h.ttl
		if exp, err := tokens.ExpiresAt(raw); err == nil {
			ttl = time.Until(exp)
		}
		if err := h.blacklist.Revoke(c.Request.Context(), raw, ttl); err != nil {
			logger.Warnf("failed to blacklist token on logout: %v", err)
		} else {
			revoked = ttl > 0
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out", "revoked": revoked})
}

// Me echoes the identity carried by the verified token.
func (h *AuthHandler) Me(c *gin.Context) {
	cm, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":     cm["email"],
		"firstName": cm["firstName"],
		"lastName":  cm["lastName"],
		"admin":     cm["admin"],
	})
}
