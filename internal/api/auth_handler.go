package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/red11scout/blueallygenaiwebsite/internal/auth"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

// AuthHandler handles authentication operations
type AuthHandler struct {
	auth services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AuthResponse is returned on login. The token is also set as an HTTP-only
// cookie; cookie sessions echo CSRFToken in the X-CSRF-Token header.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
	CSRFToken string      `json:"csrf_token"`
}

func isSecure(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}

func setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", isSecure(c), httpOnly)
}

// Register creates an account
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login authenticates a user and starts a cookie session
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	csrf, err := auth.NewCSRFToken()
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	setCookie(c, auth.TokenCookie, resp.Token, maxAge, true)
	setCookie(c, auth.CSRFCookie, csrf, maxAge, false)

	c.JSON(http.StatusOK, AuthResponse{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		User:      resp.User,
		CSRFToken: csrf,
	})
}

// Logout clears the session cookies
func (h *AuthHandler) Logout(c *gin.Context) {
	setCookie(c, auth.TokenCookie, "", -1, true)
	setCookie(c, auth.CSRFCookie, "", -1, false)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
