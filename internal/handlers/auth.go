// Package handlers contains HTTP request handlers for the auth service.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/metrics"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/middleware"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/service"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the slack allowed on top of the avatar size for
// multipart boundaries and headers.
const multipartOverhead = 64 << 10

// AuthHandler handles signup, login and profile requests.
type AuthHandler struct {
	responder
	authService    service.AuthService
	cookies        *CookieHelper
	metrics        *metrics.Metrics
	avatarMaxBytes int64
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService, cookies *CookieHelper, m *metrics.Metrics, logger *slog.Logger, dev bool, avatarMaxBytes int64) *AuthHandler {
	if avatarMaxBytes <= 0 {
		avatarMaxBytes = service.DefaultAvatarMaxBytes
	}
	return &AuthHandler{
		responder:      responder{logger: logger, dev: dev},
		authService:    authService,
		cookies:        cookies,
		metrics:        m,
		avatarMaxBytes: avatarMaxBytes,
	}
}

// SignupRequest is the signup payload. A role field, if sent, is ignored.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the self-service profile payload.
type UpdateProfileRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.Signup(c.Request.Context(), service.SignupRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.metrics.AuthEvent("signup", metrics.OutcomeFailure)
		h.respondError(c, "signup", err)
		return
	}
	h.metrics.AuthEvent("signup", metrics.OutcomeSuccess)

	h.cookies.SetSession(c, session.Token, session.ExpiresIn)
	c.JSON(http.StatusCreated, session.User.Summary())
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.AuthEvent("login", metrics.OutcomeFailure)
		h.respondError(c, "login", err)
		return
	}
	h.metrics.AuthEvent("login", metrics.OutcomeSuccess)

	h.cookies.SetSession(c, session.Token, session.ExpiresIn)
	summary := session.User.Summary()
	c.JSON(http.StatusOK, gin.H{
		"id":          summary.ID,
		"username":    summary.Username,
		"email":       summary.Email,
		"role":        summary.Role,
		"profile_pic": summary.ProfilePic,
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.ClearSession(c)
	respondMessage(c, http.StatusOK, "Logged out successfully")
}

// GetProfile handles GET /api/auth/profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.Identity(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Not authorized")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.Identity(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user.ID, service.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UploadAvatar handles POST /api/auth/profile/avatar with a multipart
// "avatar" file.
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	user, ok := middleware.Identity(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.avatarMaxBytes+multipartOverhead)
	header, err := c.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, "upload avatar", service.ErrImageTooLarge)
			return
		}
		respondMessage(c, http.StatusBadRequest, msgMissingAvatar)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, "upload avatar", err)
		return
	}
	defer file.Close()

	// One extra byte lets the service tell an exact fit from an oversize file.
	data, err := io.ReadAll(io.LimitReader(file, h.avatarMaxBytes+1))
	if err != nil {
		h.respondError(c, "upload avatar", err)
		return
	}

	updated, err := h.authService.UpdateAvatar(c.Request.Context(), user.ID, data)
	if err != nil {
		h.respondError(c, "upload avatar", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Validate handles GET /api/auth/validate.
func (h *AuthHandler) Validate(c *gin.Context) {
	user, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "message": msgValidationFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": user.Summary()})
}

// bindJSON decodes the request body into dst. An empty body leaves dst zero
// so the service reports the missing fields.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondMessage(c, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}
