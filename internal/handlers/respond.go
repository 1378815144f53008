package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/service"
	"github.com/gin-gonic/gin"
)

// Client-facing messages.
const (
	msgInternalError    = "Internal server error"
	msgWeakPassword     = "Password must be at least 8 characters long and include at least one number and one special character"
	msgInvalidRole      = "Invalid role. Must be 'user', 'moderator', or 'admin'"
	msgInvalidBody      = "Invalid request body"
	msgMissingAvatar    = "Please upload an avatar image"
	msgStorageDisabled  = "Avatar uploads are not configured"
	msgValidationFailed = "User not found or token invalid"
)

var errorMessages = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrMissingFields, http.StatusBadRequest, "Please fill all required fields"},
	{service.ErrMissingCredentials, http.StatusBadRequest, "Please provide email and password"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "Please provide a valid email address"},
	{service.ErrWeakPassword, http.StatusBadRequest, msgWeakPassword},
	{service.ErrPasswordTooLong, http.StatusBadRequest, "Password must be at most 72 bytes long"},
	{service.ErrEmailTaken, http.StatusBadRequest, "Email already in use"},
	{service.ErrUsernameTaken, http.StatusBadRequest, "Username already taken"},
	{service.ErrNothingToUpdate, http.StatusBadRequest, "Nothing to update"},
	{service.ErrInvalidRole, http.StatusBadRequest, msgInvalidRole},
	{service.ErrUnsupportedImage, http.StatusBadRequest, "Avatar must be a JPEG, PNG, GIF or WebP image"},
	{service.ErrImageTooLarge, http.StatusRequestEntityTooLarge, "Avatar image is too large"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrStorageDisabled, http.StatusServiceUnavailable, msgStorageDisabled},
}

// responder turns service errors into JSON responses.
type responder struct {
	logger *slog.Logger
	dev    bool
}

func (r responder) respondError(c *gin.Context, op string, err error) {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"message": m.message})
			return
		}
	}

	r.logger.ErrorContext(c.Request.Context(), "request failed", "op", op, "err", err)
	body := gin.H{"message": msgInternalError}
	if r.dev {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
