package handlers

import (
	"log/slog"
	"net/http"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/middleware"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/models"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler serves role management and the role-gated demo endpoints.
type UserHandler struct {
	responder
	authService service.AuthService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(authService service.AuthService, logger *slog.Logger, dev bool) *UserHandler {
	return &UserHandler{
		responder:   responder{logger: logger, dev: dev},
		authService: authService,
	}
}

// UpdateRoleRequest is the role change payload.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type callerInfo struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// List handles GET /api/users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, "list users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateRole handles PUT /api/users/:id/role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		h.respondError(c, "update role", err)
		return
	}

	summary := user.Summary()
	summary.ProfilePic = ""
	c.JSON(http.StatusOK, gin.H{
		"message": "User role updated to " + string(user.Role) + " successfully",
		"user":    summary,
	})
}

// Public handles GET /api/users/public.
func (h *UserHandler) Public(c *gin.Context) {
	respondMessage(c, http.StatusOK, "This is a public endpoint accessible by everyone")
}

// Protected handles GET /api/users/protected.
func (h *UserHandler) Protected(c *gin.Context) {
	h.respondWithCaller(c, "This is a protected endpoint for authenticated users only")
}

// Moderator handles GET /api/users/moderator.
func (h *UserHandler) Moderator(c *gin.Context) {
	h.respondWithCaller(c, "This is a moderator endpoint, accessible by moderators and admins only")
}

// Admin handles GET /api/users/admin.
func (h *UserHandler) Admin(c *gin.Context) {
	h.respondWithCaller(c, "This is an admin endpoint, accessible by admins only")
}

func (h *UserHandler) respondWithCaller(c *gin.Context, message string) {
	user, ok := middleware.Identity(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Not authorized")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"user":    callerInfo{ID: user.ID, Username: user.Username, Role: user.Role},
	})
}
