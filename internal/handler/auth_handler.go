package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/middleware"
	"github.com/minigolfeveryday/mged-site/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginRequest login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	response, err := h.service.Login(req.Username, req.Password)
	if errors.Is(err, common.ErrAccountLocked) {
		common.ErrorResponse(c, http.StatusLocked, "Account temporarily locked due to failed login attempts", err)
		return
	}
	if errors.Is(err, common.ErrInvalidCredentials) {
		common.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": response.Token,
		"user":  response.User,
	})
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.service.Register(&req)
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid username, email or password", err)
		return
	case errors.Is(err, common.ErrUserAlreadyExists):
		common.ErrorResponse(c, http.StatusConflict, "Username already taken", err)
		return
	case errors.Is(err, common.ErrEmailAlreadyUsed):
		common.ErrorResponse(c, http.StatusConflict, "Email already registered", err)
		return
	case err != nil:
		common.ErrorResponse(c, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "User not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.ToResponse(true)})
}

// ChangePasswordRequest change password payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.service.ChangePassword(middleware.GetUserID(c), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		common.ErrorResponse(c, http.StatusUnauthorized, "Current password is incorrect", err)
		return
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "New password too short", err)
		return
	case err != nil:
		common.ErrorResponse(c, http.StatusInternalServerError, "Password change failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so this
// just acknowledges; the client drops its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// ListUsers handles GET /api/admin/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ToggleUserActive handles POST /api/admin/users/:id/toggle-active
func (h *AuthHandler) ToggleUserActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	user, svcErr := h.service.ToggleUserActive(middleware.GetUserID(c), uint(id))
	switch {
	case errors.Is(svcErr, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "You cannot deactivate your own account", svcErr)
		return
	case errors.Is(svcErr, common.ErrUserNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "User not found", svcErr)
		return
	case svcErr != nil:
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to update user", svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
