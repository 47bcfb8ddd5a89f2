package handlers

import (
	"errors"
	"net/http"

	"prodtrack_backend/internal/middleware"
	"prodtrack_backend/internal/services"
	"prodtrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves login and the current-user profile.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login verifies credentials and returns the user with an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid login or password", ""))
		case errors.Is(err, services.ErrAccountFired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Account is deactivated", ""))
		default:
			utils.RespondInternalError(c, err, "Login: unexpected error")
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfile returns the authenticated caller's account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	callerID := middleware.CallerID(c)
	if callerID == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", ""))
		return
	}

	user, err := h.authService.GetProfile(*callerID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found", ""))
			return
		}
		utils.RespondInternalError(c, err, "GetProfile: unexpected error")
		return
	}
	c.JSON(http.StatusOK, user)
}
