package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amo12312/accordai/middleware"
	"github.com/Amo12312/accordai/services"
	"github.com/Amo12312/accordai/utils"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleAuthRequest is the body of POST /api/auth/google. The Google ID
// token is verified upstream; this endpoint receives the verified claims.
type GoogleAuthRequest struct {
	GoogleID    string `json:"googleId" binding:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// RegisterHandler creates an email/password account.
func (h *APIHandler) RegisterHandler(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}

	user, token, err := h.authService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.SendJSONError(c, http.StatusConflict, err.Error(), nil)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// LoginHandler authenticates an email/password account.
func (h *APIHandler) LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.SendJSONError(c, http.StatusUnauthorized, err.Error(), nil)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// GoogleAuthHandler signs a user in via Google, creating or linking the
// account as needed.
func (h *APIHandler) GoogleAuthHandler(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}

	user, token, err := h.authService.GoogleSignIn(req.GoogleID, req.Email, req.DisplayName)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// MeHandler returns the authenticated user's profile.
func (h *APIHandler) MeHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.SendJSONError(c, http.StatusUnauthorized, "Token is not valid", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
