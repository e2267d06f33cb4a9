package controller

import (
	"net/http"

	"github.com/fisa/matjip-backend/internal/app/service"
	apperrors "github.com/fisa/matjip-backend/internal/errors"
	"github.com/fisa/matjip-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	identityService service.IdentityService
}

func NewAuthController(identityService service.IdentityService) *AuthController {
	return &AuthController{identityService: identityService}
}

type RegisterRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Email string `json:"email" binding:"required,max=100"`
}

type LoginRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

// Register handles registration (or returns the existing user for the same name+email)
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := ctrl.identityService.Register(req.Name, req.Email)
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
		"session": token,
	})
}

// Login handles login by user id + email
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := ctrl.identityService.Login(req.UserID, req.Email)
	if err != nil {
		respondError(c, err, "login user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"session": token,
	})
}

// Logout revokes the current session token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	session := middleware.GetSession(c)
	if err := ctrl.identityService.Logout(c.Request.Context(), session.Claims); err != nil {
		respondError(c, err, "logout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the current session
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	session := middleware.GetSession(c)
	user, err := ctrl.identityService.GetUser(session.UserID)
	if err != nil {
		respondError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logged_in": true,
		"user":      user,
	})
}

// ListUsers GET /api/v1/users
func (ctrl *AuthController) ListUsers(c *gin.Context) {
	users, err := ctrl.identityService.ListUsers()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}
