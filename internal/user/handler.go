package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/krishang-r/vehicle-rental/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary      Register new user
// @Description  Creates a member account and returns access & refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "User registration data"
// @Success      201      {object}  LoginResponse
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, accessToken, refreshToken, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		case errors.Is(err, ErrUsernameExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		case errors.Is(err, ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		}
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Login godoc
// @Summary      Login user
// @Description  Authenticates by username and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "User credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  gin.H
// @Failure      401      {object}  gin.H
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]string  true  "Refresh token payload"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  gin.H
// @Failure      401      {object}  gin.H
// @Router       /auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}

	newAccessToken, user, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": newAccessToken,
		"user":         user,
	})
}

// GetMe godoc
// @Summary      Get current user
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  User
// @Failure      401  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UsernameAvailable godoc
// @Summary      Check username availability
// @Description  Probe used by the registration form.
// @Tags         auth
// @Produce      json
// @Param        username  query     string  true  "Candidate username"
// @Success      200       {object}  map[string]interface{}
// @Router       /auth/username-available [get]
func (h *Handler) UsernameAvailable(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "Enter a username"})
		return
	}

	if len(username) < 8 || len(username) > 12 {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "Username must be 8-12 characters"})
		return
	}

	available, err := h.service.UsernameAvailable(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !available {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "Username already taken"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": true, "message": "Username is available"})
}

// Promote godoc
// @Summary      Promote user to admin
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  gin.H
// @Failure      400     {object}  gin.H
// @Failure      404     {object}  gin.H
// @Router       /admin/users/{userID}/promote [post]
func (h *Handler) Promote(c *gin.Context) {
	h.setRole(c, RoleAdmin)
}

// Demote godoc
// @Summary      Demote admin to member
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  gin.H
// @Failure      400     {object}  gin.H
// @Failure      404     {object}  gin.H
// @Router       /admin/users/{userID}/demote [post]
func (h *Handler) Demote(c *gin.Context) {
	h.setRole(c, RoleMember)
}

func (h *Handler) setRole(c *gin.Context, role string) {
	requestingUserID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.SetRole(c.Request.Context(), requestingUserID, targetID, role); err != nil {
		switch {
		case errors.Is(err, ErrSelfDemotion):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You can't demote yourself"})
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}
