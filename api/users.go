package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/service/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service users.UserUseCase
}

func NewUserHandler(service users.UserUseCase) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Register(router *gin.RouterGroup, tokens TokenVerifier) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)

	authed := router.Group("", AuthMiddleware(tokens))
	authed.GET("/profile", h.profile)
	authed.PUT("/update-profile", h.updateProfile)
	authed.PUT("/update-password", h.updatePassword)
}

type registerRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Birthday        string `json:"birthday"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	IsAdmin         bool   `json:"is_admin"`
}

func (h *UserHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": "validation"})
		return
	}
	birthday, err := parseDate(req.Birthday)
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), users.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Birthday:        birthday,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		IsAdmin:         req.IsAdmin,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully", "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": "validation"})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "login successful",
		"access":   token,
		"is_admin": user.IsAdmin,
	})
}

func (h *UserHandler) profile(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), principalFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile found", "user": user})
}

type updateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Birthday    string `json:"birthday"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": "validation"})
		return
	}
	birthday, err := parseDate(req.Birthday)
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), principalFrom(c), users.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Birthday:    birthday,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated successfully", "user": user})
}

type updatePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *UserHandler) updatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": "validation"})
		return
	}

	if err := h.service.UpdatePassword(c.Request.Context(), principalFrom(c), req.NewPassword, req.ConfirmPassword); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password reset successfully"})
}
