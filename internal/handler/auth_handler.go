package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"toolhub/internal/model"
	"toolhub/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgSignupMissingFields = "Missing required fields: email, password, firstName, lastName."
	msgPasswordTooLong     = "Password must be at most 72 bytes."
	msgUserExists          = "A user with this email already exists."
	msgUserCreated         = "User created successfully."
	msgLoginMissingFields  = "Email and password are required."
	msgInvalidCredentials  = "Invalid credentials."
	msgLoginSuccessful     = "Login successful."
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	log     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{service: s, log: log}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgSignupMissingFields)
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooLong):
			respondError(c, http.StatusBadRequest, msgPasswordTooLong)
		case errors.Is(err, service.ErrInvalidRequest):
			respondError(c, http.StatusBadRequest, msgSignupMissingFields)
		case errors.Is(err, service.ErrConflict):
			respondError(c, http.StatusConflict, msgUserExists)
		default:
			h.log.ErrorContext(c.Request.Context(), "signup failed", "error", err)
			respondError(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": msgUserCreated,
		"user":    user.ToCreated(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgLoginMissingFields)
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			respondError(c, http.StatusBadRequest, msgLoginMissingFields)
		case errors.Is(err, service.ErrUnauthorized):
			respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			h.log.ErrorContext(c.Request.Context(), "login failed", "error", err)
			respondError(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": msgLoginSuccessful,
		"token":   token,
	})
}

// RegisterRoutes registers auth routes; signupMW and loginMW run before the handlers.
func (h *AuthHandler) RegisterRoutes(r gin.IRoutes, signupMW, loginMW gin.HandlerFunc) {
	r.POST("/signup", signupMW, h.Signup)
	r.POST("/login", loginMW, h.Login)
}
