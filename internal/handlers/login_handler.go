package handlers

import (
	"log/slog"
	"net/http"

	"go-sales-agent/internal/auth"
	"go-sales-agent/internal/config"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler checks the single configured admin account and issues tokens.
type LoginHandler struct {
	tokens       *auth.TokenManager
	username     string
	passwordHash string
	logger       *slog.Logger
}

func NewLoginHandler(tokens *auth.TokenManager, cfg config.AuthConfig, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		tokens:       tokens,
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
		logger:       logger,
	}
}

func (h *LoginHandler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// 2. Check the configured admin (bcrypt compare, no user table)
	if input.Username != h.username || !auth.CheckPassword(h.passwordHash, input.Password) {
		h.logger.Warn("failed login", "username", input.Username, "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 3. Generate JWT Token
	token, err := h.tokens.GenerateToken(h.username, auth.RoleAdmin)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// 4. Return Token and Role
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     auth.RoleAdmin,
		"username": h.username,
	})
}
