package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"wetech/middleware"
	"wetech/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandler issues admin session tokens.
type AdminHandler struct {
	username     string
	passwordHash []byte
	issuer       *utils.TokenIssuer
	tokenTTL     time.Duration
	logger       *zap.Logger
}

func NewAdminHandler(username, passwordHash string, issuer *utils.TokenIssuer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		username:     username,
		passwordHash: []byte(passwordHash),
		issuer:       issuer,
		tokenTTL:     12 * time.Hour,
		logger:       logger,
	}
}

type adminLoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the configured admin credentials and returns a JWT.
func (h *AdminHandler) Login(c *gin.Context) {
	logger := getLogger(c, h.logger)
	var input adminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(h.passwordHash) == 0 {
		logger.Error("Admin login attempted but ADMIN_PASSWORD_HASH is not set")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin login is disabled"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(h.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(input.Password))
	if !userOK || passErr != nil {
		logger.Warn("Admin login failed", zap.String("username", input.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.issuer.GenerateToken(h.username, middleware.AdminRole, h.tokenTTL)
	if err != nil {
		logger.Error("Failed to sign admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": int(h.tokenTTL.Seconds())})
}
