package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"taskflow/internal/logging"
	"taskflow/internal/middleware"
	"taskflow/internal/models"
)

type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type AuthHandler struct {
	users  UserLookup
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
}

func NewAuthHandler(users UserLookup, secret []byte, ttl time.Duration) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, ttl: ttl, log: logging.Component("auth")}
}

// @Summary      Log in
// @Description  Checks the password and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	username := strings.TrimSpace(req.Username)

	user, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil || user == nil {
		h.log.Warn().Str("username", username).Err(err).Msg("[auth][login] unknown user")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	ph := strings.TrimSpace(user.PasswordHash)
	if ph == "" || bcrypt.CompareHashAndPassword([]byte(ph), []byte(req.Password)) != nil {
		h.log.Warn().Int64("user_id", user.ID).Msg("[auth][login] password mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, exp, err := middleware.IssueToken(h.secret, user.ID, user.RoleID, h.ttl)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("[auth][login] sign token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	h.log.Info().Int64("user_id", user.ID).Int("role", user.RoleID).
		Dur("took", time.Since(start)).Msg("[auth][login] success")
	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": token,
		"expires_at":   exp.UTC().Format(time.RFC3339),
	})
}
