package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/bala2207022/face-attendance/internal/service"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
	"github.com/bala2207022/face-attendance/pkg/response"
)

// AuthHandler issues bearer tokens for the administrative endpoints.
// Only a bcrypt hash of the admin key is held in memory.
type AuthHandler struct {
	tokens  *service.TokenService
	keyHash []byte
}

// NewAuthHandler constructs the handler. The key is the shared secret
// operators exchange for a token; an empty key disables the exchange.
func NewAuthHandler(tokens *service.TokenService, key string) *AuthHandler {
	h := &AuthHandler{tokens: tokens}
	if key != "" {
		if hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost); err == nil {
			h.keyHash = hash
		}
	}
	return h
}

type tokenPayload struct {
	Key string `json:"key"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Token godoc
// @Summary Exchange the admin key for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body tokenPayload true "Admin key"
// @Success 200 {object} response.Envelope
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var payload tokenPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, err)
		return
	}
	if len(h.keyHash) == 0 || bcrypt.CompareHashAndPassword(h.keyHash, []byte(payload.Key)) != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	token, expires, err := h.tokens.Issue("admin")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires.UTC().Format("2006-01-02T15:04:05Z07:00")})
}
