package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
	"go-payments.backend/internal/interfaces/http/middleware"
	"go-payments.backend/internal/interfaces/http/response"
	"go-payments.backend/internal/metrics"
	"go-payments.backend/internal/usecases"
	"go-payments.backend/pkg/jwt"
)

type loginVerifier interface {
	VerifyLogin(ctx context.Context, address, message, signature string) (*entities.User, error)
}

// AuthHandler handles wallet login endpoints
type AuthHandler struct {
	auth         loginVerifier
	jwtService   *jwt.Service
	secureCookie bool
}

// GenerateTokenInput is the signed login payload
type GenerateTokenInput struct {
	UserAddress string `json:"userAddress" binding:"required"`
	Message     string `json:"message" binding:"required"`
	Signature   string `json:"signature" binding:"required"`
}

// NewAuthHandler creates a new auth handler. secureCookie should be true
// everywhere except local development over plain http.
func NewAuthHandler(auth *usecases.AuthUsecase, jwtService *jwt.Service, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, jwtService: jwtService, secureCookie: secureCookie}
}

// GenerateToken verifies a signed login message and issues the session
// cookie
// POST /generate-token
func (h *AuthHandler) GenerateToken(c *gin.Context) {
	var input GenerateTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.auth.VerifyLogin(c.Request.Context(), input.UserAddress, input.Message, input.Signature)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		response.Error(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.EthereumAddress)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		response.Error(c, err)
		return
	}
	metrics.LoginAttempts.WithLabelValues("accepted").Inc()

	maxAge := int(h.jwtService.Expiry().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secureCookie, true)

	response.Success(c, http.StatusOK, gin.H{
		"message": "Token generated successfully",
		"user":    user,
	})
}
