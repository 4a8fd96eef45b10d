package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-payments.backend/pkg/jwt"
)

const (
	// TokenCookie is the cookie carrying the session JWT
	TokenCookie = "token"
	// UserAddressKey is the context key for the authenticated wallet address
	UserAddressKey = "userAddress"
)

// AuthMiddleware validates the session cookie and stores the wallet
// address it was issued for in the request context.
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "session expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		c.Set(UserAddressKey, claims.Address)
		c.Next()
	}
}

// GetUserAddress gets the authenticated wallet address from context
func GetUserAddress(c *gin.Context) (string, bool) {
	address, exists := c.Get(UserAddressKey)
	if !exists {
		return "", false
	}
	return address.(string), true
}
