package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "go-payments.backend/internal/domain/errors"
	"go-payments.backend/internal/domain/repositories"
	"go-payments.backend/internal/interfaces/http/response"
)

// UserHandler handles user endpoints
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// GetUser returns the profile of the authenticated wallet
// GET /users/:userAddress
func (h *UserHandler) GetUser(c *gin.Context) {
	address := c.Param("userAddress")

	if !sessionOwns(c, address) {
		response.Error(c, domainerrors.Unauthorized("session does not match requested address"))
		return
	}

	user, err := h.users.GetByAddress(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Email is never exposed over the API.
	user.Email = nil

	response.Success(c, http.StatusOK, user)
}
