package repositories

import (
	"context"

	"go-payments.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByAddress(ctx context.Context, address string) (*entities.User, error)
}
