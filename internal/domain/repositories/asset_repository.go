package repositories

import (
	"context"

	"go-payments.backend/internal/domain/entities"
)

// AssetRepository defines asset catalog operations
type AssetRepository interface {
	List(ctx context.Context) ([]*entities.Asset, error)
	GetByID(ctx context.Context, id uint) (*entities.Asset, error)
}
