package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

// AssetRepository implements asset catalog operations
type AssetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// List returns all supported assets ordered by chain then symbol
func (r *AssetRepository) List(ctx context.Context) ([]*entities.Asset, error) {
	var assets []*entities.Asset
	if err := r.db.WithContext(ctx).Order("chain_id, symbol").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// GetByID gets an asset by ID
func (r *AssetRepository) GetByID(ctx context.Context, id uint) (*entities.Asset, error) {
	var asset entities.Asset
	if err := r.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}
