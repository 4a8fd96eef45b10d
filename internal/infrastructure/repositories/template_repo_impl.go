package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

// TemplateRepository implements payment template persistence
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create creates a template together with its transfers
func (r *TemplateRepository) Create(ctx context.Context, template *entities.PaymentTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// GetByID gets a template with transfers and their assets preloaded
func (r *TemplateRepository) GetByID(ctx context.Context, id uint) (*entities.PaymentTemplate, error) {
	var template entities.PaymentTemplate
	err := r.db.WithContext(ctx).
		Preload("Transfers").
		Preload("Transfers.Asset").
		Preload("User").
		First(&template, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// ListByUserAddress lists templates owned by the address, newest first
func (r *TemplateRepository) ListByUserAddress(ctx context.Context, address string) ([]*entities.PaymentTemplate, error) {
	var templates []*entities.PaymentTemplate
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = payment_templates.user_id").
		Where("LOWER(users.ethereum_address) = LOWER(?)", address).
		Preload("Transfers").
		Preload("Transfers.Asset").
		Preload("User").
		Order("payment_templates.created_at DESC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// Cancel marks a template cancelled. The userID guard keeps one user from
// cancelling another user's template.
func (r *TemplateRepository) Cancel(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Model(&entities.PaymentTemplate{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_cancelled", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListDue returns executable templates whose scheduled time has passed
func (r *TemplateRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*entities.PaymentTemplate, error) {
	var templates []*entities.PaymentTemplate
	err := r.db.WithContext(ctx).
		Where("is_cancelled = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", false, now).
		Preload("Transfers").
		Preload("Transfers.Asset").
		Preload("User").
		Order("scheduled_at").
		Limit(limit).
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// Reschedule moves a recurring template's scheduled time forward
func (r *TemplateRepository) Reschedule(ctx context.Context, id uint, next time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.PaymentTemplate{}).
		Where("id = ?", id).
		Update("scheduled_at", next)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ClearSchedule removes the scheduled time from an executed one-shot template
func (r *TemplateRepository) ClearSchedule(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&entities.PaymentTemplate{}).
		Where("id = ?", id).
		Update("scheduled_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkTransfersStatus updates the status of every transfer in a template
func (r *TemplateRepository) MarkTransfersStatus(ctx context.Context, templateID uint, status entities.TransferStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Transfer{}).
		Where("payment_template_id = ?", templateID).
		Update("status", status).Error
}
