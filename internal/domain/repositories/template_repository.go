package repositories

import (
	"context"
	"time"

	"go-payments.backend/internal/domain/entities"
)

// TemplateRepository defines payment template persistence operations
type TemplateRepository interface {
	Create(ctx context.Context, template *entities.PaymentTemplate) error
	GetByID(ctx context.Context, id uint) (*entities.PaymentTemplate, error)
	ListByUserAddress(ctx context.Context, address string) ([]*entities.PaymentTemplate, error)
	Cancel(ctx context.Context, id, userID uint) error

	// ListDue returns non-cancelled templates whose scheduled time has
	// passed, with transfers, assets and owner preloaded.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*entities.PaymentTemplate, error)
	// Reschedule moves a recurring template's scheduled time forward.
	Reschedule(ctx context.Context, id uint, next time.Time) error
	// ClearSchedule removes the scheduled time from an executed one-shot
	// template so it is never picked up again.
	ClearSchedule(ctx context.Context, id uint) error
	// MarkTransfersStatus updates the status of all transfers in a template.
	MarkTransfersStatus(ctx context.Context, templateID uint, status entities.TransferStatus) error
}
