package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
	"go-payments.backend/internal/domain/repositories"
	"go-payments.backend/internal/metrics"
)

// Default template names per batch mode.
var templateNames = map[entities.BatchMode]string{
	entities.BatchModeNow:       "Payment",
	entities.BatchModeSchedule:  "Scheduled Payment",
	entities.BatchModeRecurring: "Recurring Payment",
}

// TemplateUsecase handles template persistence business logic on the
// backend side of the template gateway.
type TemplateUsecase struct {
	templates repositories.TemplateRepository
	users     repositories.UserRepository
	assets    repositories.AssetRepository
	now       func() time.Time
}

// NewTemplateUsecase creates a new template usecase.
func NewTemplateUsecase(
	templates repositories.TemplateRepository,
	users repositories.UserRepository,
	assets repositories.AssetRepository,
) *TemplateUsecase {
	return &TemplateUsecase{
		templates: templates,
		users:     users,
		assets:    assets,
		now:       time.Now,
	}
}

// Create persists a submitted batch as a template owned by address.
// Assets are resolved against the server catalog; the client-supplied
// asset fields are not trusted beyond the id.
func (u *TemplateUsecase) Create(ctx context.Context, address string, input *CreateTemplateInput) (*entities.PaymentTemplate, error) {
	if !input.Type.Valid() {
		return nil, domainerrors.BadRequest(fmt.Sprintf("unknown batch type %q", input.Type))
	}
	if len(input.Transfers) == 0 {
		return nil, domainerrors.NewError("batch contains no transfers", domainerrors.ErrEmptyBatch)
	}

	user, err := u.users.GetByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	template := entities.PaymentTemplate{
		UserID: user.ID,
		Name:   templateNames[input.Type],
	}
	switch input.Type {
	case entities.BatchModeSchedule:
		template.ScheduledAt = null.TimeFrom(time.UnixMilli(input.ScheduledAt))
	case entities.BatchModeRecurring:
		if input.TimeInterval <= 0 {
			return nil, domainerrors.NewError("recurring batch needs an interval", domainerrors.ErrMissingInterval)
		}
		template.ScheduledAt = null.TimeFrom(time.UnixMilli(input.ScheduledAt))
		template.RecurringInterval = null.Int64From(input.TimeInterval)
	}

	var chainID uint64
	for _, m := range input.Transfers {
		asset, err := u.assets.GetByID(ctx, m.Asset.ID)
		if err != nil {
			return nil, domainerrors.BadRequest(fmt.Sprintf("unknown asset %d", m.Asset.ID))
		}
		if chainID == 0 {
			chainID = asset.ChainID
		} else if asset.ChainID != chainID {
			return nil, domainerrors.NewError("transfers span multiple chains", domainerrors.ErrMixedChain)
		}
		if !common.IsHexAddress(m.Destination) {
			return nil, domainerrors.BadRequest(fmt.Sprintf("invalid destination %q", m.Destination))
		}
		if _, err := ParseUnits(m.Amount, asset.Decimals); err != nil {
			return nil, domainerrors.NewError(fmt.Sprintf("invalid amount %q", m.Amount), domainerrors.ErrInvalidAmount)
		}
		template.Transfers = append(template.Transfers, entities.Transfer{
			SourceUserID:           user.ID,
			DestinationUserAddress: m.Destination,
			Amount:                 m.Amount,
			AssetID:                asset.ID,
			Status:                 entities.TransferStatusPending,
			Asset:                  *asset,
		})
	}

	if err := u.templates.Create(ctx, &template); err != nil {
		return nil, err
	}
	metrics.TemplatesCreated.WithLabelValues(string(input.Type)).Inc()
	return &template, nil
}

// List returns the templates owned by address, transfers preloaded.
func (u *TemplateUsecase) List(ctx context.Context, address string) ([]*entities.PaymentTemplate, error) {
	return u.templates.ListByUserAddress(ctx, address)
}

// Cancel marks a template cancelled. Only the owner may cancel; the
// template record itself is kept for history and replay.
func (u *TemplateUsecase) Cancel(ctx context.Context, id uint, requesterAddress string) error {
	template, err := u.templates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user, err := u.users.GetByAddress(ctx, requesterAddress)
	if err != nil {
		return err
	}
	if template.UserID != user.ID {
		return domainerrors.Forbidden("template belongs to another user")
	}
	if err := u.templates.Cancel(ctx, id, user.ID); err != nil {
		return err
	}
	metrics.TemplatesCancelled.Inc()
	return nil
}
