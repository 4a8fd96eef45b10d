package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

// WalletDispatcher is the consumed wallet boundary: it submits an ordered
// call list as one atomic request and signs login messages.
type WalletDispatcher interface {
	SendCalls(ctx context.Context, chainID uint64, from string, calls []entities.LowLevelCall) (string, error)
	SignMessage(ctx context.Context, account, message string) (string, error)
}

// CreateTemplateInput is the persistence payload sent to the backend after
// a successful wallet dispatch.
type CreateTemplateInput struct {
	UserAddress  string              `json:"userAddress"`
	ChainID      uint64              `json:"chainId"`
	Transfers    []entities.Movement `json:"transfers"`
	Type         entities.BatchMode  `json:"type"`
	ScheduledAt  int64               `json:"scheduledAt"`
	TimeInterval int64               `json:"timeInterval,omitempty"`
}

// TemplateGateway is the consumed backend boundary for template persistence.
type TemplateGateway interface {
	CreateTemplate(ctx context.Context, input *CreateTemplateInput) error
}

// DispatchUsecase drives a batch through its two external boundaries in
// order: wallet dispatch first, backend persistence second. The two calls
// are never concurrent.
type DispatchUsecase struct {
	builder  *BatchBuilder
	replayer *TemplateReplayer
	wallet   WalletDispatcher
	gateway  TemplateGateway
	log      *zap.Logger
}

// NewDispatchUsecase creates a dispatch coordinator.
func NewDispatchUsecase(builder *BatchBuilder, wallet WalletDispatcher, gateway TemplateGateway, log *zap.Logger) *DispatchUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &DispatchUsecase{
		builder:  builder,
		replayer: NewTemplateReplayer(),
		wallet:   wallet,
		gateway:  gateway,
		log:      log,
	}
}

// ExecuteBatch builds the batch, submits it through the wallet and persists
// the template. It returns the batch the caller should keep using: drained
// on full success, unchanged on any failure so the user can retry.
//
// A wallet failure skips persistence entirely. A persistence failure after
// the wallet call is surfaced even though the on-chain effect may already
// exist; the backend is the template source of truth and the mismatch is
// not auto-reconciled.
func (u *DispatchUsecase) ExecuteBatch(ctx context.Context, batch entities.PendingBatch, account string) (entities.PendingBatch, error) {
	result, err := u.builder.Build(batch)
	if err != nil {
		return batch, err
	}

	bundleID, err := u.wallet.SendCalls(ctx, result.ChainID, account, result.Calls)
	if err != nil {
		return batch, err
	}
	u.log.Info("batch dispatched",
		zap.Uint64("chain_id", result.ChainID),
		zap.Int("calls", len(result.Calls)),
		zap.String("bundle_id", bundleID),
	)

	input := &CreateTemplateInput{
		UserAddress: account,
		ChainID:     result.ChainID,
		Transfers:   batch.Movements,
		Type:        batch.Mode,
		ScheduledAt: result.ScheduledAt,
	}
	if batch.Mode != entities.BatchModeNow {
		input.TimeInterval = int64(batch.TimeIntervalMinutes) * millisPerMinute
	}
	if err := u.gateway.CreateTemplate(ctx, input); err != nil {
		u.log.Warn("batch dispatched on-chain but template persistence failed",
			zap.String("account", account),
			zap.Error(err),
		)
		return batch, fmt.Errorf("%w: %s", domainerrors.ErrBackendUnavailable, err)
	}

	return batch.Clear(), nil
}

// ReplayTemplate re-sends a persisted template's transfers immediately.
// No new template is persisted; the original record already exists.
func (u *DispatchUsecase) ReplayTemplate(ctx context.Context, t *entities.PaymentTemplate) error {
	req, err := u.replayer.Replay(t)
	if err != nil {
		return err
	}
	bundleID, err := u.wallet.SendCalls(ctx, req.ChainID, req.From, req.Calls)
	if err != nil {
		return err
	}
	u.log.Info("template replayed",
		zap.Uint("template_id", t.ID),
		zap.Uint64("chain_id", req.ChainID),
		zap.String("bundle_id", bundleID),
	)
	return nil
}
