package usecases

import (
	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

// DispatchRequest is an ordered call batch ready for the wallet boundary.
type DispatchRequest struct {
	ChainID uint64
	From    string
	Calls   []entities.LowLevelCall
}

// TemplateReplayer reconstructs an immediate dispatch request from a
// persisted template. Replay is always a fresh send: it emits plain
// transfer calls in the template's stored order no matter which mode
// originally created the template.
//
// Replay deliberately ignores IsCancelled and the schedule fields.
// Cancellation stops the backend executor; repeating a template is a new,
// explicit user action on the original transfer list.
type TemplateReplayer struct{}

// NewTemplateReplayer creates a template replayer.
func NewTemplateReplayer() *TemplateReplayer {
	return &TemplateReplayer{}
}

// Replay derives the wallet dispatch request for the template.
func (r *TemplateReplayer) Replay(t *entities.PaymentTemplate) (*DispatchRequest, error) {
	if len(t.Transfers) == 0 {
		return nil, domainerrors.ErrEmptyBatch
	}

	movements := MovementsFromTemplate(t)
	chainID, err := uniformChainID(movements)
	if err != nil {
		return nil, err
	}

	req := &DispatchRequest{ChainID: chainID, From: t.User.EthereumAddress}
	for _, m := range movements {
		call, err := EncodeCall(m, TransferPurpose())
		if err != nil {
			return nil, err
		}
		req.Calls = append(req.Calls, call)
	}
	return req, nil
}

// NewBatchFromTemplate turns a decoded template into a pending batch ready
// for the builder, with the given mode and interval.
func NewBatchFromTemplate(t *entities.PaymentTemplate, mode entities.BatchMode, intervalMinutes uint) entities.PendingBatch {
	batch := entities.NewPendingBatch().WithMode(mode, intervalMinutes)
	for _, m := range MovementsFromTemplate(t) {
		batch = batch.Add(m)
	}
	return batch
}

// MovementsFromTemplate converts a template's stored transfers back into
// movements, preserving order.
func MovementsFromTemplate(t *entities.PaymentTemplate) []entities.Movement {
	movements := make([]entities.Movement, 0, len(t.Transfers))
	for _, tr := range t.Transfers {
		movements = append(movements, entities.Movement{
			Asset:       tr.Asset,
			Amount:      tr.Amount,
			Destination: tr.DestinationUserAddress,
		})
	}
	return movements
}
