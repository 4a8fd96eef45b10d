package usecases

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

const millisPerMinute = 60_000

// BuildResult is the chain-consistent call set for one batch, plus the
// schedule parameters the backend persists with the template. Times and
// intervals are unix milliseconds, the canonical schedule unit.
type BuildResult struct {
	ChainID           uint64
	Calls             []entities.LowLevelCall
	ScheduledAt       int64
	RecurringInterval int64
}

// BatchBuilder assembles pending batches into the ordered call list a
// single atomic wallet submission executes. The operator address is the
// backend executor that Schedule and Recurring batches approve as spender.
type BatchBuilder struct {
	operator common.Address
	now      func() time.Time
}

// NewBatchBuilder creates a batch builder for the given operator address.
func NewBatchBuilder(operator common.Address) *BatchBuilder {
	return &BatchBuilder{operator: operator, now: time.Now}
}

// Build validates the batch and produces its calls for the selected mode.
// Call order is preserved end to end: the slice order here is the on-chain
// execution order inside the atomic bundle.
func (b *BatchBuilder) Build(batch entities.PendingBatch) (*BuildResult, error) {
	if batch.Len() == 0 {
		return nil, domainerrors.ErrEmptyBatch
	}

	chainID, err := uniformChainID(batch.Movements)
	if err != nil {
		return nil, err
	}

	// Validate every amount up front so a bad movement can never surface
	// a partially encoded batch.
	for _, m := range batch.Movements {
		if _, err := ParseUnits(m.Amount, m.Asset.Decimals); err != nil {
			return nil, err
		}
	}

	nowMillis := b.now().UnixMilli()
	result := &BuildResult{ChainID: chainID, ScheduledAt: nowMillis}

	switch batch.Mode {
	case entities.BatchModeNow:
		for _, m := range batch.Movements {
			call, err := EncodeCall(m, TransferPurpose())
			if err != nil {
				return nil, err
			}
			result.Calls = append(result.Calls, call)
		}

	case entities.BatchModeSchedule:
		if batch.TimeIntervalMinutes == 0 {
			return nil, domainerrors.ErrMissingInterval
		}
		result.ScheduledAt = nowMillis + int64(batch.TimeIntervalMinutes)*millisPerMinute
		for _, m := range batch.Movements {
			call, err := EncodeCall(m, ApprovePurpose(b.operator))
			if err != nil {
				return nil, err
			}
			result.Calls = append(result.Calls, call)
		}

	case entities.BatchModeRecurring:
		if batch.TimeIntervalMinutes == 0 {
			return nil, domainerrors.ErrMissingInterval
		}
		result.ScheduledAt = nowMillis + int64(batch.TimeIntervalMinutes)*millisPerMinute
		result.RecurringInterval = int64(batch.TimeIntervalMinutes) * millisPerMinute

		// One unlimited approval per distinct token contract, first-seen
		// order. The native coin has no contract to approve.
		seen := make(map[string]bool)
		for _, m := range batch.Movements {
			if m.Asset.IsNative() {
				continue
			}
			key := strings.ToLower(m.Asset.ContractAddress)
			if seen[key] {
				continue
			}
			seen[key] = true
			call, err := EncodeCall(m, UnlimitedApprovePurpose(b.operator))
			if err != nil {
				return nil, err
			}
			result.Calls = append(result.Calls, call)
		}

	default:
		return nil, fmt.Errorf("%w: batch mode %q", domainerrors.ErrInvalidInput, batch.Mode)
	}

	return result, nil
}

// uniformChainID returns the single chain id all movements share.
func uniformChainID(movements []entities.Movement) (uint64, error) {
	chainID := movements[0].Asset.ChainID
	for _, m := range movements[1:] {
		if m.Asset.ChainID != chainID {
			return 0, fmt.Errorf("%w: %d and %d", domainerrors.ErrMixedChain, chainID, m.Asset.ChainID)
		}
	}
	return chainID, nil
}
