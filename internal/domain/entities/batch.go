package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BatchMode determines both the calls a batch generates and the schedule
// fields persisted with its template.
type BatchMode string

const (
	// BatchModeNow executes transfers immediately from the user's wallet.
	BatchModeNow BatchMode = "NOW"
	// BatchModeSchedule grants the operator a one-time allowance per
	// movement; the backend executes the transfers later.
	BatchModeSchedule BatchMode = "SCHEDULE"
	// BatchModeRecurring grants the operator an unlimited allowance per
	// distinct token contract; the backend executes periodically.
	BatchModeRecurring BatchMode = "RECURRING"
)

// Valid reports whether the mode is one of the known batch modes.
func (m BatchMode) Valid() bool {
	switch m {
	case BatchModeNow, BatchModeSchedule, BatchModeRecurring:
		return true
	}
	return false
}

// Movement is a single declared intent: send Amount of Asset to Destination.
type Movement struct {
	Asset       Asset  `json:"asset"`
	Amount      string `json:"amount"`
	Destination string `json:"destination"`
}

// LowLevelCall is the only shape the wallet boundary accepts. It is always
// derived from movements or transfers, never persisted.
type LowLevelCall struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// PendingBatch is the user-session-scoped list of movements awaiting
// dispatch. It is an immutable value: Add and Clear return a new batch
// instead of mutating the receiver, so concurrent UI events cannot
// observe a half-updated list.
type PendingBatch struct {
	Movements           []Movement
	Mode                BatchMode
	TimeIntervalMinutes uint
}

// NewPendingBatch returns an empty batch in immediate mode.
func NewPendingBatch() PendingBatch {
	return PendingBatch{Mode: BatchModeNow}
}

// Add returns a copy of the batch with the movement appended.
func (b PendingBatch) Add(m Movement) PendingBatch {
	movements := make([]Movement, len(b.Movements), len(b.Movements)+1)
	copy(movements, b.Movements)
	b.Movements = append(movements, m)
	return b
}

// WithMode returns a copy of the batch with the mode and interval set.
func (b PendingBatch) WithMode(mode BatchMode, intervalMinutes uint) PendingBatch {
	b.Mode = mode
	b.TimeIntervalMinutes = intervalMinutes
	return b
}

// Clear returns an empty batch, preserving the selected mode.
func (b PendingBatch) Clear() PendingBatch {
	b.Movements = nil
	return b
}

// Len returns the number of movements in the batch.
func (b PendingBatch) Len() int {
	return len(b.Movements)
}
