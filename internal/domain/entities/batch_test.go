package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movement(amount string) Movement {
	return Movement{Amount: amount, Destination: "0x1234567890abcdef1234567890abcdef12345678"}
}

func TestPendingBatchAddDoesNotMutateOriginal(t *testing.T) {
	empty := NewPendingBatch()
	one := empty.Add(movement("1"))
	two := one.Add(movement("2"))

	assert.Zero(t, empty.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())

	// appending to the older copy must not leak into the newer one
	alt := one.Add(movement("3"))
	require.Equal(t, 2, alt.Len())
	assert.Equal(t, "2", two.Movements[1].Amount)
	assert.Equal(t, "3", alt.Movements[1].Amount)
}

func TestPendingBatchClearPreservesMode(t *testing.T) {
	batch := NewPendingBatch().WithMode(BatchModeRecurring, 60).Add(movement("1"))
	cleared := batch.Clear()

	assert.Zero(t, cleared.Len())
	assert.Equal(t, BatchModeRecurring, cleared.Mode)
	assert.Equal(t, 1, batch.Len())
}

func TestBatchModeValid(t *testing.T) {
	assert.True(t, BatchModeNow.Valid())
	assert.True(t, BatchModeSchedule.Valid())
	assert.True(t, BatchModeRecurring.Valid())
	assert.False(t, BatchMode("LATER").Valid())
	assert.False(t, BatchMode("").Valid())
}

func TestAssetIsNative(t *testing.T) {
	assert.True(t, Asset{ContractAddress: NativeAssetAddress}.IsNative())
	assert.True(t, Asset{ContractAddress: "0xEEeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"}.IsNative())
	assert.False(t, Asset{ContractAddress: "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"}.IsNative())
	assert.False(t, Asset{}.IsNative())
}
