package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

type fakeWallet struct {
	sendErr  error
	signErr  error
	sent     [][]entities.LowLevelCall
	chainIDs []uint64
}

func (w *fakeWallet) SendCalls(_ context.Context, chainID uint64, _ string, calls []entities.LowLevelCall) (string, error) {
	if w.sendErr != nil {
		return "", w.sendErr
	}
	w.sent = append(w.sent, calls)
	w.chainIDs = append(w.chainIDs, chainID)
	return "bundle-1", nil
}

func (w *fakeWallet) SignMessage(_ context.Context, _, _ string) (string, error) {
	if w.signErr != nil {
		return "", w.signErr
	}
	return "0xsigned", nil
}

type fakeGateway struct {
	createErr error
	created   []*CreateTemplateInput
}

func (g *fakeGateway) CreateTemplate(_ context.Context, input *CreateTemplateInput) error {
	if g.createErr != nil {
		return g.createErr
	}
	g.created = append(g.created, input)
	return nil
}

const account = "0x6969174FD72466430a46e18234D0b530c9FD5f49"

func dispatchFixture(wallet *fakeWallet, gateway *fakeGateway) *DispatchUsecase {
	return NewDispatchUsecase(NewBatchBuilder(operator), wallet, gateway, nil)
}

func TestExecuteBatchSuccessDrainsBatch(t *testing.T) {
	wallet := &fakeWallet{}
	gateway := &fakeGateway{}
	u := dispatchFixture(wallet, gateway)

	batch := batchOf(entities.BatchModeNow, 0,
		entities.Movement{Asset: usdc, Amount: "1", Destination: destAddress},
	)
	result, err := u.ExecuteBatch(context.Background(), batch, account)
	require.NoError(t, err)

	assert.Zero(t, result.Len())
	assert.Equal(t, entities.BatchModeNow, result.Mode)
	require.Len(t, wallet.sent, 1)
	require.Len(t, gateway.created, 1)
	assert.Equal(t, account, gateway.created[0].UserAddress)
	assert.EqualValues(t, 8453, gateway.created[0].ChainID)
	assert.Zero(t, gateway.created[0].TimeInterval)
}

func TestExecuteBatchBuildFailureLeavesBatch(t *testing.T) {
	wallet := &fakeWallet{}
	gateway := &fakeGateway{}
	u := dispatchFixture(wallet, gateway)

	batch := entities.NewPendingBatch()
	result, err := u.ExecuteBatch(context.Background(), batch, account)
	assert.ErrorIs(t, err, domainerrors.ErrEmptyBatch)
	assert.Equal(t, batch, result)
	assert.Empty(t, wallet.sent)
	assert.Empty(t, gateway.created)
}

func TestExecuteBatchWalletFailureSkipsPersistence(t *testing.T) {
	wallet := &fakeWallet{sendErr: domainerrors.ErrWalletRejected}
	gateway := &fakeGateway{}
	u := dispatchFixture(wallet, gateway)

	batch := batchOf(entities.BatchModeNow, 0,
		entities.Movement{Asset: usdc, Amount: "1", Destination: destAddress},
	)
	result, err := u.ExecuteBatch(context.Background(), batch, account)
	assert.ErrorIs(t, err, domainerrors.ErrWalletRejected)
	assert.Equal(t, 1, result.Len())
	assert.Empty(t, gateway.created)
}

func TestExecuteBatchPersistFailureKeepsBatch(t *testing.T) {
	wallet := &fakeWallet{}
	gateway := &fakeGateway{createErr: errors.New("backend down")}
	u := dispatchFixture(wallet, gateway)

	batch := batchOf(entities.BatchModeNow, 0,
		entities.Movement{Asset: usdc, Amount: "1", Destination: destAddress},
	)
	result, err := u.ExecuteBatch(context.Background(), batch, account)
	assert.ErrorIs(t, err, domainerrors.ErrBackendUnavailable)
	assert.Equal(t, 1, result.Len())
	// the wallet call already happened, only persistence failed
	assert.Len(t, wallet.sent, 1)
}

func TestExecuteBatchRecurringCarriesInterval(t *testing.T) {
	wallet := &fakeWallet{}
	gateway := &fakeGateway{}
	u := dispatchFixture(wallet, gateway)

	batch := batchOf(entities.BatchModeRecurring, 60,
		entities.Movement{Asset: usdc, Amount: "1", Destination: destAddress},
	)
	_, err := u.ExecuteBatch(context.Background(), batch, account)
	require.NoError(t, err)

	require.Len(t, gateway.created, 1)
	assert.Equal(t, entities.BatchModeRecurring, gateway.created[0].Type)
	assert.Equal(t, int64(60*60_000), gateway.created[0].TimeInterval)
}

func TestReplayTemplateDoesNotPersist(t *testing.T) {
	wallet := &fakeWallet{}
	gateway := &fakeGateway{}
	u := dispatchFixture(wallet, gateway)

	err := u.ReplayTemplate(context.Background(), storedTemplate())
	require.NoError(t, err)
	assert.Len(t, wallet.sent, 1)
	assert.Empty(t, gateway.created)
}
