package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Asset{},
		&entities.PaymentTemplate{},
		&entities.Transfer{},
	))
	return db
}

func seedTestUser(t *testing.T, db *gorm.DB, address string) *entities.User {
	t.Helper()
	user := &entities.User{EthereumAddress: address}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTestAsset(t *testing.T, db *gorm.DB, symbol entities.AssetSymbol, contract string, chainID uint64) *entities.Asset {
	t.Helper()
	asset := &entities.Asset{Symbol: symbol, Name: string(symbol), Decimals: 6, ContractAddress: contract, ChainID: chainID}
	require.NoError(t, db.Create(asset).Error)
	return asset
}

func seedTestTemplate(t *testing.T, db *gorm.DB, user *entities.User, asset *entities.Asset, scheduledAt null.Time, interval null.Int64) *entities.PaymentTemplate {
	t.Helper()
	template := &entities.PaymentTemplate{
		UserID:            user.ID,
		Name:              "Scheduled Payment",
		ScheduledAt:       scheduledAt,
		RecurringInterval: interval,
		Transfers: []entities.Transfer{
			{
				SourceUserID:           user.ID,
				DestinationUserAddress: "0x1234567890abcdef1234567890abcdef12345678",
				Amount:                 "100.50",
				AssetID:                asset.ID,
				Status:                 entities.TransferStatusPending,
			},
		},
	}
	require.NoError(t, db.Create(template).Error)
	return template
}

func TestUserRepositoryGetByAddress(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "0x6969174FD72466430a46e18234D0b530c9FD5f49")

	// lookup is case-insensitive
	user, err := repo.GetByAddress(ctx, "0x6969174fd72466430a46e18234d0b530c9fd5f49")
	require.NoError(t, err)
	assert.Equal(t, "0x6969174FD72466430a46e18234D0b530c9FD5f49", user.EthereumAddress)

	_, err = repo.GetByAddress(ctx, "0x0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepositoryCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &entities.User{EthereumAddress: "0xabc1234567890abcdef1234567890abcdef12345"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsAnonymous())
}

func TestAssetRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssetRepository(db)
	ctx := context.Background()

	a := seedTestAsset(t, db, entities.AssetSymbolUSDC, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 8453)
	seedTestAsset(t, db, entities.AssetSymbolETH, entities.NativeAssetAddress, 8453)

	assets, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.AssetSymbolUSDC, got.Symbol)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTemplateRepositoryGetByIDPreloads(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "0x6969174FD72466430a46e18234D0b530c9FD5f49")
	asset := seedTestAsset(t, db, entities.AssetSymbolUSDC, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 8453)
	created := seedTestTemplate(t, db, user, asset, null.Time{}, null.Int64{})

	template, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, template.Transfers, 1)
	assert.Equal(t, entities.AssetSymbolUSDC, template.Transfers[0].Asset.Symbol)
	assert.Equal(t, user.EthereumAddress, template.User.EthereumAddress)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTemplateRepositoryListByUserAddress(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	owner := seedTestUser(t, db, "0x6969174FD72466430a46e18234D0b530c9FD5f49")
	other := seedTestUser(t, db, "0x1111111111111111111111111111111111111111")
	asset := seedTestAsset(t, db, entities.AssetSymbolUSDC, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 8453)
	seedTestTemplate(t, db, owner, asset, null.Time{}, null.Int64{})
	seedTestTemplate(t, db, other, asset, null.Time{}, null.Int64{})

	templates, err := repo.ListByUserAddress(ctx, "0x6969174fd72466430a46e18234d0b530c9fd5f49")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, owner.ID, templates[0].UserID)
	require.Len(t, templates[0].Transfers, 1)
	assert.Equal(t, entities.AssetSymbolUSDC, templates[0].Transfers[0].Asset.Symbol)
	assert.Equal(t, owner.EthereumAddress, templates[0].User.EthereumAddress)
}

func TestTemplateRepositoryCancel(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	owner := seedTestUser(t, db, "0x6969174FD72466430a46e18234D0b530c9FD5f49")
	asset := seedTestAsset(t, db, entities.AssetSymbolUSDC, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 8453)
	template := seedTestTemplate(t, db, owner, asset, null.Time{}, null.Int64{})

	// wrong owner does not cancel
	err := repo.Cancel(ctx, template.ID, owner.ID+1)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	require.NoError(t, repo.Cancel(ctx, template.ID, owner.ID))
	got, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCancelled)
}

func TestTemplateRepositoryListDue(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	owner := seedTestUser(t, db, "0x6969174FD72466430a46e18234D0b530c9FD5f49")
	asset := seedTestAsset(t, db, entities.AssetSymbolUSDC, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 8453)
	now := time.Now().UTC()

	due := seedTestTemplate(t, db, owner, asset, null.TimeFrom(now.Add(-time.Minute)), null.Int64{})
	seedTestTemplate(t, db, owner, asset, null.TimeFrom(now.Add(time.Hour)), null.Int64{})
	seedTestTemplate(t, db, owner, asset, null.Time{}, null.Int64{})
	cancelled := seedTestTemplate(t, db, owner, asset, null.TimeFrom(now.Add(-time.Minute)), null.Int64{})
	require.NoError(t, repo.Cancel(ctx, cancelled.ID, owner.ID))

	templates, err := repo.ListDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, due.ID, templates[0].ID)
	require.Len(t, templates[0].Transfers, 1)
	assert.Equal(t, owner.EthereumAddress, templates[0].User.EthereumAddress)
}

func TestTemplateRepositoryReschedule(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	owner := seedTestUser(t, db, "0x6969174FD72466430a46e18234D0b530c9FD5f49")
	asset := seedTestAsset(t, db, entities.AssetSymbolUSDC, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 8453)
	now := time.Now().UTC()
	template := seedTestTemplate(t, db, owner, asset, null.TimeFrom(now), null.Int64From(3_600_000))

	next := now.Add(time.Hour)
	require.NoError(t, repo.Reschedule(ctx, template.ID, next))

	got, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	require.True(t, got.ScheduledAt.Valid)
	assert.WithinDuration(t, next, got.ScheduledAt.Time, time.Second)

	assert.ErrorIs(t, repo.Reschedule(ctx, 999, next), domainerrors.ErrNotFound)
}

func TestTemplateRepositoryClearSchedule(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	owner := seedTestUser(t, db, "0x6969174FD72466430a46e18234D0b530c9FD5f49")
	asset := seedTestAsset(t, db, entities.AssetSymbolUSDC, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 8453)
	template := seedTestTemplate(t, db, owner, asset, null.TimeFrom(time.Now().UTC()), null.Int64{})

	require.NoError(t, repo.ClearSchedule(ctx, template.ID))
	got, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	assert.False(t, got.ScheduledAt.Valid)

	// a cleared template is no longer due
	templates, err := repo.ListDue(ctx, time.Now().UTC().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestTemplateRepositoryMarkTransfersStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	owner := seedTestUser(t, db, "0x6969174FD72466430a46e18234D0b530c9FD5f49")
	asset := seedTestAsset(t, db, entities.AssetSymbolUSDC, "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 8453)
	template := seedTestTemplate(t, db, owner, asset, null.Time{}, null.Int64{})

	require.NoError(t, repo.MarkTransfersStatus(ctx, template.ID, entities.TransferStatusCompleted))

	got, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, got.Transfers, 1)
	assert.Equal(t, entities.TransferStatusCompleted, got.Transfers[0].Status)
}
