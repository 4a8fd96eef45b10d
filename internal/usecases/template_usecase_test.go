package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

type fakeTemplateRepo struct {
	nextID    uint
	templates map[uint]*entities.PaymentTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{nextID: 1, templates: make(map[uint]*entities.PaymentTemplate)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, template *entities.PaymentTemplate) error {
	template.ID = r.nextID
	r.nextID++
	r.templates[template.ID] = template
	return nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id uint) (*entities.PaymentTemplate, error) {
	if t, ok := r.templates[id]; ok {
		return t, nil
	}
	return nil, domainerrors.ErrNotFound
}

func (r *fakeTemplateRepo) ListByUserAddress(_ context.Context, _ string) ([]*entities.PaymentTemplate, error) {
	var out []*entities.PaymentTemplate
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTemplateRepo) Cancel(_ context.Context, id, userID uint) error {
	t, ok := r.templates[id]
	if !ok || t.UserID != userID {
		return domainerrors.ErrNotFound
	}
	t.IsCancelled = true
	return nil
}

func (r *fakeTemplateRepo) ListDue(_ context.Context, now time.Time, _ int) ([]*entities.PaymentTemplate, error) {
	var due []*entities.PaymentTemplate
	for _, t := range r.templates {
		if !t.IsCancelled && t.ScheduledAt.Valid && !t.ScheduledAt.Time.After(now) {
			due = append(due, t)
		}
	}
	return due, nil
}

func (r *fakeTemplateRepo) Reschedule(_ context.Context, id uint, next time.Time) error {
	t, ok := r.templates[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	t.ScheduledAt.Time = next
	t.ScheduledAt.Valid = true
	return nil
}

func (r *fakeTemplateRepo) ClearSchedule(_ context.Context, id uint) error {
	t, ok := r.templates[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	t.ScheduledAt.Valid = false
	return nil
}

func (r *fakeTemplateRepo) MarkTransfersStatus(_ context.Context, id uint, status entities.TransferStatus) error {
	t, ok := r.templates[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	for i := range t.Transfers {
		t.Transfers[i].Status = status
	}
	return nil
}

type fakeAssetRepo struct {
	assets map[uint]*entities.Asset
}

func newFakeAssetRepo(assets ...entities.Asset) *fakeAssetRepo {
	r := &fakeAssetRepo{assets: make(map[uint]*entities.Asset)}
	for i := range assets {
		r.assets[assets[i].ID] = &assets[i]
	}
	return r
}

func (r *fakeAssetRepo) List(_ context.Context) ([]*entities.Asset, error) {
	var out []*entities.Asset
	for _, a := range r.assets {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAssetRepo) GetByID(_ context.Context, id uint) (*entities.Asset, error) {
	if a, ok := r.assets[id]; ok {
		return a, nil
	}
	return nil, domainerrors.ErrNotFound
}

func templateUsecaseFixture(t *testing.T) (*TemplateUsecase, *fakeTemplateRepo, *fakeUserRepo) {
	t.Helper()
	templates := newFakeTemplateRepo()
	users := newFakeUserRepo()
	require.NoError(t, users.Create(context.Background(), &entities.User{EthereumAddress: account}))
	assets := newFakeAssetRepo(usdc, nativeETH)
	return NewTemplateUsecase(templates, users, assets), templates, users
}

func createInput(mode entities.BatchMode) *CreateTemplateInput {
	return &CreateTemplateInput{
		UserAddress: account,
		ChainID:     8453,
		Type:        mode,
		Transfers: []entities.Movement{
			{Asset: usdc, Amount: "100.50", Destination: destAddress},
			{Asset: nativeETH, Amount: "0.5", Destination: destAddress},
		},
	}
}

func TestCreateNowTemplate(t *testing.T) {
	u, repo, _ := templateUsecaseFixture(t)

	template, err := u.Create(context.Background(), account, createInput(entities.BatchModeNow))
	require.NoError(t, err)

	assert.Equal(t, "Payment", template.Name)
	assert.False(t, template.ScheduledAt.Valid)
	assert.False(t, template.RecurringInterval.Valid)
	require.Len(t, template.Transfers, 2)
	for _, tr := range template.Transfers {
		assert.Equal(t, entities.TransferStatusPending, tr.Status)
	}
	assert.Len(t, repo.templates, 1)
}

func TestCreateScheduledTemplate(t *testing.T) {
	u, _, _ := templateUsecaseFixture(t)

	scheduledAt := time.Now().Add(30 * time.Minute).UnixMilli()
	input := createInput(entities.BatchModeSchedule)
	input.ScheduledAt = scheduledAt

	template, err := u.Create(context.Background(), account, input)
	require.NoError(t, err)

	assert.Equal(t, "Scheduled Payment", template.Name)
	require.True(t, template.ScheduledAt.Valid)
	assert.Equal(t, scheduledAt, template.ScheduledAt.Time.UnixMilli())
	assert.False(t, template.RecurringInterval.Valid)
}

func TestCreateRecurringTemplate(t *testing.T) {
	u, _, _ := templateUsecaseFixture(t)

	input := createInput(entities.BatchModeRecurring)
	input.ScheduledAt = time.Now().Add(time.Hour).UnixMilli()
	input.TimeInterval = 3_600_000

	template, err := u.Create(context.Background(), account, input)
	require.NoError(t, err)

	assert.Equal(t, "Recurring Payment", template.Name)
	require.True(t, template.RecurringInterval.Valid)
	assert.EqualValues(t, 3_600_000, template.RecurringInterval.Int64)
}

func TestCreateRecurringRequiresInterval(t *testing.T) {
	u, _, _ := templateUsecaseFixture(t)

	input := createInput(entities.BatchModeRecurring)
	_, err := u.Create(context.Background(), account, input)
	assert.ErrorIs(t, err, domainerrors.ErrMissingInterval)
}

func TestCreateRejectsUnknownMode(t *testing.T) {
	u, _, _ := templateUsecaseFixture(t)

	_, err := u.Create(context.Background(), account, createInput(entities.BatchMode("SOON")))
	assert.Error(t, err)
}

func TestCreateRejectsUnknownAsset(t *testing.T) {
	u, _, _ := templateUsecaseFixture(t)

	input := createInput(entities.BatchModeNow)
	input.Transfers[0].Asset.ID = 99
	_, err := u.Create(context.Background(), account, input)
	assert.Error(t, err)
}

func TestCreateRejectsMixedChains(t *testing.T) {
	templates := newFakeTemplateRepo()
	users := newFakeUserRepo()
	require.NoError(t, users.Create(context.Background(), &entities.User{EthereumAddress: account}))

	optimismUSDC := usdc
	optimismUSDC.ID = 4
	optimismUSDC.ChainID = 10
	assets := newFakeAssetRepo(usdc, optimismUSDC)
	u := NewTemplateUsecase(templates, users, assets)

	input := createInput(entities.BatchModeNow)
	input.Transfers[1].Asset = optimismUSDC
	_, err := u.Create(context.Background(), account, input)
	assert.ErrorIs(t, err, domainerrors.ErrMixedChain)
}

func TestCreateRejectsUnknownUser(t *testing.T) {
	u, _, _ := templateUsecaseFixture(t)

	_, err := u.Create(context.Background(), destAddress, createInput(entities.BatchModeNow))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCancelOwnTemplate(t *testing.T) {
	u, repo, _ := templateUsecaseFixture(t)

	template, err := u.Create(context.Background(), account, createInput(entities.BatchModeNow))
	require.NoError(t, err)

	require.NoError(t, u.Cancel(context.Background(), template.ID, account))
	assert.True(t, repo.templates[template.ID].IsCancelled)
}

func TestCancelForeignTemplateForbidden(t *testing.T) {
	u, _, users := templateUsecaseFixture(t)

	template, err := u.Create(context.Background(), account, createInput(entities.BatchModeNow))
	require.NoError(t, err)

	other := &entities.User{EthereumAddress: destAddress}
	require.NoError(t, users.Create(context.Background(), other))

	err = u.Cancel(context.Background(), template.ID, destAddress)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}
