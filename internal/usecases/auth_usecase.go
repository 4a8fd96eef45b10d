package usecases

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
	"go-payments.backend/internal/domain/repositories"
)

// NonceStore burns a one-time key; a second burn within the TTL fails.
// Backed by redis so signatures cannot be replayed across server restarts
// or instances.
type NonceStore interface {
	Burn(ctx context.Context, key string, ttl time.Duration) error
}

// AuthUsecase verifies wallet login signatures and resolves the session
// user. The original flow trusted the address as-is; signature
// verification, freshness and replay checks are enforced here.
type AuthUsecase struct {
	users  repositories.UserRepository
	nonces NonceStore
	maxAge time.Duration
	now    func() time.Time
}

// NewAuthUsecase creates an auth usecase. maxAge bounds how old a signed
// login message may be.
func NewAuthUsecase(users repositories.UserRepository, nonces NonceStore, maxAge time.Duration) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		nonces: nonces,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// VerifyLogin validates the signed login message for the claimed address
// and returns the user, creating a wallet-only account on first login.
func (u *AuthUsecase) VerifyLogin(ctx context.Context, address, message, signature string) (*entities.User, error) {
	embedded, timestampMillis, err := ParseLoginMessage(message)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(embedded, address) {
		return nil, domainerrors.ErrInvalidSignature
	}

	age := u.now().Sub(time.UnixMilli(timestampMillis))
	if age > u.maxAge || age < -time.Minute {
		return nil, domainerrors.ErrLoginMessageStale
	}

	signer, err := RecoverSigner(message, signature)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(signer, address) {
		return nil, domainerrors.ErrInvalidSignature
	}

	// One login message, one session. The nonce lives as long as the
	// freshness window, after which the timestamp check takes over.
	nonce := "login:" + hex.EncodeToString(crypto.Keccak256([]byte(message)))
	if err := u.nonces.Burn(ctx, nonce, u.maxAge); err != nil {
		return nil, err
	}

	user, err := u.users.GetByAddress(ctx, address)
	if errors.Is(err, domainerrors.ErrNotFound) {
		user = &entities.User{EthereumAddress: address}
		if err := u.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
