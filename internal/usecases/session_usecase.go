package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

// SessionStatus is the connection/authentication state of the session.
type SessionStatus string

const (
	SessionIdle             SessionStatus = "idle"
	SessionConnecting       SessionStatus = "connecting"
	SessionNotAuthenticated SessionStatus = "not_authenticated"
	SessionMissingAccount   SessionStatus = "missing_account"
	SessionReady            SessionStatus = "ready"
	SessionFailed           SessionStatus = "failed"
)

// Session is a read-only snapshot of the coordinator state.
type Session struct {
	Status  SessionStatus
	Account string
	User    *entities.User
}

// AuthGateway is the backend boundary the session coordinator needs:
// user lookup and session-cookie issuance.
type AuthGateway interface {
	GetUser(ctx context.Context, address string) (*entities.User, error)
	GenerateToken(ctx context.Context, address, message, signature string) error
}

// AccountProvider exposes the wallet's account discovery call.
type AccountProvider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	SignMessage(ctx context.Context, account, message string) (string, error)
}

// SessionCoordinator owns the wallet account and authenticated-user state
// and is the only place that mutates it. All reads go through Snapshot,
// all writes through the explicit Connect / Authenticate / Disconnect
// transitions.
type SessionCoordinator struct {
	mu      sync.Mutex
	wallet  AccountProvider
	gateway AuthGateway
	log     *zap.Logger
	now     func() time.Time

	status  SessionStatus
	account string
	user    *entities.User
}

// NewSessionCoordinator creates an idle session coordinator.
func NewSessionCoordinator(wallet AccountProvider, gateway AuthGateway, log *zap.Logger) *SessionCoordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionCoordinator{
		wallet:  wallet,
		gateway: gateway,
		log:     log,
		now:     time.Now,
		status:  SessionIdle,
	}
}

// Snapshot returns the current session state.
func (s *SessionCoordinator) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{Status: s.status, Account: s.account, User: s.user}
}

// Connect requests wallet accounts and resolves the backend user for the
// first one.
func (s *SessionCoordinator) Connect(ctx context.Context) (Session, error) {
	s.mu.Lock()
	s.status = SessionConnecting
	s.mu.Unlock()

	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		if err == nil {
			err = domainerrors.ErrNoWalletProvider
		}
		s.transition(SessionFailed, "", nil)
		return s.Snapshot(), err
	}

	account := accounts[0]
	s.refreshUser(ctx, account)
	return s.Snapshot(), nil
}

// Authenticate signs the login message with the connected account and
// exchanges it for a backend session cookie.
func (s *SessionCoordinator) Authenticate(ctx context.Context) (Session, error) {
	s.mu.Lock()
	account := s.account
	status := s.status
	s.mu.Unlock()

	if account == "" || status == SessionIdle || status == SessionConnecting {
		return s.Snapshot(), domainerrors.ErrUnauthorized
	}

	message := LoginMessage(account, s.now().UnixMilli())
	signature, err := s.wallet.SignMessage(ctx, account, message)
	if err != nil {
		return s.Snapshot(), err
	}
	if err := s.gateway.GenerateToken(ctx, account, message, signature); err != nil {
		return s.Snapshot(), err
	}

	s.refreshUser(ctx, account)
	return s.Snapshot(), nil
}

// Disconnect drops the account and returns the session to idle.
func (s *SessionCoordinator) Disconnect() {
	s.transition(SessionIdle, "", nil)
}

func (s *SessionCoordinator) refreshUser(ctx context.Context, account string) {
	user, err := s.gateway.GetUser(ctx, account)
	switch {
	case err == nil:
		s.transition(SessionReady, account, user)
	case errors.Is(err, domainerrors.ErrUnauthorized):
		s.transition(SessionNotAuthenticated, account, nil)
	case errors.Is(err, domainerrors.ErrNotFound):
		s.transition(SessionMissingAccount, account, nil)
	default:
		s.log.Warn("user lookup failed", zap.String("account", account), zap.Error(err))
		s.transition(SessionFailed, account, nil)
	}
}

func (s *SessionCoordinator) transition(status SessionStatus, account string, user *entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.account = account
	s.user = user
}
