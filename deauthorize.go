package connections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-auth"
)

// DeauthorizationService handles user-initiated disconnects. Authorization
// and existence checks short-circuit before any mutation; the provider-side
// revoke is best effort and only the local delete is a hard gate.
type DeauthorizationService struct {
	store    AccountStore
	adapters *AdapterSet
	members  TeamMembers
	syncer   AccountSyncCoordinator
	logger   Logger
}

// DeauthorizationOption configures the service.
type DeauthorizationOption func(*DeauthorizationService)

// WithDeauthorizationLogger sets the logger.
func WithDeauthorizationLogger(l Logger) DeauthorizationOption {
	return func(s *DeauthorizationService) {
		s.logger = l
	}
}

// WithSyncCoordinator sets the post-mutation resync collaborator.
func WithSyncCoordinator(sync AccountSyncCoordinator) DeauthorizationOption {
	return func(s *DeauthorizationService) {
		s.syncer = sync
	}
}

// NewDeauthorizationService creates the disconnect service.
func NewDeauthorizationService(
	store AccountStore,
	adapters *AdapterSet,
	members TeamMembers,
	opts ...DeauthorizationOption,
) *DeauthorizationService {
	s := &DeauthorizationService{
		store:    store,
		adapters: adapters,
		members:  members,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.syncer = normalizeSyncCoordinator(s.syncer)

	return s
}

// Deauthorize disconnects one account on behalf of actorUserID. The provider
// revoke outcome is captured as a boolean; a failed or refused revoke never
// blocks the local deletion, because the credential is the team's to discard
// regardless of provider cooperation.
func (s *DeauthorizationService) Deauthorize(ctx context.Context, actorUserID, accountID string) (*DeauthorizeResult, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return nil, wrapStorageErr(err, "failed to load account")
	}

	if actorUserID == "" {
		return nil, ErrUnauthenticated
	}

	role, err := s.members.Role(ctx, account.TeamID, actorUserID)
	if err != nil || !role.IsAtLeast(auth.RoleAdmin) {
		if err != nil {
			s.logger.Debug("role lookup failed for user %s on team %s: %v", actorUserID, account.TeamID, err)
		}
		return nil, ErrNotTeamAdmin
	}

	revoked := s.revokeBestEffort(ctx, account)

	if err := s.store.Delete(ctx, account.ID); err != nil {
		return nil, wrapStorageErr(err, "failed to delete account")
	}

	if err := s.syncer.Sync(ctx, account.Provider, account.TeamID); err != nil {
		s.logger.Error("post-disconnect sync failed for %s team %s: %v", account.Provider, account.TeamID, err)
	}

	return &DeauthorizeResult{
		Provider:     account.Provider,
		TokenRevoked: revoked,
	}, nil
}

func (s *DeauthorizationService) revokeBestEffort(ctx context.Context, account *SocialAccount) bool {
	accessToken, err := s.store.AccessToken(ctx, account.ID)
	if err != nil {
		s.logger.Error("could not decrypt access token for account %s: %v", account.ID, err)
		return false
	}
	if accessToken == "" {
		return false
	}

	adapter, err := s.adapters.ForProvider(account.Provider)
	if err != nil {
		s.logger.Error("no adapter for provider %s: %v", account.Provider, err)
		return false
	}

	revoked := adapter.Revoke(ctx, accessToken)
	if !revoked {
		s.logger.Info("provider revoke declined for %s account %s, proceeding with local delete", account.Provider, account.ID)
	}
	return revoked
}
