package connections

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-auth"
)

type stubAccount struct {
	account      *SocialAccount
	accessToken  string
	refreshToken string
}

type stubStore struct {
	mu       sync.Mutex
	accounts map[string]*stubAccount

	updates     map[string]TokenUpdate
	deleteCalls []string

	batchErr  error
	deleteErr error
	tokenErr  error
	updateErr error
}

func newStubStore(accounts ...*stubAccount) *stubStore {
	s := &stubStore{
		accounts: map[string]*stubAccount{},
		updates:  map[string]TokenUpdate{},
	}
	for _, a := range accounts {
		s.accounts[a.account.ID] = a
	}
	return s
}

func (s *stubStore) FindByID(ctx context.Context, id string) (*SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		return a.account, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStore) FindByProviderUser(ctx context.Context, family Family, providerUserID string) ([]*SocialAccount, error) {
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*SocialAccount
	for _, a := range s.accounts {
		if a.account.Provider.Family() == family && a.account.ProviderUserID == providerUserID {
			out = append(out, a.account)
		}
	}
	return out, nil
}

func (s *stubStore) ExpiringWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]*SocialAccount, error) {
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*SocialAccount
	for _, a := range s.accounts {
		if a.account.ExpiresAt == nil {
			continue
		}
		if a.account.ExpiresAt.Before(now.Add(horizon)) {
			out = append(out, a.account)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateTokens(ctx context.Context, id string, update TokenUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[id] = update
	if a, ok := s.accounts[id]; ok {
		a.accessToken = update.AccessToken
		if update.RefreshToken != "" {
			a.refreshToken = update.RefreshToken
		}
		if update.ExpiresAt != nil {
			a.account.ExpiresAt = update.ExpiresAt
		}
	}
	return nil
}

func (s *stubStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, id)
	delete(s.accounts, id)
	return nil
}

func (s *stubStore) DeleteByProviderUser(ctx context.Context, family Family, providerUserID string) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, a := range s.accounts {
		if a.account.Provider.Family() == family && a.account.ProviderUserID == providerUserID {
			delete(s.accounts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *stubStore) AccessToken(ctx context.Context, id string) (string, error) {
	if s.tokenErr != nil {
		return "", s.tokenErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		return a.accessToken, nil
	}
	return "", sql.ErrNoRows
}

func (s *stubStore) RefreshToken(ctx context.Context, id string) (string, error) {
	if s.tokenErr != nil {
		return "", s.tokenErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		return a.refreshToken, nil
	}
	return "", sql.ErrNoRows
}

type stubAdapter struct {
	family Family

	mu           sync.Mutex
	refreshCalls []string
	revokeCalls  []string

	refresh    *TokenRefresh
	refreshErr error
	revoked    bool
}

func (a *stubAdapter) Family() Family {
	return a.family
}

func (a *stubAdapter) Refresh(ctx context.Context, refreshToken string) (*TokenRefresh, error) {
	a.mu.Lock()
	a.refreshCalls = append(a.refreshCalls, refreshToken)
	a.mu.Unlock()
	if a.refreshErr != nil {
		return nil, a.refreshErr
	}
	return a.refresh, nil
}

func (a *stubAdapter) Revoke(ctx context.Context, accessToken string) bool {
	a.mu.Lock()
	a.revokeCalls = append(a.revokeCalls, accessToken)
	a.mu.Unlock()
	return a.revoked
}

type recordingAuditSink struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (s *recordingAuditSink) Record(ctx context.Context, entry AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

type recordingSyncCoordinator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *recordingSyncCoordinator) Sync(ctx context.Context, provider Provider, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, string(provider)+"|"+teamID)
	return s.err
}

func staticMembers(role auth.UserRole) TeamMembersFunc {
	return func(ctx context.Context, teamID, userID string) (auth.UserRole, error) {
		return role, nil
	}
}

var errMembersUnavailable = errors.New("members unavailable")
