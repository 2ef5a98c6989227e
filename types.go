package connections

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-auth"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// AccountStore is the persistence contract for social accounts. Token
// plaintext is reachable only through the single-account AccessToken and
// RefreshToken calls; there is no bulk decrypted read.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*SocialAccount, error)
	FindByProviderUser(ctx context.Context, family Family, providerUserID string) ([]*SocialAccount, error)

	// ExpiringWithin returns accounts whose expiry falls inside the horizon
	// from now and that hold a refresh token, soonest expiry first.
	ExpiringWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]*SocialAccount, error)

	UpdateTokens(ctx context.Context, id string, update TokenUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteByProviderUser(ctx context.Context, family Family, providerUserID string) (int64, error)

	AccessToken(ctx context.Context, id string) (string, error)
	RefreshToken(ctx context.Context, id string) (string, error)
}

// TeamMembers resolves a user's role within a team. Team and member CRUD are
// external collaborators; this is the only contract the lifecycle needs.
type TeamMembers interface {
	Role(ctx context.Context, teamID, userID string) (auth.UserRole, error)
}

// TeamMembersFunc adapts a function to the TeamMembers interface.
type TeamMembersFunc func(ctx context.Context, teamID, userID string) (auth.UserRole, error)

func (f TeamMembersFunc) Role(ctx context.Context, teamID, userID string) (auth.UserRole, error) {
	if f == nil {
		return "", fmt.Errorf("no team member resolver configured")
	}
	return f(ctx, teamID, userID)
}

// AccountSyncCoordinator reconciles provider resource tables (pages,
// channels, properties) after an account mutation. Idempotent, side-effect
// only; failures are never surfaced to callers of the lifecycle operations.
type AccountSyncCoordinator interface {
	Sync(ctx context.Context, provider Provider, teamID string) error
}

// AccountSyncFunc adapts a function to the AccountSyncCoordinator interface.
type AccountSyncFunc func(ctx context.Context, provider Provider, teamID string) error

func (f AccountSyncFunc) Sync(ctx context.Context, provider Provider, teamID string) error {
	if f == nil {
		return nil
	}
	return f(ctx, provider, teamID)
}

type noopSyncCoordinator struct{}

func (noopSyncCoordinator) Sync(context.Context, Provider, string) error {
	return nil
}

// AuditSink consumes audit entries for provider-initiated revocations.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditSinkFunc adapts a function to the AuditSink interface.
type AuditSinkFunc func(ctx context.Context, entry AuditEntry) error

func (f AuditSinkFunc) Record(ctx context.Context, entry AuditEntry) error {
	if f == nil {
		return nil
	}
	return f(ctx, entry)
}

type noopAuditSink struct{}

func (noopAuditSink) Record(context.Context, AuditEntry) error {
	return nil
}

func normalizeSyncCoordinator(s AccountSyncCoordinator) AccountSyncCoordinator {
	if s == nil {
		return noopSyncCoordinator{}
	}
	return s
}

func normalizeAuditSink(s AuditSink) AuditSink {
	if s == nil {
		return noopAuditSink{}
	}
	return s
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CONNECTIONS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CONNECTIONS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CONNECTIONS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
