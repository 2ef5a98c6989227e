package connections

import "time"

// SocialAccount is one connected identity per (team, provider, provider user).
// Token material never appears here; it stays encrypted in the store and is
// decrypted per account through AccountStore.AccessToken / RefreshToken.
type SocialAccount struct {
	ID              string     `json:"id"`
	TeamID          string     `json:"team_id"`
	Provider        Provider   `json:"provider"`
	ProviderUserID  string     `json:"provider_user_id"`
	Scope           string     `json:"scope,omitempty"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TokenUpdate carries refreshed token material back to the store. An empty
// RefreshToken or a nil ExpiresAt retains the stored value; providers rotate
// the refresh token and restate the expiry only sometimes.
type TokenUpdate struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scope        string
}

// AuditEventType enumerates audit entry categories.
type AuditEventType string

const (
	AuditEventProviderRevocation AuditEventType = "provider.token.revoked"
)

// AuditEntry is an append-only record of a provider-initiated revocation.
type AuditEntry struct {
	EventType    AuditEventType
	Actor        string
	ResourceType string
	ResourceID   string
	Details      map[string]any
	OccurredAt   time.Time
}

// RefreshStatus classifies the outcome of one account's refresh attempt.
type RefreshStatus string

const (
	RefreshStatusRefreshed RefreshStatus = "refreshed"
	RefreshStatusSkipped   RefreshStatus = "skipped"
	RefreshStatusError     RefreshStatus = "error"
)

// RefreshResult is the outcome for a single account in a scheduler run.
type RefreshResult struct {
	AccountID string        `json:"account_id"`
	Provider  Provider      `json:"provider"`
	Status    RefreshStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
}

// RefreshSummary aggregates one scheduler run.
type RefreshSummary struct {
	Total     int             `json:"total"`
	Refreshed int             `json:"refreshed"`
	Skipped   int             `json:"skipped"`
	Errors    int             `json:"errors"`
	Duration  time.Duration   `json:"duration"`
	Results   []RefreshResult `json:"results"`
}

// RevocationResult reports a webhook-driven deletion.
type RevocationResult struct {
	Family  Family `json:"family"`
	Deleted int64  `json:"deleted"`
}

// DeauthorizeResult reports a user-initiated disconnect. TokenRevoked records
// the best-effort provider revoke outcome; local deletion has already
// succeeded whenever a result is returned.
type DeauthorizeResult struct {
	Provider     Provider `json:"provider"`
	TokenRevoked bool     `json:"token_revoked"`
}
