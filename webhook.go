package connections

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// GoogleRevocationEvent is the only event type the Google handler accepts.
const GoogleRevocationEvent = "token_revoked"

// GoogleRevocationPayload is the JSON body of a Google-family revocation
// callback.
type GoogleRevocationPayload struct {
	Subject   string `json:"subject" form:"subject"`
	EventType string `json:"event_type" form:"event_type"`
}

// Validate will run validation rules
func (p GoogleRevocationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Subject,
			validation.Required,
		),
		validation.Field(
			&p.EventType,
			validation.Required,
			validation.In(GoogleRevocationEvent),
		),
	)
}

// RevocationWebhookHandler purges accounts in response to provider-initiated
// revocation callbacks. Handlers are idempotent by construction: redelivery
// finds zero matching rows and still succeeds.
type RevocationWebhookHandler struct {
	store         AccountStore
	audit         AuditSink
	syncer        AccountSyncCoordinator
	logger        Logger
	metaAppSecret string
	now           func() time.Time
}

// WebhookOption configures the handler.
type WebhookOption func(*RevocationWebhookHandler)

// WithWebhookAuditSink sets the audit sink.
func WithWebhookAuditSink(sink AuditSink) WebhookOption {
	return func(h *RevocationWebhookHandler) {
		h.audit = sink
	}
}

// WithWebhookSyncCoordinator sets the post-deletion resync collaborator.
func WithWebhookSyncCoordinator(sync AccountSyncCoordinator) WebhookOption {
	return func(h *RevocationWebhookHandler) {
		h.syncer = sync
	}
}

// WithWebhookLogger sets the logger.
func WithWebhookLogger(l Logger) WebhookOption {
	return func(h *RevocationWebhookHandler) {
		h.logger = l
	}
}

// WithWebhookClock sets the time source for audit timestamps.
func WithWebhookClock(now func() time.Time) WebhookOption {
	return func(h *RevocationWebhookHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewRevocationWebhookHandler creates the handler. metaAppSecret is required
// to verify Meta signed_request payloads before any user_id is trusted.
func NewRevocationWebhookHandler(store AccountStore, metaAppSecret string, opts ...WebhookOption) *RevocationWebhookHandler {
	h := &RevocationWebhookHandler{
		store:         store,
		metaAppSecret: metaAppSecret,
		logger:        defLogger{},
		now:           time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	h.audit = normalizeAuditSink(h.audit)
	h.syncer = normalizeSyncCoordinator(h.syncer)

	return h
}

// HandleGoogle processes a Google-family revocation: it deletes every account
// in the family matching the payload subject. Success is returned even when
// nothing matched, so redelivered events stay idempotent.
func (h *RevocationWebhookHandler) HandleGoogle(ctx context.Context, payload GoogleRevocationPayload) (*RevocationResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}

	return h.purge(ctx, FamilyGoogle, payload.Subject)
}

// HandleMeta processes a Meta deauthorization callback. The signed_request
// signature is verified against the app secret before the decoded user_id is
// trusted; a bad signature or missing user_id mutates nothing.
func (h *RevocationWebhookHandler) HandleMeta(ctx context.Context, signedRequest string) (*RevocationResult, error) {
	payload, err := parseSignedRequest(signedRequest, h.metaAppSecret)
	if err != nil {
		return nil, err
	}

	if payload.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidWebhookPayload)
	}

	return h.purge(ctx, FamilyMeta, payload.UserID)
}

func (h *RevocationWebhookHandler) purge(ctx context.Context, family Family, providerUserID string) (*RevocationResult, error) {
	affected, err := h.store.FindByProviderUser(ctx, family, providerUserID)
	if err != nil {
		return nil, wrapStorageErr(err, "failed to load accounts for revocation")
	}

	deleted, err := h.store.DeleteByProviderUser(ctx, family, providerUserID)
	if err != nil {
		return nil, wrapStorageErr(err, "failed to delete revoked accounts")
	}

	if err := h.audit.Record(ctx, AuditEntry{
		EventType:    AuditEventProviderRevocation,
		Actor:        string(family),
		ResourceType: "social_account",
		ResourceID:   providerUserID,
		OccurredAt:   h.now(),
		Details: map[string]any{
			"count_deleted": deleted,
		},
	}); err != nil {
		h.logger.Error("failed to append audit entry for %s revocation of %s: %v", family, providerUserID, err)
	}

	for _, account := range affected {
		if err := h.syncer.Sync(ctx, account.Provider, account.TeamID); err != nil {
			h.logger.Error("post-revocation sync failed for %s team %s: %v", account.Provider, account.TeamID, err)
		}
	}

	h.logger.Info("provider revocation processed: family=%s provider_user_id=%s deleted=%d", family, providerUserID, deleted)

	return &RevocationResult{Family: family, Deleted: deleted}, nil
}

type metaSignedPayload struct {
	UserID    string `json:"user_id"`
	Algorithm string `json:"algorithm"`
	IssuedAt  int64  `json:"issued_at"`
}

// parseSignedRequest splits a Meta signed_request into signature.payload,
// verifies the HMAC-SHA256 signature of the payload segment with the app
// secret, and decodes the payload JSON.
func parseSignedRequest(raw, appSecret string) (*metaSignedPayload, error) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: malformed signed_request", ErrInvalidWebhookPayload)
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable signature", ErrInvalidWebhookPayload)
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(parts[1]))
	expected := mac.Sum(nil)

	if !hmac.Equal(signature, expected) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidWebhookPayload)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable payload", ErrInvalidWebhookPayload)
	}

	var payload metaSignedPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid payload JSON", ErrInvalidWebhookPayload)
	}

	return &payload, nil
}
