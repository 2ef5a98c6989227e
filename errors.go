package connections

import (
	stderrors "errors"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeAccountNotFound  = "connection_account_not_found"
	TextCodeUnauthenticated  = "connection_unauthenticated"
	TextCodeNotTeamAdmin     = "connection_not_team_admin"
	TextCodeInvalidWebhook   = "connection_invalid_webhook_payload"
	TextCodeUnknownProvider  = "connection_unknown_provider"
	TextCodeStorageFailure   = "connection_storage_failure"
	TextCodeVaultCiphertext  = "connection_vault_invalid_ciphertext"
)

// ErrAccountNotFound is returned when the target account does not exist.
var ErrAccountNotFound = errors.New("social account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrUnauthenticated is returned when no acting user session is present.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrNotTeamAdmin is returned when the acting user lacks the admin role on
// the account's owning team.
var ErrNotTeamAdmin = errors.New("team admin role required", errors.CategoryAuthz).
	WithTextCode(TextCodeNotTeamAdmin).
	WithCode(errors.CodeForbidden)

// ErrInvalidWebhookPayload is returned for malformed or unverifiable
// revocation payloads. No storage mutation happens on this path.
var ErrInvalidWebhookPayload = errors.New("invalid revocation payload", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidWebhook).
	WithCode(errors.CodeBadRequest)

// ErrUnknownProvider is returned for provider tags outside the closed set.
var ErrUnknownProvider = errors.New("unknown provider", errors.CategoryBadInput).
	WithTextCode(TextCodeUnknownProvider).
	WithCode(errors.CodeBadRequest)

// ErrStorageFailure is returned when the controlling local mutation fails.
var ErrStorageFailure = errors.New("storage operation failed", errors.CategoryInternal).
	WithTextCode(TextCodeStorageFailure).
	WithCode(errors.CodeInternal)

// ErrInvalidCiphertext is returned by the vault when stored token material
// fails authentication or decryption. Callers treat the token as unavailable
// rather than aborting their controlling operation.
var ErrInvalidCiphertext = errors.New("invalid token ciphertext", errors.CategoryInternal).
	WithTextCode(TextCodeVaultCiphertext).
	WithCode(errors.CodeInternal)

// ErrRefreshNotSupported is the sentinel adapters return for families without
// a refresh protocol. The scheduler classifies it as skipped, never an error.
var ErrRefreshNotSupported = stderrors.New("refresh not supported")

func wrapStorageErr(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithTextCode(TextCodeStorageFailure).
		WithCode(errors.CodeInternal)
}
