// Package meta implements the revoke protocol shared by the Meta-family
// providers (facebook, instagram).
package meta

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-connections"
)

const defaultPermissionsURL = "https://graph.facebook.com/v19.0/me/permissions"

// Config holds Meta adapter configuration. Revocation needs only the user
// access token, so no app credentials appear here; the app secret belongs to
// the webhook handler that verifies signed_request payloads.
type Config struct {
	PermissionsURL string

	HTTPClient *http.Client
}

// Adapter implements connections.Adapter for the Meta family.
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Meta adapter.
func New(cfg Config) *Adapter {
	if cfg.PermissionsURL == "" {
		cfg.PermissionsURL = defaultPermissionsURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Adapter{
		config:     cfg,
		httpClient: client,
	}
}

// Family implements connections.Adapter.
func (a *Adapter) Family() connections.Family {
	return connections.FamilyMeta
}

// Refresh implements connections.Adapter. No refresh protocol is wired for
// the Meta family; the scheduler classifies these accounts as skipped.
func (a *Adapter) Refresh(ctx context.Context, refreshToken string) (*connections.TokenRefresh, error) {
	return nil, connections.ErrRefreshNotSupported
}

// Revoke implements connections.Adapter. It deletes the app's permissions for
// the token's user, with the access token form-encoded in the request body.
// Any failure degrades to false.
func (a *Adapter) Revoke(ctx context.Context, accessToken string) bool {
	data := url.Values{
		"access_token": {accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.config.PermissionsURL, strings.NewReader(data.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
