// Package google implements the refresh and revoke protocols shared by the
// Google-family providers (ga4, youtube).
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-connections"
)

const (
	defaultTokenURL  = "https://oauth2.googleapis.com/token"
	defaultRevokeURL = "https://oauth2.googleapis.com/revoke"
)

// Config holds Google OAuth configuration.
type Config struct {
	ClientID     string
	ClientSecret string

	TokenURL  string
	RevokeURL string

	HTTPClient *http.Client
}

// Adapter implements connections.Adapter for the Google family.
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Google adapter.
func New(cfg Config) *Adapter {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.RevokeURL == "" {
		cfg.RevokeURL = defaultRevokeURL
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
	return connections.FamilyGoogle
}

// Refresh implements connections.Adapter. It exchanges a refresh token for a
// new access token and its expiry via the refresh_token grant.
func (a *Adapter) Refresh(ctx context.Context, refreshToken string) (*connections.TokenRefresh, error) {
	data := url.Values{
		"client_id":     {a.config.ClientID},
		"client_secret": {a.config.ClientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var tokenResp googleTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, refreshError(resp.StatusCode, "invalid_response", "failed to decode refresh response", err)
	}

	if resp.StatusCode != http.StatusOK || tokenResp.Error != "" {
		return nil, refreshError(resp.StatusCode, tokenResp.Error, tokenResp.ErrorDesc, nil)
	}
	if tokenResp.AccessToken == "" {
		return nil, refreshError(resp.StatusCode, "missing_access_token", "missing access token", nil)
	}

	expiresAt := time.Time{}
	if tokenResp.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return &connections.TokenRefresh{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    expiresAt,
		Scope:        tokenResp.Scope,
	}, nil
}

// Revoke implements connections.Adapter. The token travels as a query
// parameter; Google answers 200 even for an already-revoked token, which
// counts as success. Any failure degrades to false.
func (a *Adapter) Revoke(ctx context.Context, accessToken string) bool {
	revokeURL := a.config.RevokeURL + "?token=" + url.QueryEscape(accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, nil)
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

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	// RefreshToken is present only when Google rotates it.
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

func refreshError(status int, code, description string, err error) *connections.RefreshError {
	return &connections.RefreshError{
		Family:      connections.FamilyGoogle,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
	}
}
