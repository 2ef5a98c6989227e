// Package x implements the adapter for X, which exposes neither a refresh
// protocol nor a programmatic revoke API.
package x

import (
	"context"

	"github.com/goliatone/go-connections"
)

// Adapter implements connections.Adapter for X.
type Adapter struct{}

// New creates a new X adapter.
func New() *Adapter {
	return &Adapter{}
}

// Family implements connections.Adapter.
func (a *Adapter) Family() connections.Family {
	return connections.FamilyX
}

// Refresh implements connections.Adapter.
func (a *Adapter) Refresh(ctx context.Context, refreshToken string) (*connections.TokenRefresh, error) {
	return nil, connections.ErrRefreshNotSupported
}

// Revoke implements connections.Adapter. X has no revoke endpoint, so local
// cleanup is all a disconnect can do; reporting true keeps callers from
// retrying something that does not exist.
func (a *Adapter) Revoke(ctx context.Context, accessToken string) bool {
	return true
}
