package x

import (
	"context"
	"testing"

	"github.com/goliatone/go-connections"
	"github.com/stretchr/testify/assert"
)

func TestAdapterRefreshNotSupported(t *testing.T) {
	adapter := New()

	_, err := adapter.Refresh(context.Background(), "refresh-token")
	assert.ErrorIs(t, err, connections.ErrRefreshNotSupported)
}

func TestAdapterRevokeIsLocalOnly(t *testing.T) {
	adapter := New()

	assert.True(t, adapter.Revoke(context.Background(), "access-token"))
	assert.Equal(t, connections.FamilyX, adapter.Family())
}
