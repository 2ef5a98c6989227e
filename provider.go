package connections

import (
	"context"
	"fmt"
	"time"
)

// Provider identifies a connected platform. The set is closed: adding a
// provider means adding a constant here and covering the exhaustive switches
// below, so dispatch changes are compile-time checked.
type Provider string

const (
	ProviderGA4       Provider = "ga4"
	ProviderYouTube   Provider = "youtube"
	ProviderFacebook  Provider = "facebook"
	ProviderInstagram Provider = "instagram"
	ProviderX         Provider = "x"
)

// Family groups providers that share refresh/revoke protocols.
type Family string

const (
	FamilyGoogle Family = "google"
	FamilyMeta   Family = "meta"
	FamilyX      Family = "x"
)

// IsValid checks if the provider is one of the supported platforms.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderGA4, ProviderYouTube, ProviderFacebook, ProviderInstagram, ProviderX:
		return true
	default:
		return false
	}
}

// Family returns the adapter family the provider belongs to.
func (p Provider) Family() Family {
	switch p {
	case ProviderGA4, ProviderYouTube:
		return FamilyGoogle
	case ProviderFacebook, ProviderInstagram:
		return FamilyMeta
	case ProviderX:
		return FamilyX
	default:
		return ""
	}
}

// ParseProvider safely parses a string into a Provider.
func ParseProvider(s string) (Provider, bool) {
	p := Provider(s)
	return p, p.IsValid()
}

// ParseFamilyTag resolves a webhook route tag to a family. Provider names and
// family aliases are both accepted: ga4, youtube and google map to the Google
// family; facebook, instagram and meta to the Meta family.
func ParseFamilyTag(tag string) (Family, bool) {
	switch tag {
	case string(ProviderGA4), string(ProviderYouTube), string(FamilyGoogle):
		return FamilyGoogle, true
	case string(ProviderFacebook), string(ProviderInstagram), string(FamilyMeta):
		return FamilyMeta, true
	case string(ProviderX):
		return FamilyX, true
	default:
		return "", false
	}
}

// Providers returns the providers belonging to the family.
func (f Family) Providers() []Provider {
	switch f {
	case FamilyGoogle:
		return []Provider{ProviderGA4, ProviderYouTube}
	case FamilyMeta:
		return []Provider{ProviderFacebook, ProviderInstagram}
	case FamilyX:
		return []Provider{ProviderX}
	default:
		return nil
	}
}

// TokenRefresh is the result of a successful provider refresh. RefreshToken
// is set only when the provider rotated it.
type TokenRefresh struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scope        string
}

// Adapter encapsulates a provider family's refresh and revoke protocols.
type Adapter interface {
	Family() Family

	// Refresh exchanges a refresh token for a new access token. Families
	// without a refresh protocol return ErrRefreshNotSupported.
	Refresh(ctx context.Context, refreshToken string) (*TokenRefresh, error)

	// Revoke invalidates the access token provider-side. It never returns an
	// error: any failure degrades to false so callers proceed with local
	// cleanup regardless of provider cooperation.
	Revoke(ctx context.Context, accessToken string) bool
}

// AdapterSet holds one adapter per family. It is passed into each component
// explicitly rather than registered globally.
type AdapterSet struct {
	Google Adapter
	Meta   Adapter
	X      Adapter
}

// ForProvider resolves the adapter for a provider's family.
func (s *AdapterSet) ForProvider(p Provider) (Adapter, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: no adapters configured", ErrUnknownProvider)
	}

	var adapter Adapter
	switch p.Family() {
	case FamilyGoogle:
		adapter = s.Google
	case FamilyMeta:
		adapter = s.Meta
	case FamilyX:
		adapter = s.X
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, p)
	}

	if adapter == nil {
		return nil, fmt.Errorf("%w: no adapter for family %s", ErrUnknownProvider, p.Family())
	}
	return adapter, nil
}
