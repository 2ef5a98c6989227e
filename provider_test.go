package connections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFamily(t *testing.T) {
	cases := map[Provider]Family{
		ProviderGA4:       FamilyGoogle,
		ProviderYouTube:   FamilyGoogle,
		ProviderFacebook:  FamilyMeta,
		ProviderInstagram: FamilyMeta,
		ProviderX:         FamilyX,
	}

	for provider, family := range cases {
		assert.True(t, provider.IsValid())
		assert.Equal(t, family, provider.Family())
	}

	assert.False(t, Provider("tiktok").IsValid())
	assert.Empty(t, Provider("tiktok").Family())
}

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider("youtube")
	require.True(t, ok)
	assert.Equal(t, ProviderYouTube, p)

	_, ok = ParseProvider("myspace")
	assert.False(t, ok)
}

func TestParseFamilyTag(t *testing.T) {
	cases := map[string]Family{
		"ga4":       FamilyGoogle,
		"youtube":   FamilyGoogle,
		"google":    FamilyGoogle,
		"facebook":  FamilyMeta,
		"instagram": FamilyMeta,
		"meta":      FamilyMeta,
		"x":         FamilyX,
	}

	for tag, family := range cases {
		got, ok := ParseFamilyTag(tag)
		require.True(t, ok, "tag %q", tag)
		assert.Equal(t, family, got)
	}

	_, ok := ParseFamilyTag("linkedin")
	assert.False(t, ok)
}

func TestFamilyProviders(t *testing.T) {
	assert.Equal(t, []Provider{ProviderGA4, ProviderYouTube}, FamilyGoogle.Providers())
	assert.Equal(t, []Provider{ProviderFacebook, ProviderInstagram}, FamilyMeta.Providers())
	assert.Equal(t, []Provider{ProviderX}, FamilyX.Providers())
	assert.Nil(t, Family("unknown").Providers())
}

func TestAdapterSetForProvider(t *testing.T) {
	google := &stubAdapter{family: FamilyGoogle}
	meta := &stubAdapter{family: FamilyMeta}

	set := &AdapterSet{Google: google, Meta: meta}

	adapter, err := set.ForProvider(ProviderGA4)
	require.NoError(t, err)
	assert.Equal(t, FamilyGoogle, adapter.Family())

	adapter, err = set.ForProvider(ProviderInstagram)
	require.NoError(t, err)
	assert.Equal(t, FamilyMeta, adapter.Family())

	_, err = set.ForProvider(ProviderX)
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = set.ForProvider(Provider("tiktok"))
	assert.ErrorIs(t, err, ErrUnknownProvider)

	var nilSet *AdapterSet
	_, err = nilSet.ForProvider(ProviderGA4)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
