package platforms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	testCases := []struct {
		input string
		want  Kind
	}{
		{"shopify", KindShopify},
		{" WooCommerce ", KindWooCommerce},
		{"AMAZON", KindAmazon},
	}
	for _, tc := range testCases {
		got, err := ParseKind(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseKind("ebay")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestNewRequiresCredentials(t *testing.T) {
	p, err := New(KindShopify, Credentials{ShopDomain: "shop.myshopify.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorContains(t, err, "accessToken")
	assert.Nil(t, p)

	_, err = New(KindWooCommerce, Credentials{SiteURL: "https://example.com"})
	assert.ErrorContains(t, err, "consumerKey, consumerSecret")

	_, err = New(KindAmazon, Credentials{ClientID: "id"})
	assert.ErrorContains(t, err, "clientSecret, refreshToken")

	_, err = New(Kind("ebay"), Credentials{})
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestNewBuildsEachPlatform(t *testing.T) {
	creds := Credentials{
		ShopDomain: "shop.myshopify.com", AccessToken: "tok",
		SiteURL: "https://example.com/", ConsumerKey: "ck", ConsumerSecret: "cs",
		RefreshToken: "rt", ClientID: "id", ClientSecret: "secret", Region: "eu-west-1",
	}
	for _, kind := range Kinds {
		p, err := New(kind, creds)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, p.Name())
	}

	shop, _ := NewShopifyClient(creds)
	assert.Equal(t, "https://shop.myshopify.com/admin/api/2024-01", shop.baseURL)
	woo, _ := NewWooCommerceClient(creds)
	assert.Equal(t, "https://example.com/wp-json/wc/v3", woo.baseURL)
	amazon, _ := NewAmazonClient(creds)
	assert.Equal(t, "https://sellingpartnerapi-eu.amazon.com", amazon.baseURL)
	assert.Equal(t, amazonTokenURL, amazon.tokenURL)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Shopify", KindShopify.DisplayName())
	assert.Equal(t, "WooCommerce", KindWooCommerce.DisplayName())
	assert.Equal(t, "Amazon", KindAmazon.DisplayName())
	assert.Equal(t, "other", Kind("other").DisplayName())
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.50","b":7890123456,"c":null}`), &v))
	assert.Equal(t, "12.50", v.A.String())
	assert.Equal(t, 12.5, v.A.Float())
	assert.Equal(t, "7890123456", v.B.String())
	assert.Equal(t, "", v.C.String())
	assert.Zero(t, v.C.Float())

	assert.Error(t, json.Unmarshal([]byte(`{"a":{}}`), &v))
}

func TestSetupGuide(t *testing.T) {
	for _, kind := range Kinds {
		g, ok := SetupGuide(kind)
		require.True(t, ok)
		assert.Equal(t, kind, g.Platform)
		assert.NotEmpty(t, g.Steps)
	}

	g, _ := SetupGuide(KindShopify)
	g.Steps[0] = "changed"
	again, _ := SetupGuide(KindShopify)
	assert.NotEqual(t, "changed", again.Steps[0])

	_, ok := SetupGuide(Kind("ebay"))
	assert.False(t, ok)
}

func TestOrderDate(t *testing.T) {
	assert.Equal(t, "2024-06-15", orderDate("2024-06-15T10:20:30-04:00"))
	assert.Equal(t, "bad", orderDate("bad"))
}
