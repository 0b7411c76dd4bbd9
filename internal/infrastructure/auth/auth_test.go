package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinup/internal/domain"
)

func TestTokenStoreSaveAndGetNormalizesDomain(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))

	err := store.Save("My-Shop", domain.StoredToken{
		AccessToken: "shpat_abc",
		Scopes:      []string{"read_products"},
	})
	require.NoError(t, err)

	token, ok, err := store.Get("my-shop.myshopify.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "shpat_abc", token.AccessToken)
	assert.Equal(t, "my-shop.myshopify.com", token.Shop)
}

func TestTokenStoreGetMissing(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))

	_, ok, err := store.Get("ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenStoreRemoveAndListShops(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))

	require.NoError(t, store.Save("alpha", domain.StoredToken{AccessToken: "a"}))
	require.NoError(t, store.Save("beta", domain.StoredToken{AccessToken: "b"}))

	shops, err := store.ListShops()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha.myshopify.com", "beta.myshopify.com"}, shops)

	require.NoError(t, store.Remove("alpha"))
	_, ok, err := store.Get("alpha")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWhitelistAddDeduplicates(t *testing.T) {
	wl := NewWhitelist(filepath.Join(t.TempDir(), "whitelist.json"))

	require.NoError(t, wl.Add("My-Shop"))
	require.NoError(t, wl.Add("my-shop.myshopify.com"))

	shops, err := wl.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"my-shop.myshopify.com"}, shops)
}

func TestWhitelistIsAllowedAndRemove(t *testing.T) {
	wl := NewWhitelist(filepath.Join(t.TempDir(), "whitelist.json"))

	ok, err := wl.IsAllowed("my-shop")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, wl.Add("my-shop"))
	ok, err = wl.IsAllowed("MY-SHOP")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, wl.Remove("my-shop"))
	ok, err = wl.IsAllowed("my-shop")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizeURL(t *testing.T) {
	h := NewOAuthHandler(Credentials{
		ClientID:    "key123",
		Scopes:      []string{"read_products", "write_products"},
		RedirectURI: "https://app.example.com/auth/callback",
	})

	raw := h.AuthorizeURL("my-shop.myshopify.com", "nonce42")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "my-shop.myshopify.com", parsed.Host)
	assert.Equal(t, "/admin/oauth/authorize", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "key123", query.Get("client_id"))
	assert.Equal(t, "read_products,write_products", query.Get("scope"))
	assert.Equal(t, "https://app.example.com/auth/callback", query.Get("redirect_uri"))
	assert.Equal(t, "nonce42", query.Get("state"))
}

func TestExchangeCode(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"access_token":"shpat_new","scope":"read_products,write_products"}`))
	}))
	t.Cleanup(srv.Close)

	h := NewOAuthHandler(Credentials{ClientID: "key123", ClientSecret: "secret"})
	h.tokenURL = func(string) string { return srv.URL }

	token, err := h.ExchangeCode(context.Background(), "my-shop.myshopify.com", "code789")
	require.NoError(t, err)

	assert.Equal(t, "shpat_new", token.AccessToken)
	assert.Equal(t, "read_products,write_products", token.Scope)
	assert.Equal(t, "key123", gotBody["client_id"])
	assert.Equal(t, "secret", gotBody["client_secret"])
	assert.Equal(t, "code789", gotBody["code"])
}

func TestExchangeCodeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid code"))
	}))
	t.Cleanup(srv.Close)

	h := NewOAuthHandler(Credentials{})
	h.tokenURL = func(string) string { return srv.URL }

	_, err := h.ExchangeCode(context.Background(), "my-shop.myshopify.com", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token exchange failed (400)")
	assert.Contains(t, err.Error(), "invalid code")
}
