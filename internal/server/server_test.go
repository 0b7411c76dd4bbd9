package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinup/internal/infrastructure/auth"
)

type fakeOAuth struct {
	exchangeErr error
	gotShop     string
	gotCode     string
}

func (f *fakeOAuth) AuthorizeURL(shopDomain, state string) string {
	return "https://" + shopDomain + "/admin/oauth/authorize?state=" + state
}

func (f *fakeOAuth) ExchangeCode(ctx context.Context, shopDomain, code string) (auth.TokenResponse, error) {
	f.gotShop = shopDomain
	f.gotCode = code
	if f.exchangeErr != nil {
		return auth.TokenResponse{}, f.exchangeErr
	}
	return auth.TokenResponse{AccessToken: "shpat_test", Scope: "read_products,write_products"}, nil
}

type testServer struct {
	*Server
	oauth  *fakeOAuth
	tokens *auth.TokenStore
	wl     *auth.Whitelist
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	oauth := &fakeOAuth{}
	tokens := auth.NewTokenStore(filepath.Join(dir, "tokens.json"))
	wl := auth.NewWhitelist(filepath.Join(dir, "whitelist.json"))
	srv := New(oauth, wl, tokens, nil, zerolog.Nop())
	return &testServer{Server: srv, oauth: oauth, tokens: tokens, wl: wl}
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.Router(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthMissingShop(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.Router(), "/auth")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthShopNotWhitelisted(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.Router(), "/auth?shop=intruder")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRedirectsWithState(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.wl.Add("my-shop"))

	rec := get(t, srv.Router(), "/auth?shop=My-Shop")

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "my-shop.myshopify.com", location.Host)
	assert.NotEmpty(t, location.Query().Get("state"))
}

func authorizedState(t *testing.T, srv *testServer, shop string) string {
	t.Helper()
	require.NoError(t, srv.wl.Add(shop))
	rec := get(t, srv.Router(), "/auth?shop="+shop)
	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return location.Query().Get("state")
}

func TestCallbackStoresToken(t *testing.T) {
	srv := newTestServer(t)
	state := authorizedState(t, srv, "my-shop")

	rec := get(t, srv.Router(), "/auth/callback?shop=my-shop&code=code1&state="+state)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "my-shop.myshopify.com")
	assert.Equal(t, "my-shop.myshopify.com", srv.oauth.gotShop)
	assert.Equal(t, "code1", srv.oauth.gotCode)

	token, ok, err := srv.tokens.Get("my-shop")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "shpat_test", token.AccessToken)
	assert.Equal(t, []string{"read_products", "write_products"}, token.Scopes)
}

func TestCallbackMissingParams(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.Router(), "/auth/callback?shop=my-shop")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackUnknownState(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.Router(), "/auth/callback?shop=my-shop&code=c&state=forged")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackStateIsSingleUse(t *testing.T) {
	srv := newTestServer(t)
	state := authorizedState(t, srv, "my-shop")

	first := get(t, srv.Router(), "/auth/callback?shop=my-shop&code=c&state="+state)
	require.Equal(t, http.StatusOK, first.Code)

	second := get(t, srv.Router(), "/auth/callback?shop=my-shop&code=c&state="+state)
	assert.Equal(t, http.StatusBadRequest, second.Code)
}

func TestCallbackShopMismatch(t *testing.T) {
	srv := newTestServer(t)
	state := authorizedState(t, srv, "my-shop")

	rec := get(t, srv.Router(), "/auth/callback?shop=other-shop&code=c&state="+state)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "shop mismatch")
}

func TestCallbackExchangeFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.oauth.exchangeErr = errors.New("shopify is down")
	state := authorizedState(t, srv, "my-shop")

	rec := get(t, srv.Router(), "/auth/callback?shop=my-shop&code=c&state="+state)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	_, ok, err := srv.tokens.Get("my-shop")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShopsListsStoredTokens(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.Router(), "/shops")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"shops":[]}`, rec.Body.String())

	state := authorizedState(t, srv, "my-shop")
	get(t, srv.Router(), "/auth/callback?shop=my-shop&code=c&state="+state)

	rec = get(t, srv.Router(), "/shops")
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"my-shop.myshopify.com"}, body["shops"])
}

func TestMetricsExposed(t *testing.T) {
	srv := newTestServer(t)
	get(t, srv.Router(), "/auth?shop=intruder")

	rec := get(t, srv.Router(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spinup_whitelist_denied_total 1")
}

func TestStateStoreExpiry(t *testing.T) {
	store := newStateStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	store.Put("nonce", "my-shop.myshopify.com")

	current = current.Add(stateTTL + time.Second)
	_, ok := store.Claim("nonce")
	assert.False(t, ok)
}
