package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credentials are the Shopify app credentials driving the OAuth flow.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	RedirectURI  string
}

// TokenResponse is Shopify's access token grant payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// OAuthHandler builds authorize URLs and exchanges authorization codes for
// access tokens.
type OAuthHandler struct {
	creds      Credentials
	httpClient *http.Client
	tokenURL   func(shopDomain string) string
}

// NewOAuthHandler creates a handler for the app's credentials.
func NewOAuthHandler(creds Credentials) *OAuthHandler {
	return &OAuthHandler{
		creds:      creds,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokenURL: func(shopDomain string) string {
			return fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain)
		},
	}
}

// AuthorizeURL builds the shop's OAuth authorize URL carrying the state
// nonce.
func (h *OAuthHandler) AuthorizeURL(shopDomain, state string) string {
	query := url.Values{}
	query.Set("client_id", h.creds.ClientID)
	query.Set("scope", strings.Join(h.creds.Scopes, ","))
	query.Set("redirect_uri", h.creds.RedirectURI)
	query.Set("state", state)
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shopDomain, query.Encode())
}

// ExchangeCode trades an authorization code for an access token.
func (h *OAuthHandler) ExchangeCode(ctx context.Context, shopDomain, code string) (TokenResponse, error) {
	var token TokenResponse

	payload, err := json.Marshal(map[string]string{
		"client_id":     h.creds.ClientID,
		"client_secret": h.creds.ClientSecret,
		"code":          code,
	})
	if err != nil {
		return token, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.tokenURL(shopDomain), bytes.NewReader(payload))
	if err != nil {
		return token, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return token, fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return token, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return token, fmt.Errorf("token exchange failed (%d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return token, fmt.Errorf("failed to decode token response: %w", err)
	}
	return token, nil
}
