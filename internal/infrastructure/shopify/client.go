// Package shopify implements the Admin GraphQL API client and the resource
// builders that turn domain objects into mutations.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// APIVersion pins the Admin GraphQL API version all requests target.
const APIVersion = "2025-01"

// Credentials identify one shop and the access token used against it.
type Credentials struct {
	ShopDomain  string
	AccessToken string
}

// Client is a single-purpose GraphQL request wrapper. It performs no retries,
// no rate-limit backoff, and no query cost accounting; callers are
// responsible for pacing.
type Client struct {
	creds      Credentials
	apiURL     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client for one shop.
func NewClient(creds Credentials, logger zerolog.Logger) *Client {
	return &Client{
		creds:      creds,
		apiURL:     fmt.Sprintf("https://%s/admin/api/%s/graphql.json", creds.ShopDomain, APIVersion),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute posts one GraphQL document and decodes the response's data payload
// into out. A non-empty errors array fails the call even when data is also
// present.
func (c *Client) Execute(ctx context.Context, document string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphqlRequest{Query: document, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call shopify API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("shop", c.creds.ShopDomain).
			Msg("Shopify API returned non-2xx status")
		return &APIError{Kind: APIErrorHTTP, Status: resp.StatusCode, Body: string(body)}
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return &APIError{Kind: APIErrorGraphQL, Messages: messages}
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return &APIError{Kind: APIErrorNoData}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode data payload: %w", err)
		}
	}
	return nil
}
