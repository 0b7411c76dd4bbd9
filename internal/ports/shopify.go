package ports

import "context"

// GraphQLClient executes Shopify Admin GraphQL documents. Execute decodes the
// response's data payload into out (which may be nil when the caller does not
// need it) and surfaces transport, GraphQL-document, and empty-response
// failures as errors.
type GraphQLClient interface {
	Execute(ctx context.Context, document string, variables map[string]any, out any) error
}

// TokenValidator checks whether an access token is still accepted by a shop.
type TokenValidator interface {
	ValidateToken(ctx context.Context, shopDomain, accessToken string) (bool, error)
}
