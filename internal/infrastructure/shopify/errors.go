package shopify

import (
	"fmt"
	"strings"
)

// APIErrorKind classifies GraphQL client failures.
type APIErrorKind int

const (
	// APIErrorHTTP is a non-2xx transport response.
	APIErrorHTTP APIErrorKind = iota
	// APIErrorGraphQL is a 2xx response carrying a non-empty errors array.
	// It takes priority even when a data payload is also present.
	APIErrorGraphQL
	// APIErrorNoData is a 2xx response with neither errors nor data.
	APIErrorNoData
)

// APIError is the failure type returned by the GraphQL client.
type APIError struct {
	Kind     APIErrorKind
	Status   int
	Body     string
	Messages []string
}

func (e *APIError) Error() string {
	switch e.Kind {
	case APIErrorHTTP:
		return fmt.Sprintf("shopify API error (%d): %s", e.Status, e.Body)
	case APIErrorGraphQL:
		return fmt.Sprintf("graphql errors: %s", strings.Join(e.Messages, ", "))
	default:
		return "no data returned from shopify API"
	}
}

// UserError is Shopify's structured, non-exceptional error list returned
// inline in otherwise-successful mutation responses.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// BuilderError reports a mutation whose userErrors list was non-empty. It is
// raised even when the mutation's primary object is non-nil.
type BuilderError struct {
	Op         string
	UserErrors []UserError
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, joinUserErrors(e.UserErrors))
}

func joinUserErrors(errs []UserError) string {
	parts := make([]string, 0, len(errs))
	for _, ue := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message))
	}
	return strings.Join(parts, ", ")
}
