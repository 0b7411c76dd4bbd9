package shopify

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"spinup/internal/domain"
	"spinup/internal/ports"
)

const collectionCreateMutation = `
  mutation CollectionCreate($input: CollectionInput!) {
    collectionCreate(input: $input) {
      collection {
        id
        title
        handle
      }
      userErrors {
        field
        message
      }
    }
  }
`

type collectionCreateResponse struct {
	CollectionCreate struct {
		Collection *struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Handle string `json:"handle"`
		} `json:"collection"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"collectionCreate"`
}

// CreatedCollection identifies a collection created by the builder.
type CreatedCollection struct {
	ID     string
	Title  string
	Handle string
}

// FailedCollection records one tag whose collection could not be created.
type FailedCollection struct {
	Tag   string
	Error string
}

// CollectionBatchResult is the outcome of a batch collection create.
type CollectionBatchResult struct {
	Created []CreatedCollection
	Failed  []FailedCollection
}

// CollectionBuilder creates one smart collection per distinct product tag,
// with a single tag-equals membership rule.
type CollectionBuilder struct {
	client ports.GraphQLClient
	logger zerolog.Logger
}

// NewCollectionBuilder creates a collection builder.
func NewCollectionBuilder(client ports.GraphQLClient, logger zerolog.Logger) *CollectionBuilder {
	return &CollectionBuilder{client: client, logger: logger}
}

// ExtractUniqueTags returns the distinct tags across all products,
// case-insensitively deduplicated, in first-seen order.
func ExtractUniqueTags(products []domain.Product) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, p := range products {
		for _, tag := range p.Tags {
			key := strings.ToLower(tag)
			if !seen[key] {
				seen[key] = true
				tags = append(tags, key)
			}
		}
	}
	return tags
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// BuildCollectionInput builds the collectionCreate input for one tag: the
// capitalized tag as title and a single TAG EQUALS rule.
func BuildCollectionInput(tag string) map[string]any {
	return map[string]any{
		"title": capitalize(tag),
		"ruleSet": map[string]any{
			"appliedDisjunctively": false,
			"rules": []map[string]any{
				{
					"column":    "TAG",
					"relation":  "EQUALS",
					"condition": tag,
				},
			},
		},
	}
}

// CreateForTag creates one smart collection for the given tag.
func (b *CollectionBuilder) CreateForTag(ctx context.Context, tag string) (*CreatedCollection, error) {
	var resp collectionCreateResponse
	err := b.client.Execute(ctx, collectionCreateMutation, map[string]any{"input": BuildCollectionInput(tag)}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.CollectionCreate.UserErrors) > 0 {
		return nil, &BuilderError{Op: "failed to create collection", UserErrors: resp.CollectionCreate.UserErrors}
	}
	if resp.CollectionCreate.Collection == nil {
		return nil, errors.New("collection creation returned no collection")
	}

	created := resp.CollectionCreate.Collection
	return &CreatedCollection{ID: created.ID, Title: created.Title, Handle: created.Handle}, nil
}

// CreateFromProducts creates one collection per distinct tag across the
// products, recording each success or failure independently.
func (b *CollectionBuilder) CreateFromProducts(ctx context.Context, products []domain.Product) CollectionBatchResult {
	var result CollectionBatchResult
	for _, tag := range ExtractUniqueTags(products) {
		created, err := b.CreateForTag(ctx, tag)
		if err != nil {
			b.logger.Warn().Err(err).Str("tag", tag).Msg("Failed to create collection")
			result.Failed = append(result.Failed, FailedCollection{Tag: tag, Error: err.Error()})
		} else {
			result.Created = append(result.Created, *created)
		}
	}
	return result
}
