package shopify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"spinup/internal/domain"
	"spinup/internal/ports"
)

// DefaultRateLimit is the fixed pause inserted between sequential batch
// requests to stay under Shopify's API limits.
const DefaultRateLimit = 250 * time.Millisecond

const productCreateMutation = `
  mutation ProductCreate($input: ProductInput!) {
    productCreate(input: $input) {
      product {
        id
        title
        handle
        variants(first: 1) {
          edges {
            node {
              id
            }
          }
        }
      }
      userErrors {
        field
        message
      }
    }
  }
`

const variantsBulkCreateMutation = `
  mutation ProductVariantsBulkCreate($productId: ID!, $variants: [ProductVariantsBulkInput!]!, $strategy: ProductVariantsBulkCreateStrategy) {
    productVariantsBulkCreate(productId: $productId, variants: $variants, strategy: $strategy) {
      product {
        id
      }
      productVariants {
        id
        sku
      }
      userErrors {
        field
        message
      }
    }
  }
`

const variantsBulkUpdateMutation = `
  mutation ProductVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
    productVariantsBulkUpdate(productId: $productId, variants: $variants) {
      product {
        id
      }
      productVariants {
        id
      }
      userErrors {
        field
        message
      }
    }
  }
`

type productCreateResponse struct {
	ProductCreate struct {
		Product *struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Handle   string `json:"handle"`
			Variants struct {
				Edges []struct {
					Node struct {
						ID string `json:"id"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"variants"`
		} `json:"product"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"productCreate"`
}

type variantsBulkCreateResponse struct {
	ProductVariantsBulkCreate struct {
		UserErrors []UserError `json:"userErrors"`
	} `json:"productVariantsBulkCreate"`
}

type variantsBulkUpdateResponse struct {
	ProductVariantsBulkUpdate struct {
		UserErrors []UserError `json:"userErrors"`
	} `json:"productVariantsBulkUpdate"`
}

// CreatedProduct identifies a product created by the builder.
type CreatedProduct struct {
	ID     string
	Title  string
	Handle string
}

// FailedProduct records one product that could not be created, without
// aborting the surrounding batch.
type FailedProduct struct {
	Handle string
	Error  string
}

// ProductBatchResult is the machine-checkable outcome of a batch create.
type ProductBatchResult struct {
	Created []CreatedProduct
	Failed  []FailedProduct
}

// ProductBuilder creates products via a two-phase flow: a product shell with
// its options schema, then bulk variant creation. The Online Store
// publication ID is memoized for the builder's lifetime.
type ProductBuilder struct {
	client        ports.GraphQLClient
	logger        zerolog.Logger
	rateLimit     time.Duration
	publicationID string
}

// NewProductBuilder creates a product builder with the default rate limit.
func NewProductBuilder(client ports.GraphQLClient, logger zerolog.Logger) *ProductBuilder {
	return &ProductBuilder{client: client, logger: logger, rateLimit: DefaultRateLimit}
}

// SetRateLimit overrides the inter-item delay used by CreateProducts.
func (b *ProductBuilder) SetRateLimit(d time.Duration) {
	b.rateLimit = d
}

// optionNames returns the union of option names across variants, in the
// order they first appear.
func optionNames(variants []domain.ProductVariant) []string {
	var names []string
	seen := make(map[string]bool)
	for _, v := range variants {
		for _, opt := range v.Options {
			if !seen[opt.Name] {
				seen[opt.Name] = true
				names = append(names, opt.Name)
			}
		}
	}
	return names
}

// buildProductOptions derives the product options schema: one entry per
// option name with the unique values seen across variants, both in
// first-seen order.
func buildProductOptions(variants []domain.ProductVariant) []map[string]any {
	names := optionNames(variants)
	valuesByName := make(map[string][]string, len(names))
	seen := make(map[string]map[string]bool, len(names))

	for _, v := range variants {
		for _, opt := range v.Options {
			if seen[opt.Name] == nil {
				seen[opt.Name] = make(map[string]bool)
			}
			if !seen[opt.Name][opt.Value] {
				seen[opt.Name][opt.Value] = true
				valuesByName[opt.Name] = append(valuesByName[opt.Name], opt.Value)
			}
		}
	}

	options := make([]map[string]any, 0, len(names))
	for _, name := range names {
		values := make([]map[string]any, 0, len(valuesByName[name]))
		for _, v := range valuesByName[name] {
			values = append(values, map[string]any{"name": v})
		}
		options = append(options, map[string]any{"name": name, "values": values})
	}
	return options
}

func buildVariantBulkInput(v domain.ProductVariant, names []string) map[string]any {
	input := map[string]any{
		"price": v.Price.StringFixed(2),
		"inventoryItem": map[string]any{
			"sku": v.SKU,
		},
	}
	if v.CompareAtPrice != nil {
		input["compareAtPrice"] = v.CompareAtPrice.StringFixed(2)
	}
	if len(names) > 0 {
		optionValues := make([]map[string]any, 0, len(names))
		for _, name := range names {
			optionValues = append(optionValues, map[string]any{
				"optionName": name,
				"name":       v.OptionValue(name),
			})
		}
		input["optionValues"] = optionValues
	}
	return input
}

// CreateProduct creates one product: shell first, then variants, then a
// best-effort publish to the Online Store. Variant-phase userErrors and
// publish failures are logged, not propagated; product creation is the
// success/failure signal.
func (b *ProductBuilder) CreateProduct(ctx context.Context, product domain.Product) (*CreatedProduct, error) {
	names := optionNames(product.Variants)
	hasOptions := len(names) > 0

	input := map[string]any{
		"title":           product.Title,
		"descriptionHtml": product.Description,
		"vendor":          product.Vendor,
		"productType":     product.Type,
		"tags":            product.Tags,
		"handle":          product.Handle,
		"status":          "ACTIVE",
	}
	if hasOptions {
		input["productOptions"] = buildProductOptions(product.Variants)
	}

	var created productCreateResponse
	if err := b.client.Execute(ctx, productCreateMutation, map[string]any{"input": input}, &created); err != nil {
		return nil, err
	}
	if len(created.ProductCreate.UserErrors) > 0 {
		return nil, &BuilderError{Op: "failed to create product", UserErrors: created.ProductCreate.UserErrors}
	}
	if created.ProductCreate.Product == nil {
		return nil, errors.New("product creation returned no product")
	}

	shell := created.ProductCreate.Product
	defaultVariantID := ""
	if len(shell.Variants.Edges) > 0 {
		defaultVariantID = shell.Variants.Edges[0].Node.ID
	}

	switch {
	case hasOptions:
		variants := make([]map[string]any, 0, len(product.Variants))
		for _, v := range product.Variants {
			variants = append(variants, buildVariantBulkInput(v, names))
		}

		var bulk variantsBulkCreateResponse
		err := b.client.Execute(ctx, variantsBulkCreateMutation, map[string]any{
			"productId": shell.ID,
			"variants":  variants,
			"strategy":  "REMOVE_STANDALONE_VARIANT",
		}, &bulk)
		if err != nil {
			b.logger.Warn().Err(err).Str("handle", product.Handle).Msg("Failed to create variants")
		} else if len(bulk.ProductVariantsBulkCreate.UserErrors) > 0 {
			b.logger.Warn().
				Str("handle", product.Handle).
				Str("errors", joinUserErrors(bulk.ProductVariantsBulkCreate.UserErrors)).
				Msg("Failed to create variants")
		}

	case len(product.Variants) == 1 && defaultVariantID != "":
		// No options: update the auto-created default variant in place
		// instead of leaving it orphaned next to a new one.
		update := buildVariantBulkInput(product.Variants[0], nil)
		update["id"] = defaultVariantID

		var bulk variantsBulkUpdateResponse
		err := b.client.Execute(ctx, variantsBulkUpdateMutation, map[string]any{
			"productId": shell.ID,
			"variants":  []map[string]any{update},
		}, &bulk)
		if err != nil {
			b.logger.Warn().Err(err).Str("handle", product.Handle).Msg("Failed to update default variant")
		} else if len(bulk.ProductVariantsBulkUpdate.UserErrors) > 0 {
			b.logger.Warn().
				Str("handle", product.Handle).
				Str("errors", joinUserErrors(bulk.ProductVariantsBulkUpdate.UserErrors)).
				Msg("Failed to update default variant")
		}
	}

	b.publishToOnlineStore(ctx, shell.ID)

	return &CreatedProduct{ID: shell.ID, Title: shell.Title, Handle: shell.Handle}, nil
}

// publishToOnlineStore attaches the product to the Online Store sales
// channel. Publishing is not part of the creation contract, so every failure
// here is a warning.
func (b *ProductBuilder) publishToOnlineStore(ctx context.Context, productID string) {
	publicationID := b.onlineStorePublicationID(ctx)
	if publicationID == "" {
		b.logger.Warn().Msg("Online Store publication not found, skipping publish")
		return
	}

	var resp publishResponse
	err := b.client.Execute(ctx, publishablePublishMutation, map[string]any{
		"id":    productID,
		"input": []map[string]any{{"publicationId": publicationID}},
	}, &resp)
	if err != nil {
		b.logger.Warn().Err(err).Str("productId", productID).Msg("Failed to publish product to Online Store")
		return
	}
	if len(resp.PublishablePublish.UserErrors) > 0 {
		b.logger.Warn().
			Str("productId", productID).
			Str("errors", joinUserErrors(resp.PublishablePublish.UserErrors)).
			Msg("Failed to publish product to Online Store")
	}
}

func (b *ProductBuilder) onlineStorePublicationID(ctx context.Context) string {
	if b.publicationID != "" {
		return b.publicationID
	}

	var resp publicationsResponse
	if err := b.client.Execute(ctx, publicationsQuery, nil, &resp); err != nil {
		b.logger.Warn().Err(err).Msg("Could not fetch publications (missing scope?), products will need manual publishing")
		return ""
	}
	for _, edge := range resp.Publications.Edges {
		if edge.Node.Name == onlineStorePublicationName {
			b.publicationID = edge.Node.ID
			break
		}
	}
	return b.publicationID
}

// CreateProducts creates products strictly sequentially, recording each
// success or failure independently and sleeping the configured delay between
// requests (skipped after the last item).
func (b *ProductBuilder) CreateProducts(ctx context.Context, products []domain.Product) ProductBatchResult {
	var result ProductBatchResult
	for i, product := range products {
		created, err := b.CreateProduct(ctx, product)
		if err != nil {
			result.Failed = append(result.Failed, FailedProduct{Handle: product.Handle, Error: err.Error()})
		} else {
			result.Created = append(result.Created, *created)
		}

		if i < len(products)-1 && b.rateLimit > 0 {
			time.Sleep(b.rateLimit)
		}
	}
	return result
}
