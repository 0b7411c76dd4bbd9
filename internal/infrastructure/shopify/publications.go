package shopify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"spinup/internal/ports"
)

const onlineStorePublicationName = "Online Store"

const publicationsQuery = `
  query Publications {
    publications(first: 10) {
      edges {
        node {
          id
          name
        }
      }
    }
  }
`

const publishablePublishMutation = `
  mutation PublishablePublish($id: ID!, $input: [PublicationInput!]!) {
    publishablePublish(id: $id, input: $input) {
      userErrors {
        field
        message
      }
    }
  }
`

type publicationsResponse struct {
	Publications struct {
		Edges []struct {
			Node struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"publications"`
}

type publishResponse struct {
	PublishablePublish struct {
		UserErrors []UserError `json:"userErrors"`
	} `json:"publishablePublish"`
}

// FailedPublish records one resource that could not be published.
type FailedPublish struct {
	ID    string
	Error string
}

// PublishResult is the per-item outcome of a batch publish.
type PublishResult struct {
	Published []string
	Failed    []FailedPublish
}

// PublicationService publishes resources to the Online Store sales channel.
// Unlike the product builder's opportunistic publish, a missing Online Store
// publication is a hard error here: callers asked for publishing explicitly.
type PublicationService struct {
	client        ports.GraphQLClient
	logger        zerolog.Logger
	rateLimit     time.Duration
	publicationID string
}

// NewPublicationService creates a publication service with the default rate
// limit.
func NewPublicationService(client ports.GraphQLClient, logger zerolog.Logger) *PublicationService {
	return &PublicationService{client: client, logger: logger, rateLimit: DefaultRateLimit}
}

// SetRateLimit overrides the inter-item delay used by Publish.
func (s *PublicationService) SetRateLimit(d time.Duration) {
	s.rateLimit = d
}

// OnlineStorePublicationID resolves and memoizes the Online Store
// publication's ID.
func (s *PublicationService) OnlineStorePublicationID(ctx context.Context) (string, error) {
	if s.publicationID != "" {
		return s.publicationID, nil
	}

	var resp publicationsResponse
	if err := s.client.Execute(ctx, publicationsQuery, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch publications: %w", err)
	}
	for _, edge := range resp.Publications.Edges {
		if edge.Node.Name == onlineStorePublicationName {
			s.publicationID = edge.Node.ID
			return s.publicationID, nil
		}
	}
	return "", errors.New("online store publication not found. Is the Online Store sales channel enabled?")
}

// Publish publishes each resource to the Online Store sequentially. Failure
// to resolve the publication aborts the whole batch; per-item failures are
// recorded and the batch continues. The rate-limit delay is skipped after
// the final item.
func (s *PublicationService) Publish(ctx context.Context, ids []string) (PublishResult, error) {
	var result PublishResult

	publicationID, err := s.OnlineStorePublicationID(ctx)
	if err != nil {
		return result, err
	}

	for i, id := range ids {
		if err := s.publishOne(ctx, id, publicationID); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("Failed to publish resource")
			result.Failed = append(result.Failed, FailedPublish{ID: id, Error: err.Error()})
		} else {
			result.Published = append(result.Published, id)
		}

		if i < len(ids)-1 && s.rateLimit > 0 {
			time.Sleep(s.rateLimit)
		}
	}
	return result, nil
}

func (s *PublicationService) publishOne(ctx context.Context, id, publicationID string) error {
	var resp publishResponse
	err := s.client.Execute(ctx, publishablePublishMutation, map[string]any{
		"id":    id,
		"input": []map[string]any{{"publicationId": publicationID}},
	}, &resp)
	if err != nil {
		return err
	}
	if len(resp.PublishablePublish.UserErrors) > 0 {
		return &BuilderError{Op: "failed to publish", UserErrors: resp.PublishablePublish.UserErrors}
	}
	return nil
}
