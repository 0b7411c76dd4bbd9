package shopify

import (
	"context"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// RESTValidator checks token liveness against the Admin REST API via a cheap
// shop lookup.
type RESTValidator struct {
	app    goshopify.App
	logger zerolog.Logger
}

// NewRESTValidator creates a validator bound to the app's API credentials.
func NewRESTValidator(apiKey, apiSecret string, logger zerolog.Logger) *RESTValidator {
	return &RESTValidator{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		logger: logger,
	}
}

// ValidateToken reports whether the access token is still accepted by the
// shop. Transient failures are treated as valid so a flaky network never
// invalidates a working token.
func (v *RESTValidator) ValidateToken(ctx context.Context, shopDomain, accessToken string) (bool, error) {
	client, err := goshopify.NewClient(v.app, shopDomain, accessToken)
	if err != nil {
		return false, err
	}

	if _, err := client.Shop.Get(ctx, nil); err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden") {
			v.logger.Warn().Str("shop", shopDomain).Msg("Access token rejected by shop")
			return false, nil
		}
		v.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Token validation inconclusive, assuming valid")
		return true, nil
	}
	return true, nil
}
