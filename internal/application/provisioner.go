// Package application orchestrates a full store build: config resolution,
// theme setup, product import and collection creation, with progress tracked
// in the state store so interrupted builds can be resumed.
package application

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"spinup/internal/config"
	"spinup/internal/domain"
	"spinup/internal/infrastructure/auth"
	"spinup/internal/infrastructure/shopify"
	"spinup/internal/infrastructure/state"
	"spinup/internal/ports"
	"spinup/internal/products"
)

// ProvisionOptions are the inputs to one build run.
type ProvisionOptions struct {
	ConfigPath string
	Shop       string
	// Token overrides the stored token when set.
	Token string
}

// Provisioner drives the build steps against one shop.
type Provisioner struct {
	states *state.Manager
	tokens *auth.TokenStore
	logger zerolog.Logger

	newClient func(creds shopify.Credentials) ports.GraphQLClient
}

// NewProvisioner creates a provisioner using the real GraphQL client.
func NewProvisioner(states *state.Manager, tokens *auth.TokenStore, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		states: states,
		tokens: tokens,
		logger: logger,
		newClient: func(creds shopify.Credentials) ports.GraphQLClient {
			return shopify.NewClient(creds, logger)
		},
	}
}

// StoreName derives the state key from the configured store name.
func StoreName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// Provision runs every remaining build step for the store described by the
// config file. Batch steps record partial results and the run keeps going;
// only config and credential problems abort it.
func (p *Provisioner) Provision(ctx context.Context, opts ProvisionOptions) error {
	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return err
	}

	storeName := StoreName(cfg.Store.Name)
	shopDomain := domain.NormalizeDomain(opts.Shop)

	accessToken := opts.Token
	if accessToken == "" {
		stored, ok, err := p.tokens.Get(shopDomain)
		if err != nil {
			return err
		}
		if !ok {
			color.Red("No access token found for %s.", shopDomain)
			color.Yellow("Run the auth server (spinup serve) and install the app on the shop, or pass --token.")
			return nil
		}
		accessToken = stored.AccessToken
	}

	st, err := p.states.Load(storeName)
	if err != nil {
		return err
	}
	if st == nil {
		st, err = p.states.Initialize(storeName, opts.ConfigPath)
		if err != nil {
			return err
		}
	}
	st.ShopDomain = shopDomain
	if err := p.states.Save(st); err != nil {
		return err
	}

	client := p.newClient(shopify.Credentials{ShopDomain: shopDomain, AccessToken: accessToken})

	color.Cyan("Building %s on %s", cfg.Store.Name, shopDomain)

	if err := p.markStoreCreated(storeName, st); err != nil {
		return err
	}
	if err := p.configureTheme(ctx, client, storeName, st, cfg); err != nil {
		return err
	}
	parsed, err := p.importProducts(ctx, client, storeName, st, cfg, opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := p.createCollections(ctx, client, storeName, st, cfg, parsed); err != nil {
		return err
	}

	p.printSummary(storeName)
	return nil
}

func stepDone(st *domain.StoreState, step domain.Step) bool {
	stepState := st.Steps[step]
	return stepState != nil && stepState.Status == domain.StatusComplete
}

func (p *Provisioner) markStoreCreated(storeName string, st *domain.StoreState) error {
	if stepDone(st, domain.StepStoreCreated) {
		return nil
	}
	// Store creation is manual (there is no Admin API for it); the step
	// records that a working shop already exists.
	return p.states.UpdateStep(storeName, domain.StepStoreCreated, domain.StatusComplete, map[string]any{
		"note": "using existing store",
	})
}

// configureTheme only runs when the config has a theme section; a theme-less
// config leaves the step pending and the shop's live theme untouched.
func (p *Provisioner) configureTheme(ctx context.Context, client ports.GraphQLClient, storeName string, st *domain.StoreState, cfg *domain.StoreConfig) error {
	if cfg.Theme == nil {
		return nil
	}
	if stepDone(st, domain.StepThemeConfigured) {
		return nil
	}

	builder := shopify.NewThemeBuilder(client, p.logger)
	note := "no theme settings in config"

	if cfg.Theme.Settings != nil {
		if err := builder.Configure(ctx, *cfg.Theme.Settings); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to apply theme settings")
			color.Yellow("Theme settings could not be applied: %v", err)
			note = "theme settings failed, continuing"
		} else {
			note = "theme settings applied"
		}
	}

	if err := builder.Rename(ctx, cfg.Store.Name); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to rename theme")
	}

	return p.states.UpdateStep(storeName, domain.StepThemeConfigured, domain.StatusComplete, map[string]any{
		"note": note,
	})
}

// importProducts returns the parsed products so collection creation can reuse
// them. A nil slice means the step was skipped or failed before any product
// was attempted.
func (p *Provisioner) importProducts(ctx context.Context, client ports.GraphQLClient, storeName string, st *domain.StoreState, cfg *domain.StoreConfig, configPath string) ([]domain.Product, error) {
	if cfg.Products == nil {
		return nil, nil
	}
	if stepDone(st, domain.StepProductsImported) {
		return p.reparseForCollections(cfg, configPath), nil
	}

	if err := p.states.UpdateStep(storeName, domain.StepProductsImported, domain.StatusInProgress, nil); err != nil {
		return nil, err
	}

	result := products.Parse(csvPath(cfg, configPath))
	for _, warning := range result.Warnings {
		color.Yellow("  %s", warning)
	}
	if len(result.Errors) > 0 {
		message := strings.Join(result.Errors, "; ")
		color.Red("Product CSV has errors: %s", message)
		if err := p.states.SetStepError(storeName, domain.StepProductsImported, message); err != nil {
			return nil, err
		}
		return nil, nil
	}

	builder := shopify.NewProductBuilder(client, p.logger)
	batch := builder.CreateProducts(ctx, result.Products)

	status := domain.StatusComplete
	if len(batch.Failed) > 0 {
		status = domain.StatusPartial
		for _, failed := range batch.Failed {
			color.Red("  Failed to create %s: %s", failed.Handle, failed.Error)
		}
	}
	color.Green("Created %d of %d products", len(batch.Created), len(result.Products))

	err := p.states.UpdateStep(storeName, domain.StepProductsImported, status, map[string]any{
		"total":   len(result.Products),
		"created": len(batch.Created),
		"failed":  len(batch.Failed),
	})
	if err != nil {
		return nil, err
	}

	if len(batch.Created) > 0 {
		ids := make([]string, 0, len(batch.Created))
		for _, created := range batch.Created {
			ids = append(ids, created.ID)
		}
		publications := shopify.NewPublicationService(client, p.logger)
		if _, err := publications.Publish(ctx, ids); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to publish products")
			color.Yellow("Products created but not published: %v", err)
		}
	}

	return result.Products, nil
}

// reparseForCollections re-reads the CSV when the import step already
// completed in a previous run, so a resumed build can still derive tags.
func (p *Provisioner) reparseForCollections(cfg *domain.StoreConfig, configPath string) []domain.Product {
	result := products.Parse(csvPath(cfg, configPath))
	if len(result.Errors) > 0 {
		return nil
	}
	return result.Products
}

func (p *Provisioner) createCollections(ctx context.Context, client ports.GraphQLClient, storeName string, st *domain.StoreState, cfg *domain.StoreConfig, parsed []domain.Product) error {
	if cfg.Products == nil || !cfg.Products.ShouldCreateCollections() || len(parsed) == 0 {
		return nil
	}
	if stepDone(st, domain.StepCollectionsCreated) {
		return nil
	}

	if err := p.states.UpdateStep(storeName, domain.StepCollectionsCreated, domain.StatusInProgress, nil); err != nil {
		return err
	}

	builder := shopify.NewCollectionBuilder(client, p.logger)
	batch := builder.CreateFromProducts(ctx, parsed)

	status := domain.StatusComplete
	if len(batch.Failed) > 0 {
		status = domain.StatusPartial
	}
	color.Green("Created %d collections", len(batch.Created))

	err := p.states.UpdateStep(storeName, domain.StepCollectionsCreated, status, map[string]any{
		"created": len(batch.Created),
		"failed":  len(batch.Failed),
	})
	if err != nil {
		return err
	}

	if len(batch.Created) > 0 {
		ids := make([]string, 0, len(batch.Created))
		for _, created := range batch.Created {
			ids = append(ids, created.ID)
		}
		publications := shopify.NewPublicationService(client, p.logger)
		if _, err := publications.Publish(ctx, ids); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to publish collections")
			color.Yellow("Collections created but not published: %v", err)
		}
	}
	return nil
}

func csvPath(cfg *domain.StoreConfig, configPath string) string {
	source := cfg.Products.Source
	if filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(filepath.Dir(configPath), source)
}

func (p *Provisioner) printSummary(storeName string) {
	st, err := p.states.Load(storeName)
	if err != nil || st == nil {
		return
	}

	fmt.Println()
	color.Cyan("Build summary for %s:", storeName)
	for _, step := range domain.StepOrder {
		stepState := st.Steps[step]
		status := domain.StatusPending
		if stepState != nil {
			status = stepState.Status
		}
		switch status {
		case domain.StatusComplete:
			color.Green("  ✓ %s", step)
		case domain.StatusPartial:
			color.Yellow("  ⚠ %s", step)
		case domain.StatusFailed:
			color.Red("  ✗ %s", step)
		default:
			fmt.Printf("  ○ %s\n", step)
		}
	}
}
