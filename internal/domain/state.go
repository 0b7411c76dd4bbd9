package domain

import "time"

// StepStatus is the lifecycle status of a single build step.
type StepStatus string

const (
	StatusPending    StepStatus = "pending"
	StatusInProgress StepStatus = "in_progress"
	StatusComplete   StepStatus = "complete"
	StatusFailed     StepStatus = "failed"
	// StatusPartial marks a batch step where some items succeeded and some
	// failed. It is terminal and not retried automatically.
	StatusPartial StepStatus = "partial"
)

// Step names one phase of a store build.
type Step string

const (
	StepStoreCreated       Step = "store_created"
	StepThemeConfigured    Step = "theme_configured"
	StepProductsImported   Step = "products_imported"
	StepCollectionsCreated Step = "collections_created"
	StepSettingsApplied    Step = "settings_applied"
)

// StepOrder is the fixed, total order builds run in.
var StepOrder = []Step{
	StepStoreCreated,
	StepThemeConfigured,
	StepProductsImported,
	StepCollectionsCreated,
	StepSettingsApplied,
}

// StepState tracks one step of a store build.
type StepState struct {
	Status      StepStatus     `json:"status"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Error       string         `json:"error,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// StoreState is the persisted build state for one store, one JSON file per
// store name.
type StoreState struct {
	StoreName  string              `json:"storeName"`
	ShopDomain string              `json:"shopDomain,omitempty"`
	ConfigPath string              `json:"configPath"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Steps      map[Step]*StepState `json:"steps"`
}
