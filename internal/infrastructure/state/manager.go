// Package state persists per-store provisioning progress as flat JSON files,
// one file per store under the data directory.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"spinup/internal/domain"
	"spinup/internal/fsutil"
)

// ErrNotInitialized is returned when a step update targets a store with no
// state file.
var ErrNotInitialized = errors.New("store state not initialized")

// Manager reads and writes store state files. All writes are atomic
// temp-file renames, so a crash mid-write never leaves a truncated file.
type Manager struct {
	baseDir string
	logger  zerolog.Logger
}

// NewManager creates a manager rooted at baseDir.
func NewManager(baseDir string, logger zerolog.Logger) *Manager {
	return &Manager{baseDir: baseDir, logger: logger}
}

func (m *Manager) statePath(storeName string) string {
	return filepath.Join(m.baseDir, storeName, "state.json")
}

// Initialize creates a fresh state for the store with every step pending and
// persists it.
func (m *Manager) Initialize(storeName, configPath string) (*domain.StoreState, error) {
	now := time.Now().UTC()
	state := &domain.StoreState{
		StoreName:  storeName,
		ConfigPath: configPath,
		CreatedAt:  now,
		UpdatedAt:  now,
		Steps:      make(map[domain.Step]*domain.StepState, len(domain.StepOrder)),
	}
	for _, step := range domain.StepOrder {
		state.Steps[step] = &domain.StepState{Status: domain.StatusPending}
	}

	if err := m.Save(state); err != nil {
		return nil, err
	}
	m.logger.Debug().Str("store", storeName).Msg("Initialized store state")
	return state, nil
}

// Save persists the state, refreshing its UpdatedAt stamp.
func (m *Manager) Save(state *domain.StoreState) error {
	state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := fsutil.WriteFileAtomic(m.statePath(state.StoreName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Load reads the store's state. A missing file returns (nil, nil) so callers
// can distinguish "never started" from a read failure.
func (m *Manager) Load(storeName string) (*domain.StoreState, error) {
	data, err := os.ReadFile(m.statePath(storeName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state domain.StoreState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state file: %w", err)
	}
	return &state, nil
}

// UpdateStep transitions one step and persists the result. Entering
// in_progress stamps StartedAt; entering a terminal status (complete, failed
// or partial) stamps CompletedAt. Data is merged key-by-key into whatever
// the step already carries.
func (m *Manager) UpdateStep(storeName string, step domain.Step, status domain.StepStatus, data map[string]any) error {
	state, err := m.Load(storeName)
	if err != nil {
		return err
	}
	if state == nil {
		return ErrNotInitialized
	}

	stepState := state.Steps[step]
	if stepState == nil {
		stepState = &domain.StepState{Status: domain.StatusPending}
		state.Steps[step] = stepState
	}

	now := time.Now().UTC()
	stepState.Status = status
	switch status {
	case domain.StatusInProgress:
		stepState.StartedAt = &now
	case domain.StatusComplete, domain.StatusFailed, domain.StatusPartial:
		stepState.CompletedAt = &now
	}

	if len(data) > 0 {
		if stepState.Data == nil {
			stepState.Data = make(map[string]any, len(data))
		}
		for k, v := range data {
			stepState.Data[k] = v
		}
	}

	return m.Save(state)
}

// SetStepError marks a step failed with the given message, stamping
// CompletedAt even if the step never entered in_progress.
func (m *Manager) SetStepError(storeName string, step domain.Step, message string) error {
	state, err := m.Load(storeName)
	if err != nil {
		return err
	}
	if state == nil {
		return ErrNotInitialized
	}

	stepState := state.Steps[step]
	if stepState == nil {
		stepState = &domain.StepState{}
		state.Steps[step] = stepState
	}

	now := time.Now().UTC()
	stepState.Status = domain.StatusFailed
	stepState.Error = message
	stepState.CompletedAt = &now

	return m.Save(state)
}

// FindNextIncompleteStep returns the first step in canonical order that is
// not complete, or "" when every step is.
func FindNextIncompleteStep(state *domain.StoreState) domain.Step {
	for _, step := range domain.StepOrder {
		stepState := state.Steps[step]
		if stepState == nil || stepState.Status != domain.StatusComplete {
			return step
		}
	}
	return ""
}

// ListStores returns the store names with a state file, in directory
// listing order.
func (m *Manager) ListStores() ([]string, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list state directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(m.statePath(entry.Name())); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// DeleteStore removes the store's state directory. Deleting a missing store
// is not an error.
func (m *Manager) DeleteStore(storeName string) error {
	if err := os.RemoveAll(filepath.Join(m.baseDir, storeName)); err != nil {
		return fmt.Errorf("failed to delete store state: %w", err)
	}
	return nil
}
