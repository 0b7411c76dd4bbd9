package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spinup/internal/domain"
	"spinup/internal/fsutil"
)

type whitelistFile struct {
	AllowedShops []string `json:"allowed_shops"`
}

// Whitelist is the flat-file list of shop domains allowed to complete the
// OAuth flow. An empty or missing file denies everyone.
type Whitelist struct {
	path string
}

// NewWhitelist creates a whitelist backed by the given file path.
func NewWhitelist(path string) *Whitelist {
	return &Whitelist{path: path}
}

func (w *Whitelist) load() (whitelistFile, error) {
	var file whitelistFile

	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("failed to read whitelist file: %w", err)
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to decode whitelist file: %w", err)
	}
	return file, nil
}

func (w *Whitelist) save(file whitelistFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode whitelist file: %w", err)
	}
	if err := fsutil.WriteFileAtomic(w.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write whitelist file: %w", err)
	}
	return nil
}

// Add allows a shop. Adding an already-allowed shop is a no-op.
func (w *Whitelist) Add(shopDomain string) error {
	file, err := w.load()
	if err != nil {
		return err
	}
	key := domain.NormalizeDomain(shopDomain)
	for _, shop := range file.AllowedShops {
		if shop == key {
			return nil
		}
	}
	file.AllowedShops = append(file.AllowedShops, key)
	return w.save(file)
}

// Remove disallows a shop. Removing an unknown shop is a no-op.
func (w *Whitelist) Remove(shopDomain string) error {
	file, err := w.load()
	if err != nil {
		return err
	}
	key := domain.NormalizeDomain(shopDomain)
	kept := file.AllowedShops[:0]
	for _, shop := range file.AllowedShops {
		if shop != key {
			kept = append(kept, shop)
		}
	}
	file.AllowedShops = kept
	return w.save(file)
}

// IsAllowed reports whether the shop is allowed.
func (w *Whitelist) IsAllowed(shopDomain string) (bool, error) {
	file, err := w.load()
	if err != nil {
		return false, err
	}
	key := domain.NormalizeDomain(shopDomain)
	for _, shop := range file.AllowedShops {
		if shop == key {
			return true, nil
		}
	}
	return false, nil
}

// List returns the allowed shop domains in insertion order.
func (w *Whitelist) List() ([]string, error) {
	file, err := w.load()
	if err != nil {
		return nil, err
	}
	return file.AllowedShops, nil
}

// DefaultWhitelistPath returns the whitelist file path under the data
// directory.
func DefaultWhitelistPath(dataDir string) string {
	return filepath.Join(dataDir, "whitelist.json")
}
