// Package auth handles OAuth token exchange and the flat-file stores for
// access tokens and the shop whitelist.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spinup/internal/domain"
	"spinup/internal/fsutil"
)

type tokenFile struct {
	Tokens map[string]domain.StoredToken `json:"tokens"`
}

// TokenStore persists access tokens in a single JSON file keyed by
// normalized shop domain.
type TokenStore struct {
	path string
}

// NewTokenStore creates a token store backed by the given file path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

func (s *TokenStore) load() (tokenFile, error) {
	file := tokenFile{Tokens: make(map[string]domain.StoredToken)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("failed to read token file: %w", err)
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to decode token file: %w", err)
	}
	if file.Tokens == nil {
		file.Tokens = make(map[string]domain.StoredToken)
	}
	return file, nil
}

func (s *TokenStore) save(file tokenFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Save stores a token under the shop's normalized domain, replacing any
// previous token for that shop.
func (s *TokenStore) Save(shopDomain string, token domain.StoredToken) error {
	file, err := s.load()
	if err != nil {
		return err
	}
	key := domain.NormalizeDomain(shopDomain)
	token.Shop = key
	file.Tokens[key] = token
	return s.save(file)
}

// Get returns the token stored for the shop, or false when none exists.
func (s *TokenStore) Get(shopDomain string) (domain.StoredToken, bool, error) {
	file, err := s.load()
	if err != nil {
		return domain.StoredToken{}, false, err
	}
	token, ok := file.Tokens[domain.NormalizeDomain(shopDomain)]
	return token, ok, nil
}

// Remove deletes the shop's token. Removing a missing token is not an error.
func (s *TokenStore) Remove(shopDomain string) error {
	file, err := s.load()
	if err != nil {
		return err
	}
	delete(file.Tokens, domain.NormalizeDomain(shopDomain))
	return s.save(file)
}

// ListShops returns the normalized shop domains with a stored token.
func (s *TokenStore) ListShops() ([]string, error) {
	file, err := s.load()
	if err != nil {
		return nil, err
	}
	shops := make([]string, 0, len(file.Tokens))
	for shop := range file.Tokens {
		shops = append(shops, shop)
	}
	return shops, nil
}

// DefaultTokenPath returns the token file path under the data directory.
func DefaultTokenPath(dataDir string) string {
	return filepath.Join(dataDir, "tokens.json")
}
