package domain

import "strings"

// NormalizeDomain lowercases a shop name and completes it to a full
// *.myshopify.com domain when no dot is present. It is idempotent.
func NormalizeDomain(shop string) string {
	normalized := strings.ToLower(strings.TrimSpace(shop))
	if !strings.Contains(normalized, ".") {
		normalized += ".myshopify.com"
	}
	return normalized
}

// StoredToken is an OAuth access token persisted for a shop. One token per
// normalized shop domain; the latest write wins.
type StoredToken struct {
	AccessToken string   `json:"accessToken"`
	Scopes      []string `json:"scopes"`
	Shop        string   `json:"shop"`
}
