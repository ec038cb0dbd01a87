package domain

import "strings"

// Platform is a named custody location: an exchange, a wallet, cold storage.
// Names are stored uppercase and are unique.
type Platform struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NormalizePlatformName returns the canonical uppercase form of a platform name.
func NormalizePlatformName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
