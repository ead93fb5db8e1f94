package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

// GenerateKey derives a stable ledger key from a download URL. Host case,
// default ports, redundant path segments and fragments do not change the key.
func GenerateKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		sum := sha256.Sum256([]byte(rawURL))
		return hex.EncodeToString(sum[:])
	}

	u.Host = strings.ToLower(u.Host)
	if p := u.Port(); (u.Scheme == "http" && p == "80") || (u.Scheme == "https" && p == "443") {
		u.Host = u.Hostname()
	}
	if u.Path != "" {
		u.Path = path.Clean(u.Path)
	}
	u.Fragment = ""

	sum := sha256.Sum256([]byte(u.String()))
	return hex.EncodeToString(sum[:])
}
