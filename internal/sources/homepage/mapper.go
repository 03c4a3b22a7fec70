package homepage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
)

// Mapper converts Homepage services to link records
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapServices converts Homepage ServicesConfig into link records. The
// Homepage group becomes the link group, the service name its name.
func (m *Mapper) MapServices(config ServicesConfig) ([]domain.RawLink, error) {
	var links []domain.RawLink

	for _, groupMap := range config {
		for _, groupName := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[groupName] {
				for _, serviceName := range sortedKeys(serviceMap) {
					props := serviceMap[serviceName]

					// Skip services without a usable href
					if !hasHost(props.Href) {
						continue
					}

					links = append(links, domain.RawLink{
						"id":          generateLinkID(props.Href),
						"name":        serviceName,
						"url":         props.Href,
						"group":       groupName,
						"description": props.Description,
					})
				}
			}
		}
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("no valid services found in homepage config")
	}

	return links, nil
}

func hasHost(href string) bool {
	if href == "" {
		return false
	}
	parsedURL, err := url.Parse(href)
	if err != nil {
		return false
	}
	return parsedURL.Hostname() != ""
}

// generateLinkID creates a stable ID from a URL using SHA-256 hash
// This ensures that importing the same file twice yields the same IDs
func generateLinkID(href string) string {
	hash := sha256.Sum256([]byte(href))
	// Take first 16 characters of hex encoding (sufficient for uniqueness)
	return hex.EncodeToString(hash[:])[:16]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
