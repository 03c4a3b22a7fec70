// Package homepage imports links from a Homepage (gethomepage.dev)
// configuration: services.yaml or bookmarks.yaml.
package homepage

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/linkdash/internal/domain"
)

var templateVarRe = regexp.MustCompile(`\{\{[^}]+\}\}`)

// ParseServices parses the content of a services.yaml file
func ParseServices(data []byte) (ServicesConfig, error) {
	// Homepage template variables ({{HOMEPAGE_VAR_...}}) are resolved by
	// Homepage itself and mean nothing here.
	data = stripTemplateVariables(data)

	var config ServicesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse services yaml: %w", err)
	}

	return config, nil
}

// ParseBookmarks parses the content of a bookmarks.yaml file
func ParseBookmarks(data []byte) (BookmarksConfig, error) {
	data = stripTemplateVariables(data)

	var config BookmarksConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}

	return config, nil
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVarRe.ReplaceAll(data, []byte(`""`))
}

// LoadLinks reads a Homepage file of either kind and returns its entries as
// global link records, one group per Homepage category.
func LoadLinks(path string) ([]domain.RawLink, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}

	services, serr := ParseServices(data)
	if serr == nil {
		if links, err := NewMapper().MapServices(services); err == nil {
			return links, nil
		}
	}

	bookmarks, berr := ParseBookmarks(data)
	if berr != nil {
		return nil, errors.Join(serr, berr)
	}
	return NewBookmarkMapper().MapBookmarks(bookmarks)
}
