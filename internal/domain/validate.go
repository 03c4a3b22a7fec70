package domain

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	schemeRe    = regexp.MustCompile(`(?i)^https?://`)
	anySchemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)
)

// NormalizeURL trims raw and prefixes https:// unless it already carries an
// http or https scheme. Empty input stays empty.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if schemeRe.MatchString(trimmed) {
		return trimmed
	}
	return "https://" + trimmed
}

// Validate returns a *ValidationError for the first violated rule, checked in
// order: name, group, url, url scheme. It is only called on user-authored
// edits; loading never validates.
func Validate(l Link) error {
	if strings.TrimSpace(l.Name) == "" {
		return &ValidationError{Message: "Name is required."}
	}
	if strings.TrimSpace(l.Group) == "" {
		return &ValidationError{Message: "Group is required."}
	}
	if strings.TrimSpace(l.URL) == "" {
		return &ValidationError{Message: "URL is required."}
	}
	if !isHTTPURL(NormalizeURL(l.URL)) || hasForeignScheme(l.URL) {
		return &ValidationError{Message: "URL must be http/https."}
	}
	return nil
}

// hasForeignScheme catches explicit non-web schemes such as ftp://, which
// NormalizeURL would otherwise turn into a parsable https URL.
func hasForeignScheme(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return anySchemeRe.MatchString(trimmed) && !schemeRe.MatchString(trimmed)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Hostname() != ""
}

// CanEdit is the single permission rule for every mutating operation:
// administrators may edit anything, everyone else only their own personal
// links.
func CanEdit(l Link, currentUser string, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	return l.Layer == LayerPersonal && currentUser != "" && l.Owner == currentUser
}

// MarkAdminEdited appends AdminEditedTag to description unless it is
// already present.
func MarkAdminEdited(description string) string {
	if strings.Contains(description, AdminEditedTag) {
		return description
	}
	if description == "" {
		return AdminEditedTag
	}
	return description + " " + AdminEditedTag
}
