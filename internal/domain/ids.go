package domain

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a locally generated identifier (uuid v4, 36 chars, hyphenated)
func NewID() string {
	return uuid.NewString()
}

var localIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsLocalID reports whether id has the shape of a locally generated identifier.
// Any other shape belongs to the external ATS. This predicate is the only place
// that decides which backend owns an application id.
func IsLocalID(id string) bool {
	if len(id) != 36 || !localIDPattern.MatchString(id) {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

var profilePathPattern = regexp.MustCompile(`linkedin\.com/in/([^/?#]+)`)

// NormalizeHandle reduces a profile handle or profile URL to its canonical key
func NormalizeHandle(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "/") {
		if h := HandleFromURL(s); h != "" {
			s = h
		}
	}

	s = strings.TrimRight(s, "/")
	s = strings.TrimPrefix(s, "@")
	return strings.ToLower(s)
}

// HandleFromURL extracts the handle from a LinkedIn profile URL
func HandleFromURL(profileURL string) string {
	raw := strings.TrimSpace(profileURL)
	if raw == "" {
		return ""
	}

	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
		if len(parts) >= 2 && parts[0] == "in" {
			return parts[1]
		}
	}

	if m := profilePathPattern.FindStringSubmatch(raw); len(m) == 2 {
		return m[1]
	}
	return ""
}
