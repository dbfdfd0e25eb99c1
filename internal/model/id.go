package model

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowedID  = regexp.MustCompile(`[^\w.-]`)
)

// NormalizeID turns user input into a profile id: trimmed, lowercased,
// whitespace runs replaced with "-", and anything outside [A-Za-z0-9_.-]
// removed. Normalizing a normalized id returns it unchanged.
func NormalizeID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = whitespaceRun.ReplaceAllString(id, "-")
	return disallowedID.ReplaceAllString(id, "")
}

// ResolveID returns the normalized id for a candidate profile. An empty id is
// derived from the name, as the profile editor does for new profiles.
func ResolveID(id, name string) string {
	if strings.TrimSpace(id) == "" {
		return NormalizeID(name)
	}
	return NormalizeID(id)
}
