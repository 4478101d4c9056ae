package auth

import "strings"

// ScopeAll grants every scope
const ScopeAll = "*"

// ScopesForRole returns a copy of the scopes granted to role
func ScopesForRole(role string) []string {
	scopes := DomainScopeGroups[strings.ToLower(role)]
	out := make([]string, len(scopes))
	copy(out, scopes)
	return out
}

// HasScope reports whether granted covers required. "candidates:*" covers
// every "candidates:" scope and "*" covers everything.
func HasScope(granted []string, required string) bool {
	for _, s := range granted {
		if s == ScopeAll || s == required {
			return true
		}
		if prefix, ok := strings.CutSuffix(s, ":*"); ok && strings.HasPrefix(required, prefix+":") {
			return true
		}
	}
	return false
}
