package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolvePath applies the mandatory path-safety check: normalize the
// requested path, resolve it against the project root, reject anything
// that escapes the root, and reject resolved paths whose components
// intersect the denylist. Every filesystem operation must go through this
// check; none may bypass it.
func (s *Sandbox) resolvePath(requested string) (string, error) {
	cleaned := filepath.Clean(requested)
	resolved := filepath.Join(s.root, cleaned)

	// Join cleans again, so a crafted "../.." cannot survive; the prefix
	// check is the authoritative containment test.
	if resolved != s.root && !strings.HasPrefix(resolved, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s resolves outside project root", requested)
	}

	relative, err := filepath.Rel(s.root, resolved)
	if err != nil {
		return "", fmt.Errorf("path traversal detected: %s", requested)
	}
	for _, component := range strings.Split(relative, string(filepath.Separator)) {
		for _, denied := range s.policy.DeniedPathComponents {
			if component == denied {
				return "", fmt.Errorf("forbidden path: access to %s is not permitted", denied)
			}
		}
	}

	return resolved, nil
}
