package auth

import (
	"fmt"
	"strings"
)

// parseCredentials parses "left:right,left:right" lists. Entries are split
// on the first colon; blank entries are skipped.
func parseCredentials(kind, config, want string) (map[string]string, error) {
	trimmed := strings.TrimSpace(config)
	if trimmed == "" {
		return nil, fmt.Errorf("%s: config must not be empty", kind)
	}

	out := make(map[string]string)
	for _, entry := range strings.Split(trimmed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		left, right, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("%s: invalid entry format, expected %s", kind, want)
		}

		left = strings.TrimSpace(left)
		right = strings.TrimSpace(right)
		if left == "" || right == "" {
			return nil, fmt.Errorf("%s: both parts of %s must not be empty", kind, want)
		}

		out[left] = right
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no valid entries found", kind)
	}

	return out, nil
}
