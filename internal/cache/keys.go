package cache

import (
	"fmt"
	"strings"
)

// KeySeparator joins key parts.
const KeySeparator = "::"

// Key builds a namespace-local key from its parts in order.
func Key(parts ...any) string {
	s := make([]string, 0, len(parts))
	for _, p := range parts {
		s = append(s, fmt.Sprint(p))
	}
	return strings.Join(s, KeySeparator)
}
