package cache

import "strings"

// JoinKey builds a namespaced key, e.g. JoinKey("stockpull", "calendar", "2024-03-SSE").
// Empty parts are skipped.
func JoinKey(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, ":"); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}

// PrefixPattern matches every key under namespace.
func PrefixPattern(namespace string) string {
	return JoinKey(namespace, "*")
}
