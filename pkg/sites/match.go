package sites

import "strings"

// HostMatches reports whether host matches pattern.
//
// "*.base" matches "base" itself and any host ending in ".base"; any other
// pattern must equal the host exactly. Both sides are compared lower-cased.
func HostMatches(host, pattern string) bool {
	h := strings.ToLower(host)
	p := strings.ToLower(pattern)

	if base, ok := strings.CutPrefix(p, "*."); ok {
		return h == base || strings.HasSuffix(h, "."+base)
	}
	return h == p
}

// matchesAny returns the first pattern in patterns that host matches.
func matchesAny(host string, patterns []string) (string, bool) {
	for _, p := range patterns {
		if HostMatches(host, p) {
			return p, true
		}
	}
	return "", false
}
