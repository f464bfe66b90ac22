// Package sites classifies browser URLs against a static host configuration.
//
// A host pattern is either an exact hostname ("example.com") or a wildcard
// ("*.example.com") that matches the base domain and every subdomain of it.
// Matching is case-insensitive and never uses regular expressions.
package sites

// DefaultIconKey is the icon mapping key used when no pattern matches.
const DefaultIconKey = "default"

// IconRule maps a host pattern to an icon identifier.
type IconRule struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Icon    string `json:"icon" yaml:"icon"`
}

// Config is the site classification configuration. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	VideoHosts  []string
	BrowseHosts []string
	// Icons holds the non-default icon rules in definition order.
	Icons []IconRule
	// DefaultIcon is the value of the "default" icon key.
	DefaultIcon string
}
