package sites

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Verb is the human-readable activity label.
type Verb string

const (
	Watching Verb = "Watching"
	Browsing Verb = "Browsing"
)

// ActivityKind is the presence activity type. Values are the integer codes
// the presence service expects.
type ActivityKind int

const (
	ActivityGeneric ActivityKind = 0
	ActivityVideo   ActivityKind = 3
)

// String returns a short name for the kind.
func (k ActivityKind) String() string {
	switch k {
	case ActivityVideo:
		return "video"
	case ActivityGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known activity kind.
func (k ActivityKind) Valid() bool {
	return k == ActivityVideo || k == ActivityGeneric
}

// Category records which host list produced a classification. It is only
// used for diagnostics.
type Category string

const (
	CategoryVideo    Category = "video"
	CategoryBrowse   Category = "browse"
	CategoryFallback Category = "fallback"
)

// Classification is the result of classifying a URL.
type Classification struct {
	Verb     Verb         `json:"verb"`
	Kind     ActivityKind `json:"kind"`
	Category Category     `json:"category"`
}

var (
	videoClassification    = Classification{Verb: Watching, Kind: ActivityVideo, Category: CategoryVideo}
	browseClassification   = Classification{Verb: Browsing, Kind: ActivityGeneric, Category: CategoryBrowse}
	fallbackClassification = Classification{Verb: Browsing, Kind: ActivityGeneric, Category: CategoryFallback}
)

// Host extracts the lower-cased hostname of an absolute URL. Non-ASCII
// hostnames are converted to their punycode form. It returns false when
// rawURL is not an absolute URL with a hostname.
func Host(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	return host, true
}

// Classify maps a URL to a verb, activity kind, and category. It never
// fails: URLs without a usable host fall through to the fallback category.
func Classify(rawURL string, cfg *Config) Classification {
	host, ok := Host(rawURL)
	if !ok {
		return fallbackClassification
	}
	return ClassifyHost(host, cfg)
}

// ClassifyHost classifies an already extracted hostname.
func ClassifyHost(host string, cfg *Config) Classification {
	if _, ok := matchesAny(host, cfg.VideoHosts); ok {
		return videoClassification
	}
	if _, ok := matchesAny(host, cfg.BrowseHosts); ok {
		return browseClassification
	}
	return fallbackClassification
}

// IconFor resolves the icon for a URL. The first rule in definition order
// whose pattern matches the host wins; otherwise the default icon is used.
func IconFor(rawURL string, cfg *Config) string {
	host, ok := Host(rawURL)
	if !ok {
		return cfg.DefaultIcon
	}
	return IconForHost(host, cfg)
}

// IconForHost resolves the icon for an already extracted hostname.
func IconForHost(host string, cfg *Config) string {
	for _, rule := range cfg.Icons {
		if rule.Pattern == DefaultIconKey {
			continue
		}
		if HostMatches(host, rule.Pattern) {
			return rule.Icon
		}
	}
	return cfg.DefaultIcon
}
