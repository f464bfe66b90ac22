package sites

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostMatches(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		pattern string
		want    bool
	}{
		{"exact match", "example.com", "example.com", true},
		{"exact mismatch", "www.example.com", "example.com", false},
		{"wildcard matches base", "example.com", "*.example.com", true},
		{"wildcard matches subdomain", "www.example.com", "*.example.com", true},
		{"wildcard matches deep subdomain", "a.b.example.com", "*.example.com", true},
		{"wildcard rejects label prefix", "fooexample.com", "*.example.com", false},
		{"wildcard rejects other domain", "example.org", "*.example.com", false},
		{"case insensitive host", "WWW.YouTube.COM", "*.youtube.com", true},
		{"case insensitive pattern", "music.youtube.com", "*.YOUTUBE.com", true},
		{"no substring matching", "notyoutube.com", "youtube.com", false},
		{"star without dot is literal", "example.com", "*example.com", false},
		{"empty host", "", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HostMatches(tt.host, tt.pattern))
		})
	}
}

func TestHostMatchesWildcardProperty(t *testing.T) {
	hosts := []string{"b.com", "a.b.com", "A.B.COM", "ab.com", "b.com.evil", "x.y.b.com", "com"}
	bases := []string{"b.com", "B.com", "y.b.com"}

	for _, h := range hosts {
		for _, b := range bases {
			lh, lb := strings.ToLower(h), strings.ToLower(b)
			want := lh == lb || strings.HasSuffix(lh, "."+lb)
			assert.Equal(t, want, HostMatches(h, "*."+b), "host=%s base=%s", h, b)
			assert.Equal(t, HostMatches(lh, "*."+b), HostMatches(strings.ToUpper(h), "*."+b))
		}
	}
}
