package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleTable(t *testing.T) {
	out := SimpleTable([]string{"HOST", "ICON"}, [][]string{{"github.com", "github"}, {"example.org", "globe"}})
	for _, want := range []string{"HOST", "ICON", "github.com", "github", "example.org", "globe"} {
		assert.Contains(t, out, want)
	}
}

func TestKeyValue(t *testing.T) {
	out := KeyValue([][2]string{{"Browser", "safari"}, {"Connected", "yes"}})
	assert.Contains(t, out, "Browser")
	assert.Contains(t, out, "safari")
	assert.Contains(t, out, "Connected")
}
