package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SitesDocument is the on-disk shape of a site configuration file.
type SitesDocument struct {
	VideoHosts  []string `json:"videoHosts,omitempty" yaml:"videoHosts,omitempty" toml:"videoHosts,omitempty" jsonschema:"description=Host patterns shown as Watching"`
	BrowseHosts []string `json:"browseHosts,omitempty" yaml:"browseHosts,omitempty" toml:"browseHosts,omitempty" jsonschema:"description=Host patterns shown as Browsing"`
	Icons       IconMap  `json:"icons" yaml:"icons" toml:"-" jsonschema:"description=Host pattern to icon key; must define default"`
}

// GenerateSchema generates the JSON Schema for site configuration files.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown keys such as "$schema" are tolerated.
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		DoNotReference:            true,
		Anonymous:                 true,
		FieldNameTag:              "json",
	}

	schema := r.Reflect(&SitesDocument{})
	schema.Title = "tabpresence site configuration"
	schema.Description = "Host lists and icon mapping used to classify the active browser tab."
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.Required = []string{"icons"}

	return json.MarshalIndent(schema, "", "  ")
}
