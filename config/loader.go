package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/pkg/sites"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultSitesFile is the site configuration looked up in the working
// directory when no path is configured.
const DefaultSitesFile = "sites.json"

// Format is a site configuration file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from the file extension. Unknown
// extensions are read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// LoadSites reads, validates and decodes a site configuration file.
// Every failure is fatal for the caller: a missing file, a parse error, or a
// document that does not satisfy the schema (including a missing
// icons.default).
func LoadSites(path string) (*sites.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.ConfigInvalid(path, err)
	}
	return ParseSites(path, FormatFromPath(path), data)
}

// ParseSites validates and decodes site configuration bytes. path is only
// used in error messages.
func ParseSites(path string, format Format, data []byte) (*sites.Config, error) {
	raw, err := decodeRaw(format, data)
	if err != nil {
		return nil, errors.ConfigInvalid(path, err)
	}

	validator, err := SitesValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build site config schema")
	}
	if err := validator.Validate(raw); err != nil {
		return nil, errors.ConfigValidation(path, err.Error())
	}

	doc, err := decodeDocument(format, data)
	if err != nil {
		return nil, errors.ConfigInvalid(path, err)
	}
	return doc.toSites(path)
}

func decodeRaw(format Format, data []byte) (interface{}, error) {
	var raw interface{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		raw = m
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func decodeDocument(format Format, data []byte) (*SitesDocument, error) {
	var doc SitesDocument
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatTOML:
		var flat struct {
			VideoHosts  []string          `toml:"videoHosts"`
			BrowseHosts []string          `toml:"browseHosts"`
			Icons       map[string]string `toml:"icons"`
		}
		if err := toml.Unmarshal(data, &flat); err != nil {
			return nil, err
		}
		order, err := tomlIconOrder(data)
		if err != nil {
			return nil, err
		}
		doc.VideoHosts = flat.VideoHosts
		doc.BrowseHosts = flat.BrowseHosts
		for _, key := range order {
			if icon, ok := flat.Icons[key]; ok {
				doc.Icons.set(key, icon)
			}
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

func (d *SitesDocument) toSites(path string) (*sites.Config, error) {
	def, ok := d.Icons.Lookup(sites.DefaultIconKey)
	if !ok || def == "" {
		return nil, errors.ConfigValidation(path, "icons.default must be defined")
	}

	cfg := &sites.Config{
		VideoHosts:  nonEmpty(d.VideoHosts),
		BrowseHosts: nonEmpty(d.BrowseHosts),
		DefaultIcon: def,
	}
	for _, r := range d.Icons {
		if r.Pattern == sites.DefaultIconKey {
			continue
		}
		if r.Icon == "" {
			return nil, errors.ConfigValidation(path, fmt.Sprintf("icons[%q] must not be empty", r.Pattern))
		}
		cfg.Icons = append(cfg.Icons, r)
	}
	return cfg, nil
}

// nonEmpty drops blank patterns, which could only ever match a blank host.
func nonEmpty(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
