package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/grovetools/tabpresence/pkg/sites"
	"github.com/invopop/jsonschema"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

// IconMap is the "icons" object of a site config, kept in file order.
// Order matters: the first matching pattern wins.
type IconMap []sites.IconRule

// set appends a rule or, for a repeated key, replaces the icon in place.
func (m *IconMap) set(pattern, icon string) {
	for i := range *m {
		if (*m)[i].Pattern == pattern {
			(*m)[i].Icon = icon
			return
		}
	}
	*m = append(*m, sites.IconRule{Pattern: pattern, Icon: icon})
}

// Lookup returns the icon for an exact key.
func (m IconMap) Lookup(pattern string) (string, bool) {
	for _, r := range m {
		if r.Pattern == pattern {
			return r.Icon, true
		}
	}
	return "", false
}

// UnmarshalJSON decodes a JSON object while preserving key order.
func (m *IconMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("icons must be an object")
	}

	var out IconMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("icons: unexpected key %v", tok)
		}
		var icon string
		if err := dec.Decode(&icon); err != nil {
			return fmt.Errorf("icons.%s: %w", key, err)
		}
		out.set(key, icon)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}

// MarshalJSON encodes the rules back into an ordered JSON object.
func (m IconMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(r.Pattern)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Icon)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping node while preserving key order.
func (m *IconMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: icons must be a mapping", node.Line)
	}

	var out IconMap
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var icon string
		if err := valueNode.Decode(&icon); err != nil {
			return fmt.Errorf("icons.%s: %w", keyNode.Value, err)
		}
		out.set(keyNode.Value, icon)
	}

	*m = out
	return nil
}

// JSONSchema describes IconMap as an object of strings with a required
// "default" key.
func (IconMap) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set(sites.DefaultIconKey, &jsonschema.Schema{
		Type:        "string",
		Description: "Icon used when no host pattern matches",
	})
	return &jsonschema.Schema{
		Type:                 "object",
		Description:          "Host pattern to icon key. The first matching entry in file order wins.",
		Properties:           props,
		AdditionalProperties: &jsonschema.Schema{Type: "string"},
		Required:             []string{sites.DefaultIconKey},
	}
}

// tomlIconOrder returns the keys of the icons table in file order. It
// handles [icons] tables, dotted icons.* keys and inline icons = {...}.
func tomlIconOrder(data []byte) ([]string, error) {
	p := unstable.Parser{}
	p.Reset(data)

	var table []string
	var order []string
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = keyParts(e.Key())
		case unstable.KeyValue:
			parts := append(append([]string{}, table...), keyParts(e.Key())...)
			switch {
			case len(parts) == 2 && parts[0] == "icons":
				order = append(order, parts[1])
			case len(parts) == 1 && parts[0] == "icons" && e.Value().Kind == unstable.InlineTable:
				children := e.Value().Children()
				for children.Next() {
					kv := children.Node()
					if kv.Kind != unstable.KeyValue {
						continue
					}
					if k := keyParts(kv.Key()); len(k) == 1 {
						order = append(order, k[0])
					}
				}
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return order, nil
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}
