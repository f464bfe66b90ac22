package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/pkg/paths"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultInterval is the poll period between ticks.
	DefaultInterval = 2 * time.Second
	// MinInterval is the shortest accepted poll period.
	MinInterval = 500 * time.Millisecond

	// DefaultCDPURL is where a Chrome started with --remote-debugging-port=9222 listens.
	DefaultCDPURL = "http://127.0.0.1:9222"
)

// Browser names a supported browser source.
type Browser string

const (
	BrowserSafari Browser = "safari"
	BrowserChrome Browser = "chrome"
	BrowserCDP    Browser = "cdp"
)

// Valid reports whether b names a supported browser source.
func (b Browser) Valid() bool {
	switch b {
	case BrowserSafari, BrowserChrome, BrowserCDP:
		return true
	}
	return false
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Settings holds daemon settings from tabpresence.yml. Every field is
// optional; zero values fall back to defaults.
type Settings struct {
	// ClientID is the Discord application id. DISCORD_CLIENT_ID wins over it.
	ClientID string `yaml:"client_id"`

	// Interval is the poll period as a Go duration string (e.g. "2s").
	Interval string `yaml:"interval"`

	// Browser selects the source: safari, chrome or cdp.
	Browser Browser `yaml:"browser"`

	// CDPURL is the DevTools endpoint used by the cdp browser source.
	CDPURL string `yaml:"cdp_url"`

	// Sites is the path to the site configuration file.
	Sites string `yaml:"sites"`

	// Socket is the status socket path.
	Socket string `yaml:"socket"`

	// LogEveryTick logs a record for every tick instead of only on changes.
	LogEveryTick *bool `yaml:"log_every_tick"`

	// Extensions holds any other top-level sections, such as "logging".
	Extensions map[string]interface{} `yaml:",inline"`
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.SetDefaults()
	return s
}

// SetDefaults fills unset fields.
func (s *Settings) SetDefaults() {
	if s.Interval == "" {
		s.Interval = DefaultInterval.String()
	}
	if s.Browser == "" {
		s.Browser = BrowserSafari
	}
	if s.CDPURL == "" {
		s.CDPURL = DefaultCDPURL
	}
	if s.Sites == "" {
		s.Sites = DefaultSitesFile
	}
	if s.Socket == "" {
		s.Socket = paths.SocketPath()
	}
	if s.LogEveryTick == nil {
		every := true
		s.LogEveryTick = &every
	}
}

// PollInterval parses Interval.
func (s *Settings) PollInterval() (time.Duration, error) {
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s.Interval, err)
	}
	if d < MinInterval {
		return 0, fmt.Errorf("interval %s is shorter than the minimum %s", d, MinInterval)
	}
	return d, nil
}

// Validate checks settings after defaults have been applied.
func (s *Settings) Validate() error {
	if _, err := s.PollInterval(); err != nil {
		return err
	}
	if !s.Browser.Valid() {
		return fmt.Errorf("unknown browser %q (expected safari, chrome or cdp)", s.Browser)
	}
	return nil
}

// LoadSettings reads settings from path. An empty path means the default
// location, which may be absent; an explicit path must exist.
func LoadSettings(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = paths.SettingsPath()
	}

	s := &Settings{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), s); err != nil {
				return nil, errors.ConfigInvalid(path, err)
			}
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return nil, errors.ConfigNotFound(path)
		default:
			return nil, errors.ConfigInvalid(path, err)
		}
	}

	s.SetDefaults()
	if err := s.Validate(); err != nil {
		return nil, errors.ConfigValidation(path, err.Error())
	}
	return s, nil
}

// UnmarshalExtension decodes a top-level section that Settings does not
// model itself (e.g. "logging") into target, which must be a pointer.
// A missing section leaves target untouched.
func (s *Settings) UnmarshalExtension(key string, target interface{}) error {
	section, ok := s.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(section); err != nil {
		return fmt.Errorf("failed to decode '%s' settings: %w", key, err)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}
