// Package store holds the daemon's read-only status view and fans updates
// out to stream subscribers.
package store

import (
	"time"

	"github.com/grovetools/tabpresence/pkg/presence"
)

// Tick is the record of one engine tick.
type Tick struct {
	ID       string            `json:"id"`
	At       time.Time         `json:"at"`
	Observed presence.Observed `json:"observed"`
	Decision presence.Decision `json:"decision"`
	// Applied is false when the sink call for Decision.Action failed.
	Applied bool `json:"applied"`
	// State is the presence state committed after the tick.
	State presence.State `json:"state"`
	Error string         `json:"error,omitempty"`
}

// State is everything the status API exposes.
type State struct {
	StartedAt time.Time     `json:"started_at"`
	Browser   string        `json:"browser"`
	SitesPath string        `json:"sites_path"`
	Interval  time.Duration `json:"interval"`
	Connected bool          `json:"connected"`
	Ticks     int           `json:"ticks"`
	Sends     int           `json:"sends"`
	Clears    int           `json:"clears"`
	Failures  int           `json:"failures"`
	LastTick  *Tick         `json:"last_tick,omitempty"`
	// ConfigChanged is the site config file modified on disk since start.
	// Changes apply on restart.
	ConfigChanged string `json:"config_changed,omitempty"`
}

// UpdateType defines what kind of data changed.
type UpdateType string

const (
	UpdateSnapshot      UpdateType = "snapshot"
	UpdateTick          UpdateType = "tick"
	UpdateConnection    UpdateType = "connection"
	UpdateConfigChanged UpdateType = "config_changed"
)

// Update represents a change to the state.
type Update struct {
	Type   UpdateType `json:"update_type"`
	Source string     `json:"source,omitempty"`
	Tick   *Tick      `json:"tick,omitempty"`
	// State is set for UpdateSnapshot, the first message of a stream.
	State *State `json:"state,omitempty"`
	// Connected is set for UpdateConnection.
	Connected bool `json:"connected,omitempty"`
	// ConfigFile is set for UpdateConfigChanged.
	ConfigFile string `json:"config_file,omitempty"`
	// ConfigError is set when the changed file no longer validates.
	ConfigError string `json:"config_error,omitempty"`
}
