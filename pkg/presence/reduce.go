// Package presence decides, tick by tick, whether the presence shown by the
// sink must change. It is pure: callers pass the last committed State in and
// commit Decision.Next only once the chosen action has succeeded.
package presence

import (
	"github.com/grovetools/tabpresence/pkg/sites"
)

const (
	// MaxTitleLength is the maximum number of characters kept from a title.
	MaxTitleLength = 128
	// UntitledTitle replaces a missing title.
	UntitledTitle = "Untitled"
)

// Action is what the caller must do for the current tick.
type Action string

const (
	ActionNoOp  Action = "noop"
	ActionClear Action = "clear"
	ActionSend  Action = "send"
)

// Observed is the browser state read on one tick. Empty strings mean the
// value was absent.
type Observed struct {
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// Decision is the outcome of Reduce.
type Decision struct {
	Action Action `json:"action"`
	// Payload is set only for ActionSend.
	Payload *Payload `json:"payload,omitempty"`
	// Next is the state to commit once Action has been carried out.
	Next State `json:"next"`

	Key            Key                  `json:"key"`
	Classification sites.Classification `json:"classification"`
	Host           string               `json:"host,omitempty"`
	Icon           string               `json:"icon,omitempty"`
}

// NormalizeTitle defaults a missing title and truncates it to
// MaxTitleLength characters.
func NormalizeTitle(title string) string {
	if title == "" {
		return UntitledTitle
	}
	runes := []rune(title)
	if len(runes) > MaxTitleLength {
		return string(runes[:MaxTitleLength])
	}
	return title
}

// Reduce computes the action for obs given the last committed state.
func Reduce(obs Observed, last State, cfg *sites.Config) Decision {
	if obs.URL == "" {
		if last.IsCleared() {
			return Decision{Action: ActionNoOp, Next: last}
		}
		return Decision{Action: ActionClear, Next: Cleared()}
	}

	host, hasHost := sites.Host(obs.URL)
	class := sites.Classify(obs.URL, cfg)
	icon := sites.IconFor(obs.URL, cfg)
	title := NormalizeTitle(obs.Title)

	key := Key{
		Verb:  class.Verb,
		Kind:  class.Kind,
		Title: title,
		URL:   obs.URL,
		Icon:  icon,
	}
	d := Decision{
		Key:            key,
		Classification: class,
		Host:           host,
		Icon:           icon,
	}

	if prev, ok := last.Key(); ok && prev == key {
		d.Action = ActionNoOp
		d.Next = last
		return d
	}

	label := host
	if !hasHost {
		label = string(class.Verb)
	}
	payload, err := NewPayload(class.Kind, class.Verb, title, icon, label, obs.URL)
	if err != nil {
		// Only reachable with empty icon values, which config loading rejects.
		d.Action = ActionNoOp
		d.Next = last
		return d
	}

	d.Action = ActionSend
	d.Payload = &payload
	d.Next = Sent(key)
	return d
}
