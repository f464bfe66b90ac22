package discord

import (
	"strings"

	"github.com/grovetools/tabpresence/pkg/presence"
)

// maxButtonURL is the longest button URL Discord accepts.
const maxButtonURL = 512

// Activity is the SET_ACTIVITY wire shape.
type Activity struct {
	Type     int      `json:"type"`
	Details  string   `json:"details,omitempty"`
	State    string   `json:"state,omitempty"`
	Assets   *Assets  `json:"assets,omitempty"`
	Buttons  []Button `json:"buttons,omitempty"`
	Instance bool     `json:"instance"`
}

// Assets holds the image keys and hover texts.
type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
}

// Button is a link rendered under the activity.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// FromPayload maps a presence payload onto the wire activity. Buttons that
// Discord would reject (non-http URLs, oversized URLs) are dropped so the
// rest of the activity still goes through.
func FromPayload(p presence.Payload) Activity {
	a := Activity{
		Type:     int(p.Kind),
		Details:  p.Details,
		State:    p.State,
		Instance: p.Instance,
	}
	if p.LargeImage != "" || p.LargeText != "" {
		a.Assets = &Assets{LargeImage: p.LargeImage, LargeText: p.LargeText}
	}
	for _, b := range p.Buttons {
		if !buttonURLAllowed(b.URL) {
			continue
		}
		a.Buttons = append(a.Buttons, Button{Label: b.Label, URL: b.URL})
	}
	return a
}

func buttonURLAllowed(u string) bool {
	if len(u) > maxButtonURL {
		return false
	}
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}
