package presence

import (
	"fmt"

	"github.com/grovetools/tabpresence/pkg/sites"
)

// OpenPageLabel is the label of the single link attached to every payload.
const OpenPageLabel = "Open page"

// Button is an actionable link shown with the activity.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Payload is the status update pushed to the presence sink.
type Payload struct {
	Kind       sites.ActivityKind `json:"type"`
	Details    string             `json:"details"`
	State      string             `json:"state"`
	LargeImage string             `json:"large_image"`
	LargeText  string             `json:"large_text"`
	Buttons    []Button           `json:"buttons"`
	// Instance is always false: the activity is not joinable.
	Instance bool `json:"instance"`
}

// NewPayload builds a payload for a page and validates it.
func NewPayload(kind sites.ActivityKind, verb sites.Verb, title, icon, iconLabel, pageURL string) (Payload, error) {
	p := Payload{
		Kind:       kind,
		Details:    string(verb),
		State:      title,
		LargeImage: icon,
		LargeText:  iconLabel,
		Buttons:    []Button{{Label: OpenPageLabel, URL: pageURL}},
		Instance:   false,
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Validate checks the payload invariants.
func (p Payload) Validate() error {
	switch {
	case !p.Kind.Valid():
		return fmt.Errorf("unknown activity kind %d", p.Kind)
	case p.Details == "":
		return fmt.Errorf("payload details must not be empty")
	case p.State == "":
		return fmt.Errorf("payload state must not be empty")
	case p.LargeImage == "":
		return fmt.Errorf("payload image must not be empty")
	case p.LargeText == "":
		return fmt.Errorf("payload image label must not be empty")
	case len(p.Buttons) != 1:
		return fmt.Errorf("payload must carry exactly one button, got %d", len(p.Buttons))
	case p.Buttons[0].URL == "":
		return fmt.Errorf("payload button url must not be empty")
	case p.Instance:
		return fmt.Errorf("payload must not be an instanced activity")
	}
	return nil
}
