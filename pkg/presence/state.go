package presence

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/tabpresence/pkg/sites"
)

// Key is the tuple of visible payload fields used to detect that nothing
// changed between ticks. Keys are compared with ==.
type Key struct {
	Verb  sites.Verb         `json:"verb"`
	Kind  sites.ActivityKind `json:"kind"`
	Title string             `json:"title"`
	URL   string             `json:"url"`
	Icon  string             `json:"icon"`
}

type stateKind uint8

const (
	stateUnset stateKind = iota
	stateCleared
	stateSent
)

// State is the last presence successfully pushed to the sink. The zero
// value is Unset, which differs from every Sent key and from Cleared.
type State struct {
	kind stateKind
	key  Key
}

// Unset returns the initial state.
func Unset() State { return State{} }

// Cleared returns the state recorded after the presence was cleared.
func Cleared() State { return State{kind: stateCleared} }

// Sent returns the state recorded after key was pushed.
func Sent(key Key) State { return State{kind: stateSent, key: key} }

// IsUnset reports whether nothing has been pushed yet.
func (s State) IsUnset() bool { return s.kind == stateUnset }

// IsCleared reports whether the presence is known to be cleared.
func (s State) IsCleared() bool { return s.kind == stateCleared }

// Key returns the last sent key, if any.
func (s State) Key() (Key, bool) {
	return s.key, s.kind == stateSent
}

// String implements fmt.Stringer.
func (s State) String() string {
	switch s.kind {
	case stateCleared:
		return "cleared"
	case stateSent:
		return fmt.Sprintf("sent(%s|%d|%s|%s|%s)", s.key.Verb, s.key.Kind, s.key.Title, s.key.URL, s.key.Icon)
	default:
		return "unset"
	}
}

type stateJSON struct {
	State string `json:"state"`
	Key   *Key   `json:"key,omitempty"`
}

// MarshalJSON renders the state for status output.
func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{State: "unset"}
	switch s.kind {
	case stateCleared:
		out.State = "cleared"
	case stateSent:
		out.State = "sent"
		k := s.key
		out.Key = &k
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the status output form back into a State.
func (s *State) UnmarshalJSON(data []byte) error {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.State {
	case "cleared":
		*s = Cleared()
	case "sent":
		if in.Key == nil {
			return fmt.Errorf("sent state without key")
		}
		*s = Sent(*in.Key)
	case "unset", "":
		*s = Unset()
	default:
		return fmt.Errorf("unknown presence state %q", in.State)
	}
	return nil
}
