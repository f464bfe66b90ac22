package theme

import "os"

// Nerd Font icons
const (
	nerdIconSuccess = "\U000F012C" // md-check (U+F012C)
	nerdIconError   = "\uEA87" // cod-error (U+EA87)
	nerdIconWarning = "\uF071" // fa-warning (U+F071)
	nerdIconInfo    = "\U000F02FC" // md-information (U+F02FC)
	nerdIconVideo   = "\U000F0567" // md-video (U+F0567)
	nerdIconBrowse  = "\U000F059F" // md-web (U+F059F)
	nerdIconCleared = "\U000F073A" // md-cancel (U+F073A)
	nerdIconArrow   = "\U000F0054" // md-arrow_right (U+F0054)
)

// ASCII fallback icons
const (
	asciiIconSuccess = "✓"
	asciiIconError   = "✗"
	asciiIconWarning = "!"
	asciiIconInfo    = "i"
	asciiIconVideo   = "▶"
	asciiIconBrowse  = "◎"
	asciiIconCleared = "-"
	asciiIconArrow   = "→"
)

var (
	IconSuccess string
	IconError   string
	IconWarning string
	IconInfo    string
	IconVideo   string
	IconBrowse  string
	IconCleared string
	IconArrow   string
)

// init picks Nerd Font icons unless TABPRESENCE_ICONS=ascii.
func init() {
	if os.Getenv("TABPRESENCE_ICONS") == "ascii" {
		IconSuccess = asciiIconSuccess
		IconError = asciiIconError
		IconWarning = asciiIconWarning
		IconInfo = asciiIconInfo
		IconVideo = asciiIconVideo
		IconBrowse = asciiIconBrowse
		IconCleared = asciiIconCleared
		IconArrow = asciiIconArrow
		return
	}
	IconSuccess = nerdIconSuccess
	IconError = nerdIconError
	IconWarning = nerdIconWarning
	IconInfo = nerdIconInfo
	IconVideo = nerdIconVideo
	IconBrowse = nerdIconBrowse
	IconCleared = nerdIconCleared
	IconArrow = nerdIconArrow
}
