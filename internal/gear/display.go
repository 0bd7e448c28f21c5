package gear

import "fmt"

const iconBaseURL = "https://wow.zamimg.com/images/wow/icons/large/"

// IconURL returns the icon image URL for an icon path.
func IconURL(icon string) string {
	return fmt.Sprintf("%s%s.jpg", iconBaseURL, icon)
}

// QualityColor returns the name color for a quality tier.
func QualityColor(q Quality) string {
	switch q {
	case Legendary:
		return "orange"
	case Epic:
		return "violet"
	case Rare:
		return "blue"
	default:
		return "white"
	}
}

// GemColor returns the display color of a socket.
func GemColor(c SocketColor) string {
	switch c {
	case Meta:
		return "grey"
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "yellow"
	}
}
