package broadcast

import (
	"strings"
	"time"
)

// Time-of-day labels used in prompts and attachment names.
const (
	Morning   = "Morning"
	Noon      = "Noon"
	Afternoon = "Afternoon"
	Evening   = "Evening"
	Night     = "Night"
)

// ResolveTimeOfDay returns the explicit label when given, otherwise derives
// one from now's hour in loc. Hour bands: [5,11) Morning, [11,15) Noon,
// [15,18) Afternoon, [18,21) Evening, everything else Night.
func ResolveTimeOfDay(explicit string, now time.Time, loc *time.Location) string {
	if explicit != "" {
		return normalizeLabel(explicit)
	}

	hour := now.In(loc).Hour()
	switch {
	case hour >= 5 && hour < 11:
		return Morning
	case hour >= 11 && hour < 15:
		return Noon
	case hour >= 15 && hour < 18:
		return Afternoon
	case hour >= 18 && hour < 21:
		return Evening
	default:
		return Night
	}
}

func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
}

// AttachmentName maps a time-of-day label to its asset file name,
// e.g. "good-morning.png".
func AttachmentName(timeOfDay string) string {
	return "good-" + strings.ToLower(timeOfDay) + ".png"
}
