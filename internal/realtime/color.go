package realtime

import "fmt"

// ColorFor derives a deterministic HSL color from a user identifier.
// The same userID always yields the same color, within and across sessions.
func ColorFor(userID string) string {
	var hash int32
	for _, ch := range userID {
		hash = int32(ch) + ((hash << 5) - hash)
	}

	h := int64(hash)
	if h < 0 {
		h = -h
	}

	hue := h % 360
	saturation := 70 + h%20
	lightness := 55 + h%15

	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", hue, saturation, lightness)
}
