package effort

import (
	"fmt"
	"math"
	"strconv"
)

// MinHours is shown for any effort that exists, even one with no time.
const MinHours = 0.25

// Hours holds a quarter-hour rounded value next to the exact one.
type Hours struct {
	Quantized float64
	Exact     float64
}

// SecondsToHours rounds to the nearest quarter hour with a floor of MinHours.
func SecondsToHours(seconds int64) Hours {
	exact := float64(seconds) / 3600
	q := math.Round(exact*4) / 4
	if q < MinHours {
		q = MinHours
	}
	return Hours{Quantized: q, Exact: exact}
}

// String renders "1.5 (1.50)".
func (h Hours) String() string {
	return fmt.Sprintf("%s (%.2f)", FormatHours(h.Quantized), h.Exact)
}

// FormatHours prints whole values with one decimal ("2.0") and keeps
// quarters as they are ("1.25").
func FormatHours(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
