package usecase

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// ApproximateTime renders delta as "45 seconds", "2 minutes", "3 hours",
// "yesterday" or "4 days", with " ago" appended when ago is set.
func ApproximateTime(delta time.Duration, ago bool) string {
	if delta < 0 {
		delta = 0
	}
	postfix := ""
	if ago {
		postfix = " ago"
	}

	days := int64(delta / day)
	switch {
	case days == 1:
		return "yesterday"
	case days > 1:
		return fmt.Sprintf("%d days%s", days, postfix)
	}

	var (
		value float64
		unit  string
	)
	sec := delta.Seconds()
	switch {
	case sec < 60:
		value, unit = math.Round(sec), "second"
	case sec < 3600:
		value, unit = math.Round(sec/60), "minute"
	default:
		value, unit = math.Round(sec/3600), "hour"
	}
	if value != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%.0f %s%s", value, unit, postfix)
}
