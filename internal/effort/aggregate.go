package effort

import (
	"sort"
	"time"

	"toggl-efforts/internal/domain"
)

// Efforts is ordered by the start of each effort's newest entry, most
// recent first.
type Efforts []*Effort

// Get returns the effort for description, or nil.
func (es Efforts) Get(description string) *Effort {
	for _, e := range es {
		if e.Description == description {
			return e
		}
	}
	return nil
}

// Seconds sums the accumulated seconds of all efforts.
func (es Efforts) Seconds() int64 {
	var total int64
	for _, e := range es {
		total += e.Seconds
	}
	return total
}

// QuantizedHours sums each effort's quantized hours. It is not the
// quantized sum of exact hours.
func (es Efforts) QuantizedHours() float64 {
	var total float64
	for _, e := range es {
		total += e.Hours().Quantized
	}
	return total
}

// Aggregate filters entries to those overlapping w and groups them by
// description.
func Aggregate(entries []domain.TimeEntry, w domain.Window, now time.Time) Efforts {
	byDesc := make(map[string]*Effort)
	out := make(Efforts, 0)
	for _, entry := range entries {
		if !Overlaps(entry, w, now) {
			continue
		}
		e, ok := byDesc[entry.Description]
		if !ok {
			e = New(entry.Description, w)
			byDesc[entry.Description] = e
			out = append(out, e)
		}
		// Descriptions match by construction.
		_ = e.Add(entry, now)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Newest().Start.After(out[j].Newest().Start)
	})
	return out
}
