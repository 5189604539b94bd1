package usecase

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"toggl-efforts/internal/domain"
)

// FilterItems keeps the items whose title fuzzy-matches pattern, best
// match first. Equal scores keep their original order.
func FilterItems(pattern string, items []domain.Item) []domain.Item {
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	matches := fuzzy.Find(pattern, titles)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	out := make([]domain.Item, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}
