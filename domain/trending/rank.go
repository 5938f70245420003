package trending

import (
	"math"
	"sort"
)

// Metric is one current measurement for an entity, before diffing.
type Metric struct {
	ID       string
	Slug     string
	Name     string
	Value    int
	Metadata map[string]interface{}
}

// BuildItems diffs current metrics against the previous snapshot's values,
// ranks the result, and truncates to limit.
//
// A slug missing from previous defaults its previous_value to the current
// value, so a brand-new entity shows zero change rather than infinite
// growth. This cold-start rule is a compatibility contract with existing
// snapshot consumers; do not "fix" it.
func BuildItems(current []Metric, previous map[string]int, limit int) []Item {
	items := make([]Item, 0, len(current))
	for _, m := range current {
		prev, ok := previous[m.Slug]
		if !ok {
			prev = m.Value
		}
		change := m.Value - prev
		items = append(items, Item{
			ID:            m.ID,
			Slug:          m.Slug,
			Name:          m.Name,
			Change:        change,
			ChangePercent: ChangePercent(prev, m.Value),
			CurrentValue:  m.Value,
			PreviousValue: prev,
			Metadata:      m.Metadata,
		})
	}

	rank(items)

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// ChangePercent computes relative change in percent, rounded to two
// decimals. A zero previous value yields 100 when anything exists now and
// 0 otherwise, avoiding divide-by-zero and misleading percentages.
func ChangePercent(previous, current int) float64 {
	if previous > 0 {
		return round2(float64(current-previous) / float64(previous) * 100)
	}
	if current > 0 {
		return 100
	}
	return 0
}

// rank sorts by current_value descending with ascending-slug tie-break and
// assigns 1-based ranks. The tie-break keeps snapshots diffable: equal
// values always rank in the same order across runs.
func rank(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CurrentValue != items[j].CurrentValue {
			return items[i].CurrentValue > items[j].CurrentValue
		}
		return items[i].Slug < items[j].Slug
	})
	for i := range items {
		items[i].Rank = i + 1
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
