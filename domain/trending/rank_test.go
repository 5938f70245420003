package trending

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangePercent(t *testing.T) {
	tests := []struct {
		name     string
		previous int
		current  int
		want     float64
	}{
		{"growth from zero", 0, 5, 100},
		{"no change", 10, 10, 0},
		{"decline", 20, 15, -25},
		{"growth", 24, 27, 12.5},
		{"both zero", 0, 0, 0},
		{"rounded", 3, 4, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangePercent(tt.previous, tt.current))
		})
	}
}

func TestBuildItemsDiff(t *testing.T) {
	current := []Metric{
		{ID: "1", Slug: "apache", Name: "Apache", Value: 27},
		{ID: "2", Slug: "debian", Name: "Debian", Value: 15},
	}
	previous := map[string]int{"apache": 24, "debian": 20}

	items := BuildItems(current, previous, MaxItems)
	require.Len(t, items, 2)

	assert.Equal(t, "apache", items[0].Slug)
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, 3, items[0].Change)
	assert.Equal(t, 12.5, items[0].ChangePercent)
	assert.Equal(t, 27, items[0].CurrentValue)
	assert.Equal(t, 24, items[0].PreviousValue)

	assert.Equal(t, "debian", items[1].Slug)
	assert.Equal(t, 2, items[1].Rank)
	assert.Equal(t, -5, items[1].Change)
	assert.Equal(t, -25.0, items[1].ChangePercent)
}

// A slug absent from the previous snapshot defaults previous_value to the
// current value: new entities show zero change, not infinite growth.
func TestBuildItemsColdStart(t *testing.T) {
	current := []Metric{
		{Slug: "apache", Name: "Apache", Value: 27},
		{Slug: "gnome", Name: "GNOME", Value: 12},
	}

	items := BuildItems(current, map[string]int{}, MaxItems)
	require.Len(t, items, 2)

	for _, item := range items {
		assert.Equal(t, item.CurrentValue, item.PreviousValue, item.Slug)
		assert.Equal(t, 0, item.Change, item.Slug)
		assert.Equal(t, 0.0, item.ChangePercent, item.Slug)
	}
}

// Equal values rank by ascending slug, and re-ranking the same input is
// byte-for-byte identical — snapshots must stay diffable.
func TestRankDeterministicTieBreak(t *testing.T) {
	metrics := []Metric{
		{Slug: "zulip", Name: "Zulip", Value: 10},
		{Slug: "apache", Name: "Apache", Value: 10},
		{Slug: "mozilla", Name: "Mozilla", Value: 10},
	}

	first := BuildItems(metrics, map[string]int{}, MaxItems)
	second := BuildItems(metrics, map[string]int{}, MaxItems)

	require.Len(t, first, 3)
	assert.Equal(t, []string{"apache", "mozilla", "zulip"},
		[]string{first[0].Slug, first[1].Slug, first[2].Slug})
	for i := range first {
		assert.Equal(t, i+1, first[i].Rank)
	}
	assert.Equal(t, first, second)
}

func TestBuildItemsTruncates(t *testing.T) {
	var metrics []Metric
	for i := 0; i < 150; i++ {
		metrics = append(metrics, Metric{
			Slug:  "org-" + string(rune('a'+i/26)) + string(rune('a'+i%26)),
			Name:  "Org",
			Value: i,
		})
	}

	items := BuildItems(metrics, map[string]int{}, MaxItems)
	assert.Len(t, items, MaxItems)
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, MaxItems, items[len(items)-1].Rank)
	// Highest value first.
	assert.Equal(t, 149, items[0].CurrentValue)
}

func TestSnapshotRoundTripValues(t *testing.T) {
	prev := Snapshot{
		Items: []Item{
			{Slug: "apache", CurrentValue: 24},
			{Slug: "debian", CurrentValue: 20},
		},
	}

	values := prev.PreviousValues()
	assert.Equal(t, map[string]int{"apache": 24, "debian": 20}, values)
}
