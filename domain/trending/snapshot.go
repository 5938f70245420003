// Package trending computes ranked, diffable snapshots of per-entity
// metrics. Snapshots are immutable once written; comparisons between runs
// join items by slug.
package trending

import "time"

// Entity enumerates what a snapshot ranks.
type Entity string

const (
	EntityOrganizations Entity = "organizations"
	EntityProjects      Entity = "projects"
	EntityTechStack     Entity = "tech-stack"
	EntityTopics        Entity = "topics"
)

// Range enumerates snapshot cadences.
type Range string

const (
	RangeDaily   Range = "daily"
	RangeWeekly  Range = "weekly"
	RangeMonthly Range = "monthly"
	RangeYearly  Range = "yearly"
)

// Entities lists every snapshot entity in generation order.
func Entities() []Entity {
	return []Entity{EntityOrganizations, EntityProjects, EntityTechStack, EntityTopics}
}

// Ranges lists every snapshot cadence.
func Ranges() []Range {
	return []Range{RangeDaily, RangeWeekly, RangeMonthly, RangeYearly}
}

// ParseEntity validates an entity name.
func ParseEntity(s string) (Entity, bool) {
	switch Entity(s) {
	case EntityOrganizations, EntityProjects, EntityTechStack, EntityTopics:
		return Entity(s), true
	}
	return "", false
}

// ParseRange validates a range name.
func ParseRange(s string) (Range, bool) {
	switch Range(s) {
	case RangeDaily, RangeWeekly, RangeMonthly, RangeYearly:
		return Range(s), true
	}
	return "", false
}

// SnapshotVersion is the on-disk format version.
const SnapshotVersion = 1

// MaxItems caps how many ranked items a snapshot keeps.
const MaxItems = 100

// snapshotTimeLayout matches the upstream snapshot_at format, millisecond
// precision with a literal Z.
const snapshotTimeLayout = "2006-01-02T15:04:05.000Z"

// Item is one ranked entry in a snapshot.
type Item struct {
	ID            string                 `json:"id"`
	Slug          string                 `json:"slug"`
	Name          string                 `json:"name"`
	Change        int                    `json:"change"`
	ChangePercent float64                `json:"change_percent"`
	CurrentValue  int                    `json:"current_value"`
	PreviousValue int                    `json:"previous_value"`
	Rank          int                    `json:"rank"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Meta describes the snapshot file itself. RunID correlates the file with
// the generator run that produced it; older files may lack it.
type Meta struct {
	Version    int    `json:"version"`
	TotalItems int    `json:"total_items"`
	RunID      string `json:"run_id,omitempty"`
}

// Snapshot is one generated snapshot for an (entity, range) pair.
type Snapshot struct {
	Entity     Entity `json:"entity"`
	Range      Range  `json:"range"`
	SnapshotAt string `json:"snapshot_at"`
	Items      []Item `json:"items"`
	Meta       Meta   `json:"meta"`
}

// NewSnapshot assembles a snapshot from already ranked items.
func NewSnapshot(entity Entity, rng Range, at time.Time, items []Item) Snapshot {
	return Snapshot{
		Entity:     entity,
		Range:      rng,
		SnapshotAt: FormatSnapshotTime(at),
		Items:      items,
		Meta:       Meta{Version: SnapshotVersion, TotalItems: len(items)},
	}
}

// FormatSnapshotTime renders t in the snapshot_at wire format.
func FormatSnapshotTime(t time.Time) string {
	return t.UTC().Format(snapshotTimeLayout)
}

// PreviousValues indexes a snapshot's items by slug for diffing.
func (s *Snapshot) PreviousValues() map[string]int {
	prev := make(map[string]int, len(s.Items))
	for _, item := range s.Items {
		prev[item.Slug] = item.CurrentValue
	}
	return prev
}
