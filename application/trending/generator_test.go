package trending

import (
	"context"
	"errors"
	"testing"
	"time"

	"gsoc-backend/domain/trending"
	"gsoc-backend/infrastructure/snapshots"
	"gsoc-backend/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSource serves canned metrics, mutable between runs.
type stubSource struct {
	entity  trending.Entity
	metrics []trending.Metric
	err     error
}

func (s *stubSource) Entity() trending.Entity { return s.entity }

func (s *stubSource) Metrics(ctx context.Context) ([]trending.Metric, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.metrics, nil
}

func newTestGenerator(t *testing.T, sources []Source) (*Generator, *snapshots.Store) {
	t.Helper()
	store := snapshots.NewStore(t.TempDir())
	clk := clock.Fixed(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC))
	gen := NewGenerator(store, sources, []trending.Range{trending.RangeMonthly}, 100, clk, zap.NewNop())
	return gen, store
}

func TestGeneratorColdStart(t *testing.T) {
	source := &stubSource{
		entity: trending.EntityOrganizations,
		metrics: []trending.Metric{
			{ID: "1", Slug: "apache", Name: "Apache", Value: 27},
			{ID: "2", Slug: "debian", Name: "Debian", Value: 15},
		},
	}
	gen, store := newTestGenerator(t, []Source{source})

	require.NoError(t, gen.Run(context.Background()))

	snap, err := store.ReadLatest(trending.EntityOrganizations, trending.RangeMonthly)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Items, 2)
	for _, item := range snap.Items {
		assert.Equal(t, item.CurrentValue, item.PreviousValue)
		assert.Equal(t, 0, item.Change)
	}
	assert.Equal(t, "2026-01-12T00:00:00.000Z", snap.SnapshotAt)
}

func TestGeneratorDiffsAgainstPreviousRun(t *testing.T) {
	source := &stubSource{
		entity: trending.EntityOrganizations,
		metrics: []trending.Metric{
			{Slug: "apache", Name: "Apache", Value: 24},
		},
	}
	gen, store := newTestGenerator(t, []Source{source})

	require.NoError(t, gen.Run(context.Background()))

	// The org grows and a new one appears before the second run.
	source.metrics = []trending.Metric{
		{Slug: "apache", Name: "Apache", Value: 27},
		{Slug: "gnome", Name: "GNOME", Value: 12},
	}
	require.NoError(t, gen.Run(context.Background()))

	snap, err := store.ReadLatest(trending.EntityOrganizations, trending.RangeMonthly)
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)

	apache := findItem(t, snap.Items, "apache")
	assert.Equal(t, 3, apache.Change)
	assert.Equal(t, 12.5, apache.ChangePercent)
	assert.Equal(t, 24, apache.PreviousValue)

	gnome := findItem(t, snap.Items, "gnome")
	assert.Equal(t, 0, gnome.Change, "new entity shows zero change")
	assert.Equal(t, 12, gnome.PreviousValue)
}

// Every snapshot of one run carries the same run id, so a file on disk
// can be traced back to the batch that wrote it.
func TestGeneratorStampsRunID(t *testing.T) {
	source := &stubSource{
		entity:  trending.EntityOrganizations,
		metrics: []trending.Metric{{Slug: "apache", Name: "Apache", Value: 1}},
	}
	store := snapshots.NewStore(t.TempDir())
	clk := clock.Fixed(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC))
	gen := NewGenerator(store, []Source{source},
		[]trending.Range{trending.RangeMonthly, trending.RangeYearly}, 100, clk, zap.NewNop())

	require.NoError(t, gen.Run(context.Background()))

	monthly, err := store.ReadLatest(trending.EntityOrganizations, trending.RangeMonthly)
	require.NoError(t, err)
	yearly, err := store.ReadLatest(trending.EntityOrganizations, trending.RangeYearly)
	require.NoError(t, err)

	require.NotEmpty(t, monthly.Meta.RunID)
	assert.Equal(t, monthly.Meta.RunID, yearly.Meta.RunID)

	require.NoError(t, gen.Run(context.Background()))
	again, err := store.ReadLatest(trending.EntityOrganizations, trending.RangeMonthly)
	require.NoError(t, err)
	assert.NotEqual(t, monthly.Meta.RunID, again.Meta.RunID, "each run gets its own id")
}

func TestGeneratorFailFast(t *testing.T) {
	good := &stubSource{
		entity:  trending.EntityOrganizations,
		metrics: []trending.Metric{{Slug: "apache", Name: "Apache", Value: 1}},
	}
	broken := &stubSource{
		entity: trending.EntityTechStack,
		err:    errors.New("store unavailable"),
	}
	// The broken source comes first; nothing after it may be written.
	gen, store := newTestGenerator(t, []Source{broken, good})

	err := gen.Run(context.Background())
	require.Error(t, err)

	snap, readErr := store.ReadLatest(trending.EntityOrganizations, trending.RangeMonthly)
	require.NoError(t, readErr)
	assert.Nil(t, snap, "batch must abort before later sources are generated")
}

func findItem(t *testing.T, items []trending.Item, slug string) trending.Item {
	t.Helper()
	for _, item := range items {
		if item.Slug == slug {
			return item
		}
	}
	t.Fatalf("item %s not found", slug)
	return trending.Item{}
}
