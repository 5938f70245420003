package trending

import (
	"context"
	"fmt"

	"gsoc-backend/domain/trending"
	"gsoc-backend/infrastructure/snapshots"
	"gsoc-backend/pkg/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator runs the snapshot batch across every (source, range) pair.
// Any failure aborts the whole run: stale snapshots across the board are
// preferable to a trending page where some entities updated and others
// reflect a broken run.
type Generator struct {
	store   *snapshots.Store
	sources []Source
	ranges  []trending.Range
	limit   int
	clock   clock.Clock
	logger  *zap.Logger
}

// NewGenerator creates a generator. A non-positive limit falls back to
// trending.MaxItems.
func NewGenerator(store *snapshots.Store, sources []Source, ranges []trending.Range, limit int, clk clock.Clock, logger *zap.Logger) *Generator {
	if limit <= 0 {
		limit = trending.MaxItems
	}
	if len(ranges) == 0 {
		ranges = trending.Ranges()
	}
	return &Generator{
		store:   store,
		sources: sources,
		ranges:  ranges,
		limit:   limit,
		clock:   clk,
		logger:  logger,
	}
}

// Run executes one batch. Metrics are computed once per source and reused
// across ranges; the run is stateless apart from the snapshot files.
func (g *Generator) Run(ctx context.Context) error {
	runID := uuid.New().String()
	now := g.clock.Now()

	g.logger.Info("trending run started",
		zap.String("run_id", runID),
		zap.Int("sources", len(g.sources)),
		zap.Int("ranges", len(g.ranges)),
	)

	for _, source := range g.sources {
		entity := source.Entity()

		metrics, err := source.Metrics(ctx)
		if err != nil {
			return fmt.Errorf("compute %s metrics: %w", entity, err)
		}

		for _, rng := range g.ranges {
			if err := g.generateOne(runID, entity, rng, metrics); err != nil {
				return err
			}
		}
	}

	g.logger.Info("trending run finished",
		zap.String("run_id", runID),
		zap.Duration("elapsed", g.clock.Now().Sub(now)),
	)
	return nil
}

func (g *Generator) generateOne(runID string, entity trending.Entity, rng trending.Range, metrics []trending.Metric) error {
	previous := map[string]int{}
	prevSnap, err := g.store.LoadPrevious(entity, rng)
	if err != nil {
		return fmt.Errorf("load previous %s/%s snapshot: %w", entity, rng, err)
	}
	if prevSnap != nil {
		previous = prevSnap.PreviousValues()
	}

	items := trending.BuildItems(metrics, previous, g.limit)

	now := g.clock.Now()
	snap := trending.NewSnapshot(entity, rng, now, items)
	snap.Meta.RunID = runID
	if err := g.store.Write(snap, now); err != nil {
		return fmt.Errorf("persist %s/%s snapshot: %w", entity, rng, err)
	}

	g.logger.Info("snapshot written",
		zap.String("run_id", runID),
		zap.String("entity", string(entity)),
		zap.String("range", string(rng)),
		zap.Int("items", len(items)),
		zap.Bool("cold_start", prevSnap == nil),
	)
	return nil
}
