package queries

import (
	"context"
	"testing"
	"time"

	"gsoc-backend/domain/catalog"
	memcache "gsoc-backend/infrastructure/cache"
	"gsoc-backend/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOrgRepo struct {
	orgs  []catalog.Organization
	calls int
}

func (r *stubOrgRepo) FindAll(ctx context.Context) ([]catalog.Organization, error) {
	r.calls++
	return r.orgs, nil
}

func (r *stubOrgRepo) FindByYear(ctx context.Context, year int) ([]catalog.Organization, error) {
	r.calls++
	var out []catalog.Organization
	for _, org := range r.orgs {
		if org.ParticipatedIn(year) {
			out = append(out, org)
		}
	}
	return out, nil
}

func (r *stubOrgRepo) FindBySlug(ctx context.Context, slug string) (*catalog.Organization, error) {
	r.calls++
	for i := range r.orgs {
		if r.orgs[i].Slug == slug {
			return &r.orgs[i], nil
		}
	}
	return nil, nil
}

func (r *stubOrgRepo) Years(ctx context.Context) ([]int, error) {
	r.calls++
	seen := map[int]bool{}
	var years []int
	for _, org := range r.orgs {
		for _, y := range org.Years {
			if !seen[y.Year] {
				seen[y.Year] = true
				years = append(years, y.Year)
			}
		}
	}
	return years, nil
}

type stubProjectRepo struct {
	projects []catalog.Project
	calls    int
}

func (r *stubProjectRepo) FindByYear(ctx context.Context, year int) ([]catalog.Project, error) {
	r.calls++
	var out []catalog.Project
	for _, p := range r.projects {
		if p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProjectRepo) FindByID(ctx context.Context, id string) (*catalog.Project, error) {
	r.calls++
	for i := range r.projects {
		if r.projects[i].ID == id {
			return &r.projects[i], nil
		}
	}
	return nil, nil
}

func (r *stubProjectRepo) FindByOrganization(ctx context.Context, orgSlug string) ([]catalog.Project, error) {
	r.calls++
	var out []catalog.Project
	for _, p := range r.projects {
		if p.OrganizationSlug == orgSlug {
			out = append(out, p)
		}
	}
	return out, nil
}

func fixtureOrgs() []catalog.Organization {
	return []catalog.Organization{
		{
			ID:           "1",
			Slug:         "apache",
			Name:         "Apache Software Foundation",
			Technologies: []string{"Java", "C++"},
			Topics:       []string{"Web", "Big Data"},
			Years: []catalog.YearParticipation{
				{Year: 2024, NumProjects: 30},
				{Year: 2025, NumProjects: 40},
			},
		},
		{
			ID:           "2",
			Slug:         "zulip",
			Name:         "Zulip",
			Technologies: []string{"Python", "Java"},
			Topics:       []string{"Web"},
			Years: []catalog.YearParticipation{
				{Year: 2025, NumProjects: 25},
			},
		},
	}
}

func newQueryFixture() (*CatalogQueries, *stubOrgRepo, *stubProjectRepo, *memcache.MemoryCache) {
	orgs := &stubOrgRepo{orgs: fixtureOrgs()}
	projects := &stubProjectRepo{projects: []catalog.Project{
		{ID: "p1", Title: "Indexing", OrganizationSlug: "apache", Year: 2025},
	}}
	provider := memcache.NewMemoryCache()
	clk := clock.Fixed(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	q := NewCatalogQueries(orgs, projects, provider, clk, zap.NewNop())
	return q, orgs, projects, provider
}

func TestOrganizationsByYearMemoized(t *testing.T) {
	q, orgs, _, _ := newQueryFixture()
	ctx := context.Background()

	first, err := q.OrganizationsByYear(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, orgs.calls)

	second, err := q.OrganizationsByYear(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, orgs.calls, "second read must be served from cache")

	// A different year is a different cache key.
	_, err = q.OrganizationsByYear(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, orgs.calls)
}

func TestInvalidationForcesRecompute(t *testing.T) {
	q, orgs, _, provider := newQueryFixture()
	ctx := context.Background()

	_, err := q.OrganizationsByYear(ctx, 2025)
	require.NoError(t, err)
	_, err = q.StatsForYear(ctx, 2025)
	require.NoError(t, err)
	calls := orgs.calls

	provider.InvalidateTag(ctx, "year:2025")

	_, err = q.OrganizationsByYear(ctx, 2025)
	require.NoError(t, err)
	_, err = q.StatsForYear(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, calls+2, orgs.calls, "both year-tagged reads recompute after invalidation")
}

func TestYearStats(t *testing.T) {
	q, _, _, _ := newQueryFixture()

	stats, err := q.StatsForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, YearStats{Year: 2025, TotalOrganizations: 2, TotalProjects: 65}, stats)
}

func TestOrganizationBySlug(t *testing.T) {
	q, _, _, _ := newQueryFixture()
	ctx := context.Background()

	org, err := q.OrganizationBySlug(ctx, "zulip")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, "Zulip", org.Name)

	missing, err := q.OrganizationBySlug(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTechStackAggregation(t *testing.T) {
	q, _, _, _ := newQueryFixture()

	entries, err := q.TechStack(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Java is used by both organizations, so it ranks first.
	assert.Equal(t, "java", entries[0].Slug)
	assert.Equal(t, "Java", entries[0].Name)
	assert.Equal(t, 2, entries[0].OrganizationCount)
	assert.Equal(t, 95, entries[0].ProjectCount, "apache 70 + zulip 25")

	// Ties break on slug: c++ slugifies to just "c".
	assert.Equal(t, "c", entries[1].Slug)
	assert.Equal(t, "python", entries[2].Slug)
}

func TestTopicsAggregation(t *testing.T) {
	q, _, _, _ := newQueryFixture()

	entries, err := q.Topics(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, TopicEntry{Slug: "web", Name: "Web", OrganizationCount: 2}, entries[0])
	assert.Equal(t, TopicEntry{Slug: "big-data", Name: "Big Data", OrganizationCount: 1}, entries[1])
}
