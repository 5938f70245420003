// Package queries holds the read side of the API: repository reads wrapped
// in the cached-function factory with tags for invalidation and TTLs from
// the year classifier.
package queries

import (
	"context"
	"sort"

	"gsoc-backend/application/ports"
	"gsoc-backend/domain/catalog"
	"gsoc-backend/pkg/cache"
	"gsoc-backend/pkg/clock"

	"go.uber.org/zap"
)

// TechStackEntry is one technology with its usage counts.
type TechStackEntry struct {
	Slug              string `json:"slug"`
	Name              string `json:"name"`
	OrganizationCount int    `json:"organization_count"`
	ProjectCount      int    `json:"project_count"`
}

// TopicEntry is one topic with its usage count.
type TopicEntry struct {
	Slug              string `json:"slug"`
	Name              string `json:"name"`
	OrganizationCount int    `json:"organization_count"`
}

// YearStats aggregates one program year.
type YearStats struct {
	Year               int `json:"year"`
	TotalOrganizations int `json:"total_organizations"`
	TotalProjects      int `json:"total_projects"`
}

// CatalogQueries serves all cached catalog reads. Every operation is
// memoized through the cache provider; tags follow the registry contract
// (most specific tag + global category tag + all).
type CatalogQueries struct {
	organizationsByYear func(context.Context, int) ([]catalog.Organization, error)
	organizationBySlug  func(context.Context, string) (*catalog.Organization, error)
	projectsByYear      func(context.Context, int) ([]catalog.Project, error)
	projectByID         func(context.Context, string) (*catalog.Project, error)
	years               func(context.Context) ([]int, error)
	techStack           func(context.Context) ([]TechStackEntry, error)
	topics              func(context.Context) ([]TopicEntry, error)
	yearStats           func(context.Context, int) (YearStats, error)
}

// NewCatalogQueries wires the cached read operations.
func NewCatalogQueries(
	orgs ports.OrganizationRepository,
	projects ports.ProjectRepository,
	provider cache.Provider,
	clk clock.Clock,
	logger *zap.Logger,
) *CatalogQueries {
	q := &CatalogQueries{}

	q.organizationsByYear = cache.NewDynamicCachedFn(provider, logger, "organizations.by-year",
		orgs.FindByYear,
		func(year int) cache.Options {
			return cache.Options{
				Tags: []string{cache.TagAll, cache.TagOrganizations, cache.YearTag(year)},
				TTL:  cache.DurationForYear(clk, year),
			}
		})

	q.organizationBySlug = cache.NewDynamicCachedFn(provider, logger, "organizations.by-slug",
		orgs.FindBySlug,
		func(slug string) cache.Options {
			return cache.Options{
				Tags: []string{cache.TagAll, cache.TagOrganizations, cache.OrganizationTag(slug)},
				TTL:  cache.CurrentYearTTL,
			}
		})

	q.projectsByYear = cache.NewDynamicCachedFn(provider, logger, "projects.by-year",
		projects.FindByYear,
		func(year int) cache.Options {
			return cache.Options{
				Tags: []string{cache.TagAll, cache.TagProjects, cache.YearTag(year)},
				TTL:  cache.DurationForYear(clk, year),
			}
		})

	q.projectByID = cache.NewDynamicCachedFn(provider, logger, "projects.by-id",
		projects.FindByID,
		func(id string) cache.Options {
			return cache.Options{
				Tags: []string{cache.TagAll, cache.TagProjects, cache.ProjectTag(id)},
				TTL:  cache.CurrentYearTTL,
			}
		})

	q.years = cache.NewCachedFn(provider, logger, "years.list",
		orgs.Years,
		cache.Options{
			Tags: []string{cache.TagAll, cache.TagYears, cache.TagMeta},
			TTL:  cache.CurrentYearTTL,
		})

	q.techStack = cache.NewCachedFn(provider, logger, "tech-stack.list",
		func(ctx context.Context) ([]TechStackEntry, error) {
			all, err := orgs.FindAll(ctx)
			if err != nil {
				return nil, err
			}
			return aggregateTechStack(all), nil
		},
		cache.Options{
			Tags: []string{cache.TagAll, cache.TagTechStack},
			TTL:  cache.CurrentYearTTL,
		})

	q.topics = cache.NewCachedFn(provider, logger, "topics.list",
		func(ctx context.Context) ([]TopicEntry, error) {
			all, err := orgs.FindAll(ctx)
			if err != nil {
				return nil, err
			}
			return aggregateTopics(all), nil
		},
		cache.Options{
			Tags: []string{cache.TagAll, cache.TagTopics},
			TTL:  cache.CurrentYearTTL,
		})

	q.yearStats = cache.NewDynamicCachedFn(provider, logger, "stats.by-year",
		func(ctx context.Context, year int) (YearStats, error) {
			participating, err := orgs.FindByYear(ctx, year)
			if err != nil {
				return YearStats{}, err
			}
			stats := YearStats{Year: year, TotalOrganizations: len(participating)}
			for _, org := range participating {
				stats.TotalProjects += org.ProjectsInYear(year)
			}
			return stats, nil
		},
		func(year int) cache.Options {
			return cache.Options{
				Tags: []string{cache.TagAll, cache.TagStats, cache.YearTag(year)},
				TTL:  cache.DurationForYear(clk, year),
			}
		})

	return q
}

// OrganizationsByYear returns the organizations participating in year.
func (q *CatalogQueries) OrganizationsByYear(ctx context.Context, year int) ([]catalog.Organization, error) {
	return q.organizationsByYear(ctx, year)
}

// OrganizationBySlug returns one organization, or nil if unknown.
func (q *CatalogQueries) OrganizationBySlug(ctx context.Context, slug string) (*catalog.Organization, error) {
	return q.organizationBySlug(ctx, slug)
}

// ProjectsByYear returns the projects accepted in year.
func (q *CatalogQueries) ProjectsByYear(ctx context.Context, year int) ([]catalog.Project, error) {
	return q.projectsByYear(ctx, year)
}

// ProjectByID returns one project, or nil if unknown.
func (q *CatalogQueries) ProjectByID(ctx context.Context, id string) (*catalog.Project, error) {
	return q.projectByID(ctx, id)
}

// Years returns the participating program years, ascending.
func (q *CatalogQueries) Years(ctx context.Context) ([]int, error) {
	return q.years(ctx)
}

// TechStack returns the technology aggregation, most-used first.
func (q *CatalogQueries) TechStack(ctx context.Context) ([]TechStackEntry, error) {
	return q.techStack(ctx)
}

// Topics returns the topic aggregation, most-used first.
func (q *CatalogQueries) Topics(ctx context.Context) ([]TopicEntry, error) {
	return q.topics(ctx)
}

// StatsForYear returns the aggregate stats for one program year.
func (q *CatalogQueries) StatsForYear(ctx context.Context, year int) (YearStats, error) {
	return q.yearStats(ctx, year)
}

// aggregateTechStack counts organizations and projects per technology.
func aggregateTechStack(orgs []catalog.Organization) []TechStackEntry {
	byName := make(map[string]*TechStackEntry)
	for _, org := range orgs {
		total := org.TotalProjects()
		for _, tech := range org.Technologies {
			slug := catalog.Slugify(tech)
			if slug == "" {
				continue
			}
			entry, ok := byName[slug]
			if !ok {
				entry = &TechStackEntry{Slug: slug, Name: tech}
				byName[slug] = entry
			}
			entry.OrganizationCount++
			entry.ProjectCount += total
		}
	}
	return sortTechStack(byName)
}

// aggregateTopics counts organizations per topic.
func aggregateTopics(orgs []catalog.Organization) []TopicEntry {
	byName := make(map[string]*TopicEntry)
	for _, org := range orgs {
		for _, topic := range org.Topics {
			slug := catalog.Slugify(topic)
			if slug == "" {
				continue
			}
			entry, ok := byName[slug]
			if !ok {
				entry = &TopicEntry{Slug: slug, Name: topic}
				byName[slug] = entry
			}
			entry.OrganizationCount++
		}
	}

	entries := make([]TopicEntry, 0, len(byName))
	for _, e := range byName {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].OrganizationCount != entries[j].OrganizationCount {
			return entries[i].OrganizationCount > entries[j].OrganizationCount
		}
		return entries[i].Slug < entries[j].Slug
	})
	return entries
}

func sortTechStack(byName map[string]*TechStackEntry) []TechStackEntry {
	entries := make([]TechStackEntry, 0, len(byName))
	for _, e := range byName {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].OrganizationCount != entries[j].OrganizationCount {
			return entries[i].OrganizationCount > entries[j].OrganizationCount
		}
		return entries[i].Slug < entries[j].Slug
	})
	return entries
}
