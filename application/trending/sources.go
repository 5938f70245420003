// Package trending runs the snapshot generator batch: per (entity, range)
// pair it loads the previous snapshot, computes current metrics from the
// store, diffs, ranks, truncates, and persists atomically.
package trending

import (
	"context"

	"gsoc-backend/application/ports"
	"gsoc-backend/domain/catalog"
	"gsoc-backend/domain/trending"
	"gsoc-backend/pkg/clock"
)

// Source computes the current metrics for one snapshot entity.
type Source interface {
	Entity() trending.Entity
	Metrics(ctx context.Context) ([]trending.Metric, error)
}

// OrganizationsSource ranks organizations by all-time project totals.
type OrganizationsSource struct {
	Orgs ports.OrganizationRepository
}

func (s *OrganizationsSource) Entity() trending.Entity { return trending.EntityOrganizations }

func (s *OrganizationsSource) Metrics(ctx context.Context) ([]trending.Metric, error) {
	orgs, err := s.Orgs.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	metrics := make([]trending.Metric, 0, len(orgs))
	for _, org := range orgs {
		metrics = append(metrics, trending.Metric{
			ID:    org.ID,
			Slug:  org.Slug,
			Name:  org.Name,
			Value: org.TotalProjects(),
			Metadata: map[string]interface{}{
				"years_participated": len(org.Years),
			},
		})
	}
	return metrics, nil
}

// ProjectsSource ranks organizations by current-program project count.
type ProjectsSource struct {
	Orgs  ports.OrganizationRepository
	Clock clock.Clock
}

func (s *ProjectsSource) Entity() trending.Entity { return trending.EntityProjects }

func (s *ProjectsSource) Metrics(ctx context.Context) ([]trending.Metric, error) {
	year := s.Clock.Now().Year()
	orgs, err := s.Orgs.FindByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	metrics := make([]trending.Metric, 0, len(orgs))
	for _, org := range orgs {
		metrics = append(metrics, trending.Metric{
			ID:    org.ID,
			Slug:  org.Slug,
			Name:  org.Name,
			Value: org.ProjectsInYear(year),
			Metadata: map[string]interface{}{
				"year": year,
			},
		})
	}
	return metrics, nil
}

// TechStackSource ranks technologies by how many organizations use them.
type TechStackSource struct {
	Orgs ports.OrganizationRepository
}

func (s *TechStackSource) Entity() trending.Entity { return trending.EntityTechStack }

func (s *TechStackSource) Metrics(ctx context.Context) ([]trending.Metric, error) {
	orgs, err := s.Orgs.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	type techAgg struct {
		name     string
		orgCount int
		projects int
	}
	byTech := make(map[string]*techAgg)
	for _, org := range orgs {
		total := org.TotalProjects()
		for _, tech := range org.Technologies {
			slug := catalog.Slugify(tech)
			if slug == "" {
				continue
			}
			agg, ok := byTech[slug]
			if !ok {
				agg = &techAgg{name: tech}
				byTech[slug] = agg
			}
			agg.orgCount++
			agg.projects += total
		}
	}

	metrics := make([]trending.Metric, 0, len(byTech))
	for slug, agg := range byTech {
		metrics = append(metrics, trending.Metric{
			ID:    slug,
			Slug:  slug,
			Name:  agg.name,
			Value: agg.orgCount,
			Metadata: map[string]interface{}{
				"project_count": agg.projects,
			},
		})
	}
	return metrics, nil
}

// TopicsSource ranks topics by how many organizations carry them.
type TopicsSource struct {
	Orgs ports.OrganizationRepository
}

func (s *TopicsSource) Entity() trending.Entity { return trending.EntityTopics }

func (s *TopicsSource) Metrics(ctx context.Context) ([]trending.Metric, error) {
	orgs, err := s.Orgs.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	type topicAgg struct {
		name     string
		orgCount int
	}
	byTopic := make(map[string]*topicAgg)
	for _, org := range orgs {
		for _, topic := range org.Topics {
			slug := catalog.Slugify(topic)
			if slug == "" {
				continue
			}
			agg, ok := byTopic[slug]
			if !ok {
				agg = &topicAgg{name: topic}
				byTopic[slug] = agg
			}
			agg.orgCount++
		}
	}

	metrics := make([]trending.Metric, 0, len(byTopic))
	for slug, agg := range byTopic {
		metrics = append(metrics, trending.Metric{
			ID:    slug,
			Slug:  slug,
			Name:  agg.name,
			Value: agg.orgCount,
		})
	}
	return metrics, nil
}

// DefaultSources builds the full source set in generation order.
func DefaultSources(orgs ports.OrganizationRepository, clk clock.Clock) []Source {
	return []Source{
		&OrganizationsSource{Orgs: orgs},
		&ProjectsSource{Orgs: orgs, Clock: clk},
		&TechStackSource{Orgs: orgs},
		&TopicsSource{Orgs: orgs},
	}
}
