// Package ports declares the interfaces the application layer consumes.
// These are ports in the hexagonal sense: implementations live under
// infrastructure and the application never sees them directly.
package ports

import (
	"context"

	"gsoc-backend/domain/catalog"
)

// OrganizationRepository provides read access to stored organizations.
// Writes happen out-of-band through the ingestion pipeline and are
// followed by explicit cache invalidation; nothing here mutates the store.
type OrganizationRepository interface {
	// FindAll returns every organization across all program years.
	FindAll(ctx context.Context) ([]catalog.Organization, error)

	// FindByYear returns the organizations that participated in year.
	FindByYear(ctx context.Context, year int) ([]catalog.Organization, error)

	// FindBySlug returns one organization, or nil if unknown.
	FindBySlug(ctx context.Context, slug string) (*catalog.Organization, error)

	// Years returns the participating program years, ascending.
	Years(ctx context.Context) ([]int, error)
}

// ProjectRepository provides read access to stored projects.
type ProjectRepository interface {
	// FindByYear returns the projects accepted in year.
	FindByYear(ctx context.Context, year int) ([]catalog.Project, error)

	// FindByID returns one project, or nil if unknown.
	FindByID(ctx context.Context, id string) (*catalog.Project, error)

	// FindByOrganization returns an organization's projects across years.
	FindByOrganization(ctx context.Context, orgSlug string) ([]catalog.Project, error)
}

// PageInvalidator is the page-rendering collaborator the invalidation
// endpoint purges stale pages from, by tag or by path.
type PageInvalidator interface {
	// InvalidateByTag drops every cached page indexed under tag and
	// returns how many were dropped.
	InvalidateByTag(tag string) int

	// InvalidateByPath drops every cached response for path and returns
	// how many were dropped.
	InvalidateByPath(path string) int

	// Clear drops every cached page.
	Clear()
}
