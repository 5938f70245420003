package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler() (http.Handler, *int) {
	hits := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"path":%q,"hit":%d}`, r.URL.Path, hits)
	}), &hits
}

func get(handler http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPageCacheServesCachedResponse(t *testing.T) {
	pages := NewPageCache(time.Minute)
	next, hits := countingHandler()
	handler := pages.Handler(next)

	first := get(handler, "/organization/apache")
	second := get(handler, "/organization/apache")

	assert.Equal(t, 1, *hits, "second request must come from the cache")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
}

func TestPageCacheKeyIncludesQuery(t *testing.T) {
	pages := NewPageCache(time.Minute)
	next, hits := countingHandler()
	handler := pages.Handler(next)

	get(handler, "/api/organizations?year=2024")
	get(handler, "/api/organizations?year=2025")
	get(handler, "/api/organizations?year=2024")

	assert.Equal(t, 2, *hits)
	assert.Equal(t, 2, pages.Len())
}

func TestPageCacheSkipsNonGET(t *testing.T) {
	pages := NewPageCache(time.Minute)
	next, hits := countingHandler()
	handler := pages.Handler(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/organizations", nil))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/organizations", nil))

	assert.Equal(t, 2, *hits)
	assert.Zero(t, pages.Len())
}

func TestPageCacheSkipsErrors(t *testing.T) {
	pages := NewPageCache(time.Minute)
	handler := pages.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	get(handler, "/organization/nope")
	assert.Zero(t, pages.Len(), "non-200 responses are never cached")
}

// taggingHandler renders a counter and tags the page like the catalog
// handlers do.
func taggingHandler(tags ...string) (http.Handler, *int) {
	hits := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		TagPage(w, tags...)
		fmt.Fprintf(w, `{"hit":%d}`, hits)
	}), &hits
}

func TestPageCacheInvalidateByTag(t *testing.T) {
	pages := NewPageCache(time.Minute)
	h2025, hits2025 := taggingHandler("all", "organizations", "year:2025")
	h2024, hits2024 := taggingHandler("all", "organizations", "year:2024")

	mux := http.NewServeMux()
	mux.Handle("/api/organizations-2025", h2025)
	mux.Handle("/api/organizations-2024", h2024)
	handler := pages.Handler(mux)

	get(handler, "/api/organizations-2025")
	get(handler, "/api/organizations-2024")
	require.Equal(t, 2, pages.Len())

	assert.Equal(t, 1, pages.InvalidateByTag("year:2025"))

	get(handler, "/api/organizations-2025")
	get(handler, "/api/organizations-2024")
	assert.Equal(t, 2, *hits2025, "invalidated page must re-render")
	assert.Equal(t, 1, *hits2024, "other year stays cached")

	// A category tag reaches every page carrying it.
	assert.Equal(t, 2, pages.InvalidateByTag("organizations"))
	assert.Zero(t, pages.Len())

	assert.Zero(t, pages.InvalidateByTag("nope"))
}

func TestPageCacheStripsTagsHeader(t *testing.T) {
	pages := NewPageCache(time.Minute)
	next, _ := taggingHandler("all", "topics")
	handler := pages.Handler(next)

	first := get(handler, "/api/topics")
	assert.Empty(t, first.Header().Get(TagsHeader), "tags header never reaches the client")

	second := get(handler, "/api/topics")
	assert.Empty(t, second.Header().Get(TagsHeader), "cached replay is clean too")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestPageCacheInvalidateByPath(t *testing.T) {
	pages := NewPageCache(time.Minute)
	next, hits := countingHandler()
	handler := pages.Handler(next)

	get(handler, "/gsoc-2025-organizations")
	get(handler, "/gsoc-2025-organizations?page=2")
	get(handler, "/gsoc-2024-organizations")

	// Both query variants of the 2025 page drop, the 2024 page survives.
	dropped := pages.InvalidateByPath("/gsoc-2025-organizations")
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 1, pages.Len())

	get(handler, "/gsoc-2025-organizations")
	get(handler, "/gsoc-2024-organizations")
	assert.Equal(t, 4, *hits, "invalidated path re-renders, untouched path is still cached")

	assert.Zero(t, pages.InvalidateByPath("/never-cached"))
}

func TestPageCacheClear(t *testing.T) {
	pages := NewPageCache(time.Minute)
	next, _ := countingHandler()
	handler := pages.Handler(next)

	get(handler, "/a")
	get(handler, "/b")
	assert.Equal(t, 2, pages.Len())

	pages.Clear()
	assert.Zero(t, pages.Len())
}

func TestPageCacheExpiry(t *testing.T) {
	pages := NewPageCache(-time.Second)
	next, hits := countingHandler()
	handler := pages.Handler(next)

	get(handler, "/a")
	get(handler, "/a")

	assert.Equal(t, 2, *hits, "expired entries read as misses")
}
