package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// TagsHeader carries a page's cache tags from the handler to the page
// cache. The middleware consumes and strips it; clients never see it.
const TagsHeader = "X-Cache-Tags"

// TagPage marks the in-flight response with the cache tags its rendered
// page should be indexed under.
func TagPage(w http.ResponseWriter, tags ...string) {
	w.Header().Set(TagsHeader, strings.Join(tags, " "))
}

// PageCache is an in-process rendered-response cache keyed by request path
// and query. Each cached page is indexed under the same cache tags as the
// data it renders, so tag invalidation purges stale pages together with
// the data-cache entries behind them. Invalidating a path drops every
// cached response for it, and a full invalidation clears everything. Only
// successful GET responses are cached.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]cachedPage
	tags  map[string]map[string]struct{} // tag -> page keys
	ttl   time.Duration
}

type cachedPage struct {
	status    int
	header    http.Header
	body      []byte
	tags      []string
	expiresAt time.Time
}

// NewPageCache creates a page cache whose entries expire after ttl.
func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{
		pages: make(map[string]cachedPage),
		tags:  make(map[string]map[string]struct{}),
		ttl:   ttl,
	}
}

// Handler serves cached pages and records cache misses.
func (p *PageCache) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := pageKey(r)

		p.mu.RLock()
		page, ok := p.pages[key]
		p.mu.RUnlock()
		if ok && time.Now().Before(page.expiresAt) {
			writePage(w, page)
			return
		}

		rec := &pageRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK {
			return
		}

		p.mu.Lock()
		p.remove(key)
		p.pages[key] = cachedPage{
			status:    rec.status,
			header:    rec.Header().Clone(),
			body:      rec.body,
			tags:      rec.tags,
			expiresAt: time.Now().Add(p.ttl),
		}
		for _, tag := range rec.tags {
			keys, ok := p.tags[tag]
			if !ok {
				keys = make(map[string]struct{})
				p.tags[tag] = keys
			}
			keys[key] = struct{}{}
		}
		p.mu.Unlock()
	})
}

// InvalidateByTag drops every cached page indexed under tag and returns
// how many were dropped.
func (p *PageCache) InvalidateByTag(tag string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys, ok := p.tags[tag]
	if !ok {
		return 0
	}

	dropped := 0
	for key := range keys {
		p.remove(key)
		dropped++
	}
	delete(p.tags, tag)
	return dropped
}

// InvalidateByPath drops every cached response whose path matches path,
// regardless of query string, and returns how many were dropped.
func (p *PageCache) InvalidateByPath(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	dropped := 0
	for key := range p.pages {
		if keyPath(key) == path {
			p.remove(key)
			dropped++
		}
	}
	return dropped
}

// Clear drops every cached page.
func (p *PageCache) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pages = make(map[string]cachedPage)
	p.tags = make(map[string]map[string]struct{})
}

// Len returns the number of cached pages, expired or not.
func (p *PageCache) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.pages)
}

// remove deletes a page and its tag index entries. Caller holds the
// write lock.
func (p *PageCache) remove(key string) {
	page, ok := p.pages[key]
	if !ok {
		return
	}
	for _, tag := range page.tags {
		if keys, ok := p.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(p.tags, tag)
			}
		}
	}
	delete(p.pages, key)
}

func pageKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}

func keyPath(key string) string {
	if i := strings.IndexByte(key, '?'); i >= 0 {
		return key[:i]
	}
	return key
}

func writePage(w http.ResponseWriter, page cachedPage) {
	for k, vals := range page.header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(page.status)
	w.Write(page.body)
}

// pageRecorder tees the response to the client while buffering it for the
// cache. It lifts the tags header off the response before it reaches the
// wire.
type pageRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        []byte
	tags        []string
}

func (r *pageRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	if v := r.Header().Get(TagsHeader); v != "" {
		r.tags = strings.Fields(v)
		r.Header().Del(TagsHeader)
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *pageRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body = append(r.body, b...)
	return r.ResponseWriter.Write(b)
}
