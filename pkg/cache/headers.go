package cache

// Cache-Control header values by volatility class. These are a literal
// contract with the HTTP cache/CDN layer and must not be reworded.
const (
	HeaderImmutable   = "public, s-maxage=31536000, stale-while-revalidate=604800"
	HeaderLong        = "public, s-maxage=2592000, stale-while-revalidate=604800"
	HeaderMedium      = "public, s-maxage=604800, stale-while-revalidate=86400"
	HeaderShort       = "public, s-maxage=3600, stale-while-revalidate=86400"
	HeaderCurrentYear = "public, s-maxage=86400, stale-while-revalidate=3600"

	// HeaderNoCache is used unconditionally on admin, write, and health
	// endpoints. Serving stale admin state is a correctness bug.
	HeaderNoCache = "no-store, no-cache, must-revalidate"
)
