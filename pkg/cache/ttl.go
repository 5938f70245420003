package cache

import (
	"time"

	"gsoc-backend/pkg/clock"
)

// Cache lifetimes by volatility. Historical years are finalized upstream
// and effectively immutable; the current and previous program years still
// receive data corrections.
const (
	HistoricalTTL  = 365 * 24 * time.Hour
	CurrentYearTTL = 24 * time.Hour
)

// IsHistoricalYear reports whether year is more than one year in the past.
// Classification is recomputed on every call against the injected clock,
// never stored, so a year crossing the boundary transitions on the next
// cache miss with no migration logic.
func IsHistoricalYear(clk clock.Clock, year int) bool {
	return year < clk.Now().Year()-1
}

// DurationForYear maps a program year to a cache TTL.
func DurationForYear(clk clock.Clock, year int) time.Duration {
	if IsHistoricalYear(clk, year) {
		return HistoricalTTL
	}
	return CurrentYearTTL
}

// HeaderForYear maps a program year to a Cache-Control header value.
func HeaderForYear(clk clock.Clock, year int) string {
	if IsHistoricalYear(clk, year) {
		return HeaderImmutable
	}
	return HeaderCurrentYear
}
