package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("hotel not found")

// CatalogProvider fetches the remote hotel catalog for a resolved city code.
// Implementations own token acquisition and enrichment; the returned slice is
// deduplicated by ID and already normalized. Errors are returned unswallowed;
// degrading to the fallback catalog is the orchestrator's call, not the
// provider's.
type CatalogProvider interface {
	FetchCatalog(ctx context.Context, cityCode string, stay StayDates) ([]Hotel, error)
}

// Cache is a generic JSON key-value cache with per-entry TTL. Used for detail
// lookups; the search-result slot has its own dedicated single-entry store.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
