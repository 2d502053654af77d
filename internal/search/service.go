package search

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"staysearch/internal/adapters/observability"
	"staysearch/internal/catalog"
	"staysearch/internal/domain"
)

// Service is the search façade. It decides mock-vs-live per call, checks the
// single result slot in live mode, and degrades to the embedded catalog when
// resolution or the remote fetch fails. Search never returns an error; detail
// lookups do.
type Service struct {
	fallback  *catalog.Catalog
	live      domain.CatalogProvider // nil selects mock mode
	slot      *Slot
	detail    domain.Cache // optional cache-aside for GetByID
	detailTTL time.Duration
	pageSize  int
}

type Option func(*Service)

// WithLiveProvider enables the live path. A nil provider keeps mock mode.
func WithLiveProvider(p domain.CatalogProvider) Option {
	return func(s *Service) { s.live = p }
}

// WithDetailCache enables cache-aside detail lookups.
func WithDetailCache(c domain.Cache, ttl time.Duration) Option {
	return func(s *Service) { s.detail = c; s.detailTTL = ttl }
}

func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

const defaultPageSize = 12

func NewService(fallback *catalog.Catalog, slotTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		fallback: fallback,
		slot:     NewSlot(slotTTL),
		pageSize: defaultPageSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) PageSize() int { return s.pageSize }

// Search runs one search call. The returned result always reflects a valid
// set: the live path degrades to the catalog rather than surfacing errors.
func (s *Service) Search(ctx context.Context, f domain.SearchFilters, page int) domain.SearchResult {
	if s.live == nil {
		return s.local(f, page, domain.SourceMock)
	}

	code := Resolve(f.Location)
	if code == "" {
		// Unresolvable input is an expected outcome, not an error. The
		// fallback set is a different collection, so serve its first page.
		return s.local(f, 1, domain.SourceFallback)
	}

	key := CacheKey(f)
	if hotels, ok := s.slot.Get(key); ok {
		// Slot contents are pre-filtered and pre-sorted at write time.
		res := Paginate(hotels, page, s.pageSize)
		res.Source = domain.SourceCache
		observability.ObserveSearch(string(res.Source))
		return res
	}

	fresh, err := s.live.FetchCatalog(ctx, code, domain.StayDates{
		CheckIn:  f.CheckIn,
		CheckOut: f.CheckOut,
		Guests:   f.Guests,
	})
	if err != nil {
		log.Warn().Err(err).Str("city", code).Msg("remote fetch failed, serving fallback catalog")
		return s.local(f, 1, domain.SourceFallback)
	}

	ordered := Sort(Filter(fresh, f), f.SortBy)
	s.slot.Set(key, ordered)
	s.rememberDetails(ctx, ordered)

	res := Paginate(ordered, page, s.pageSize)
	res.Source = domain.SourceLive
	observability.ObserveSearch(string(res.Source))
	return res
}

func (s *Service) local(f domain.SearchFilters, page int, src domain.ResultSource) domain.SearchResult {
	ordered := Sort(Filter(s.fallback.All(), f), f.SortBy)
	res := Paginate(ordered, page, s.pageSize)
	res.Source = src
	observability.ObserveSearch(string(src))
	return res
}

// GetByID looks a hotel up by identity: current slot first, then the detail
// cache, then the embedded catalog. Unknown ids yield domain.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (domain.Hotel, error) {
	if h, ok := s.slot.find(id); ok {
		return h, nil
	}
	if s.detail != nil {
		var h domain.Hotel
		if ok, _ := s.detail.Get(ctx, detailKey(id), &h); ok {
			return h, nil
		}
	}
	if h, ok := s.fallback.ByID(id); ok {
		return h, nil
	}
	return domain.Hotel{}, fmt.Errorf("hotel %q: %w", id, domain.ErrNotFound)
}

// GetByIDs resolves a batch of ids, skipping unknown ones.
func (s *Service) GetByIDs(ctx context.Context, ids []string) []domain.Hotel {
	out := make([]domain.Hotel, 0, len(ids))
	for _, id := range ids {
		h, err := s.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Destinations lists the known destination labels.
func (s *Service) Destinations() []string {
	return s.fallback.Destinations()
}

// ClearCache invalidates the search slot immediately. Callers invoke it on
// any filter mutation so a stale entry is never read for new criteria.
func (s *Service) ClearCache() {
	s.slot.Clear()
}

// rememberDetails writes fresh live hotels into the detail cache so GetByID
// keeps answering after the slot is replaced.
func (s *Service) rememberDetails(ctx context.Context, hotels []domain.Hotel) {
	if s.detail == nil {
		return
	}
	ttl := int(s.detailTTL.Seconds())
	for _, h := range hotels {
		if err := s.detail.Set(ctx, detailKey(h.ID), h, ttl); err != nil {
			log.Warn().Err(err).Str("id", h.ID).Msg("detail cache write failed")
			return
		}
	}
}

func detailKey(id string) string { return "hotel:" + id }

// find scans the current slot for an id without touching hit/miss counters.
func (s *Slot) find(id string) (domain.Hotel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hotels == nil || time.Since(s.at) >= s.ttl {
		return domain.Hotel{}, false
	}
	for _, h := range s.hotels {
		if h.ID == id {
			return h, true
		}
	}
	return domain.Hotel{}, false
}
