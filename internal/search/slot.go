package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"staysearch/internal/adapters/observability"
	"staysearch/internal/domain"
)

// Slot memoizes the last fresh, unpaginated result set. It holds exactly one
// entry at a time; a write replaces whatever was there. Safe for concurrent
// use.
type Slot struct {
	mu     sync.Mutex
	key    string
	hotels []domain.Hotel
	at     time.Time
	ttl    time.Duration
}

func NewSlot(ttl time.Duration) *Slot {
	return &Slot{ttl: ttl}
}

// CacheKey derives the slot key from the normalized filter subset. Guests and
// page are deliberately excluded: they change which page is served, not which
// result set is valid.
func CacheKey(f domain.SearchFilters) string {
	amenities := append([]string(nil), f.Amenities...)
	for i, a := range amenities {
		amenities[i] = strings.ToLower(strings.TrimSpace(a))
	}
	sort.Strings(amenities)

	keyData := struct {
		Location  string
		CheckIn   string
		CheckOut  string
		MinPrice  *float64
		MaxPrice  *float64
		Rating    *int
		Amenities []string
		SortBy    domain.SortOrder
	}{
		Location:  strings.ToLower(strings.TrimSpace(f.Location)),
		CheckIn:   f.CheckIn,
		CheckOut:  f.CheckOut,
		MinPrice:  f.MinPrice,
		MaxPrice:  f.MaxPrice,
		Rating:    f.Rating,
		Amenities: amenities,
		SortBy:    f.SortBy,
	}
	b, _ := json.Marshal(keyData)
	sum := sha256.Sum256(b)
	return "search:" + hex.EncodeToString(sum[:])
}

// Get returns the stored set when the key matches and the entry is still
// within its TTL.
func (s *Slot) Get(key string) ([]domain.Hotel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hotels == nil || s.key != key || time.Since(s.at) >= s.ttl {
		observability.ObserveCache("slot", "miss")
		return nil, false
	}
	observability.ObserveCache("slot", "hit")
	out := make([]domain.Hotel, len(s.hotels))
	copy(out, s.hotels)
	return out, true
}

// Set replaces the slot wholesale with a fresh entry.
func (s *Slot) Set(key string, hotels []domain.Hotel) {
	cp := make([]domain.Hotel, len(hotels))
	copy(cp, hotels)
	s.mu.Lock()
	s.key = key
	s.hotels = cp
	s.at = time.Now()
	s.mu.Unlock()
	observability.ObserveCache("slot", "set")
}

// Clear empties the slot immediately.
func (s *Slot) Clear() {
	s.mu.Lock()
	s.key = ""
	s.hotels = nil
	s.mu.Unlock()
	observability.ObserveCache("slot", "del")
}
