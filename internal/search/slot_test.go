package search_test

import (
	"testing"
	"time"

	"staysearch/internal/domain"
	"staysearch/internal/search"
)

func TestSlot_HitRequiresMatchingKey(t *testing.T) {
	s := search.NewSlot(time.Minute)
	s.Set("k1", seq(3))

	if got, ok := s.Get("k1"); !ok || len(got) != 3 {
		t.Fatalf("expected hit for matching key, got ok=%v n=%d", ok, len(got))
	}
	if _, ok := s.Get("k2"); ok {
		t.Fatalf("different key must miss")
	}
}

func TestSlot_SingleEntryReplacedWholesale(t *testing.T) {
	s := search.NewSlot(time.Minute)
	s.Set("k1", seq(3))
	s.Set("k2", seq(5))

	if _, ok := s.Get("k1"); ok {
		t.Fatalf("old entry must be gone after replacement")
	}
	if got, ok := s.Get("k2"); !ok || len(got) != 5 {
		t.Fatalf("new entry missing: ok=%v n=%d", ok, len(got))
	}
}

func TestSlot_TTLExpiry(t *testing.T) {
	s := search.NewSlot(30 * time.Millisecond)
	s.Set("k", seq(2))
	if _, ok := s.Get("k"); !ok {
		t.Fatalf("fresh entry should hit")
	}
	time.Sleep(40 * time.Millisecond)
	if _, ok := s.Get("k"); ok {
		t.Fatalf("entry past TTL must miss")
	}
}

func TestSlot_Clear(t *testing.T) {
	s := search.NewSlot(time.Minute)
	s.Set("k", seq(2))
	s.Clear()
	if _, ok := s.Get("k"); ok {
		t.Fatalf("cleared slot must miss")
	}
}

func TestSlot_ReturnsCopies(t *testing.T) {
	s := search.NewSlot(time.Minute)
	in := seq(2)
	s.Set("k", in)
	in[0].ID = "mutated-after-set"

	got, _ := s.Get("k")
	if got[0].ID != "h00" {
		t.Fatalf("slot aliased the caller's slice on Set")
	}
	got[0].ID = "mutated-after-get"
	again, _ := s.Get("k")
	if again[0].ID != "h00" {
		t.Fatalf("slot leaked its backing array on Get")
	}
}

func TestCacheKey_NormalizesEquivalentFilters(t *testing.T) {
	a := domain.SearchFilters{Location: "  Paris ", Amenities: []string{"Pool", "wifi"}, Guests: 2, SortBy: domain.SortPriceAsc}
	b := domain.SearchFilters{Location: "paris", Amenities: []string{"wifi", "pool"}, Guests: 4, SortBy: domain.SortPriceAsc}
	if search.CacheKey(a) != search.CacheKey(b) {
		t.Fatalf("normalized-equal filters must share a key (guests excluded)")
	}

	c := b
	c.SortBy = domain.SortPriceDesc
	if search.CacheKey(b) == search.CacheKey(c) {
		t.Fatalf("different sort order must change the key")
	}

	d := b
	d.MinPrice = ptr(100.0)
	if search.CacheKey(b) == search.CacheKey(d) {
		t.Fatalf("different price bounds must change the key")
	}
}
