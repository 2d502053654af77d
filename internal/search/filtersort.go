package search

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"staysearch/internal/domain"
)

// Filter returns the hotels passing every predicate in f. The input slice is
// never mutated.
func Filter(hotels []domain.Hotel, f domain.SearchFilters) []domain.Hotel {
	loc := strings.ToLower(strings.TrimSpace(f.Location))
	out := make([]domain.Hotel, 0, len(hotels))
	for _, h := range hotels {
		if matches(h, f, loc) {
			out = append(out, h)
		}
	}
	return out
}

func matches(h domain.Hotel, f domain.SearchFilters, loc string) bool {
	if loc != "" &&
		!strings.Contains(strings.ToLower(h.City), loc) &&
		!strings.Contains(strings.ToLower(h.Country), loc) {
		return false
	}
	if f.MinPrice != nil && h.PricePerNight < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && h.PricePerNight > *f.MaxPrice {
		return false
	}
	if f.Rating != nil && h.Rating < *f.Rating {
		return false
	}
	for _, want := range f.Amenities {
		if !hasAmenity(h.Amenities, want) {
			return false
		}
	}
	return true
}

func hasAmenity(have []string, want string) bool {
	for _, a := range have {
		if strings.EqualFold(a, want) {
			return true
		}
	}
	return false
}

// Sort returns a copy of hotels ordered by the given key. Ties keep their
// input order; an unknown or empty key returns the input order unchanged.
func Sort(hotels []domain.Hotel, by domain.SortOrder) []domain.Hotel {
	out := make([]domain.Hotel, len(hotels))
	copy(out, hotels)

	switch by {
	case domain.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PricePerNight < out[j].PricePerNight })
	case domain.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PricePerNight > out[j].PricePerNight })
	case domain.SortRatingDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UserRating > out[j].UserRating })
	case domain.SortNameAsc:
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
	return out
}
