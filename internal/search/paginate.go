package search

import "staysearch/internal/domain"

// Paginate slices an ordered result set into one fixed-size page. Slice
// bounds are clamped, so an out-of-range page yields an empty page rather
// than an error. The returned hotels are a copy of the slice window.
func Paginate(hotels []domain.Hotel, page, pageSize int) domain.SearchResult {
	if page < 1 {
		page = 1
	}
	total := len(hotels)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	out := make([]domain.Hotel, end-start)
	copy(out, hotels[start:end])
	return domain.SearchResult{
		Hotels:  out,
		Total:   total,
		Page:    page,
		HasMore: end < total,
	}
}
