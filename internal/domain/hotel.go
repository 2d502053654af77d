package domain

// Hotel is the internal hotel shape every source (embedded catalog, remote
// provider) normalizes into. ID is unique within a single result set.
type Hotel struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Rating            int      `json:"rating"`     // star rating, 1..5
	UserRating        float64  `json:"userRating"` // continuous, 0..10
	ReviewCount       int      `json:"reviewCount"`
	PricePerNight     float64  `json:"pricePerNight"`
	Currency          string   `json:"currency"`
	City              string   `json:"city"`
	Country           string   `json:"country"`
	Address           string   `json:"address"`
	Lat               *float64 `json:"lat,omitempty"`
	Lon               *float64 `json:"lon,omitempty"`
	Images            []string `json:"images"`
	Amenities         []string `json:"amenities"`
	RoomType          string   `json:"roomType"`
	FreeCancellation  bool     `json:"freeCancellation"`
	BreakfastIncluded bool     `json:"breakfastIncluded"`
}

// SortOrder values are wire-stable strings.
type SortOrder string

const (
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortRatingDesc SortOrder = "rating_desc" // descending userRating, not stars
	SortNameAsc    SortOrder = "name_asc"
)

// SearchFilters is an immutable input to a single search call. Optional
// numeric bounds are pointers so "unset" and "zero" stay distinct.
type SearchFilters struct {
	Location  string    `json:"location"`
	CheckIn   string    `json:"checkIn,omitempty"`
	CheckOut  string    `json:"checkOut,omitempty"`
	Guests    int       `json:"guests"`
	MinPrice  *float64  `json:"minPrice,omitempty"`
	MaxPrice  *float64  `json:"maxPrice,omitempty"`
	Rating    *int      `json:"rating,omitempty"`
	Amenities []string  `json:"amenities,omitempty"`
	SortBy    SortOrder `json:"sortBy,omitempty"`
}

// StayDates is the date range forwarded to the remote provider.
type StayDates struct {
	CheckIn  string
	CheckOut string
	Guests   int
}

// ResultSource tells callers which path produced a SearchResult.
type ResultSource string

const (
	SourceLive     ResultSource = "live"     // fresh remote fetch
	SourceCache    ResultSource = "cache"    // slot hit, remote skipped
	SourceMock     ResultSource = "mock"     // mock mode, embedded catalog
	SourceFallback ResultSource = "fallback" // live path degraded to the catalog
)

// SearchResult is one page of an ordered result set.
type SearchResult struct {
	Hotels  []Hotel      `json:"hotels"`
	Total   int          `json:"total"`
	Page    int          `json:"page"` // 1-indexed
	HasMore bool         `json:"hasMore"`
	Source  ResultSource `json:"source"`
}
