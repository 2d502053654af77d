// Package catalog holds the embedded fallback hotel dataset. It is the data
// source in mock mode and the safety net when the live path degrades.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"staysearch/internal/domain"
)

//go:embed hotels.json
var rawHotels []byte

type Catalog struct {
	hotels []domain.Hotel
	byID   map[string]int
}

func Load() (*Catalog, error) {
	var hs []domain.Hotel
	if err := json.Unmarshal(rawHotels, &hs); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	byID := make(map[string]int, len(hs))
	for i, h := range hs {
		if _, dup := byID[h.ID]; dup {
			return nil, fmt.Errorf("duplicate hotel id %q in embedded catalog", h.ID)
		}
		byID[h.ID] = i
	}
	return &Catalog{hotels: hs, byID: byID}, nil
}

// All returns a copy of the full catalog in its stored order.
func (c *Catalog) All() []domain.Hotel {
	out := make([]domain.Hotel, len(c.hotels))
	copy(out, c.hotels)
	return out
}

func (c *Catalog) ByID(id string) (domain.Hotel, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Hotel{}, false
	}
	return c.hotels[i], true
}

// Destinations lists the distinct "City, Country" labels present in the
// catalog, sorted for stable output.
func (c *Catalog) Destinations() []string {
	seen := make(map[string]struct{}, len(c.hotels))
	out := make([]string, 0, len(c.hotels))
	for _, h := range c.hotels {
		label := h.City + ", " + h.Country
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Len() int { return len(c.hotels) }
