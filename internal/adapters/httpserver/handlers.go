package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staysearch/internal/domain"
	"staysearch/internal/search"
)

type Handlers struct{ S *search.Service }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels/search", h.searchHotels)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Get("/v1/hotels", h.getHotels)
	s.mux.Get("/v1/destinations", h.listDestinations)
	s.mux.Delete("/v1/cache", h.clearCache)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// searchHotels is the primary entry point. It never fails: bad numeric
// params are rejected, everything past validation returns a (possibly
// fallback) result page.
func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := domain.SearchFilters{
		Location: q.Get("location"),
		CheckIn:  q.Get("check_in"),
		CheckOut: q.Get("check_out"),
		Guests:   1,
		SortBy:   domain.SortOrder(q.Get("sort")),
	}
	if v := q.Get("guests"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid guests", "guests must be a positive integer")
			return
		}
		f.Guests = n
	}
	var parseErr string
	f.MinPrice, parseErr = priceParam(q.Get("min_price"), "min_price")
	if parseErr != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid price", parseErr)
		return
	}
	f.MaxPrice, parseErr = priceParam(q.Get("max_price"), "max_price")
	if parseErr != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid price", parseErr)
		return
	}
	if v := q.Get("rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			writeProblem(w, http.StatusBadRequest, "Invalid rating", "rating must be an integer between 1 and 5")
			return
		}
		f.Rating = &n
	}
	if v := q.Get("amenities"); v != "" {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				f.Amenities = append(f.Amenities, a)
			}
		}
	}

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeProblem(w, http.StatusBadRequest, "Invalid page", "page must be a positive integer")
			return
		}
		page = n
	}

	writeJSON(w, http.StatusOK, h.S.Search(r.Context(), f, page))
}

func priceParam(v, name string) (*float64, string) {
	if v == "" {
		return nil, ""
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil, name + " must be a non-negative number"
	}
	return &f, ""
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	hotel, err := h.S.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Lookup Failed", err.Error())
		return
	}

	etag, body := calcETagAndBody(hotel)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) getHotels(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeProblem(w, http.StatusBadRequest, "Missing ids", "ids query parameter is required")
		return
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotels": h.S.GetByIDs(r.Context(), ids)})
}

func (h *Handlers) listDestinations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"destinations": h.S.Destinations()})
}

func (h *Handlers) clearCache(w http.ResponseWriter, r *http.Request) {
	h.S.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}
