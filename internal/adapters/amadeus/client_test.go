package amadeus_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"staysearch/internal/adapters/amadeus"
	"staysearch/internal/domain"
)

type fakeAmadeus struct {
	tokenCalls   int32
	cityCalls    int32
	offerCalls   int32
	tokenStatus  int
	cityStatus   int
	offerStatus  int
	cityHotels   []map[string]any
	offerPayload map[string]any
}

func (f *fakeAmadeus) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.tokenCalls, 1)
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_in": 1799})
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.cityCalls, 1)
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.cityStatus != 0 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(f.cityStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.cityHotels})
	})
	mux.HandleFunc("/v3/shopping/hotel-offers", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.offerCalls, 1)
		if f.offerStatus != 0 {
			w.WriteHeader(f.offerStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{f.offerPayload}})
	})
	return mux
}

func cityHotel(id, name string) map[string]any {
	return map[string]any{
		"hotelId": id,
		"name":    name,
		"geoCode": map[string]any{"latitude": 48.86, "longitude": 2.35},
		"address": map[string]any{"countryCode": "FR", "cityName": "PARIS", "lines": []any{"1 Rue Test"}},
	}
}

func mustClient(t *testing.T, base string) *amadeus.Client {
	t.Helper()
	c, err := amadeus.New(base, "id", "secret", 1000)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := amadeus.New("http://x", "", "secret", 5); err == nil {
		t.Fatalf("expected error for missing client id")
	}
	if _, err := amadeus.New("http://x", "id", "", 5); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestFetchCatalog_NormalizesAndEnriches(t *testing.T) {
	fake := &fakeAmadeus{
		cityHotels: []map[string]any{cityHotel("HLPAR001", "LE GRAND TEST")},
		offerPayload: map[string]any{
			"hotel": map[string]any{"hotelId": "HLPAR001"},
			"offers": []any{map[string]any{
				"price":     map[string]any{"total": "245.50", "currency": "EUR"},
				"room":      map[string]any{"typeEstimated": map[string]any{"category": "DELUXE_ROOM"}},
				"boardType": "BREAKFAST",
				"policies":  map[string]any{"cancellation": map[string]any{"type": "FREE_CANCELLATION"}},
			}},
		},
	}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	cl := mustClient(t, ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.FetchCatalog(ctx, "PAR", domain.StayDates{CheckIn: "2026-09-01", CheckOut: "2026-09-03", Guests: 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 hotel, got %d", len(got))
	}
	h := got[0]
	if h.ID != "HLPAR001" || h.Name != "Le Grand Test" || h.City != "Paris" || h.Country != "France" {
		t.Fatalf("normalization wrong: %+v", h)
	}
	if h.PricePerNight != 245.50 || h.Currency != "EUR" {
		t.Fatalf("offer price not applied: %+v", h)
	}
	if h.RoomType != "Deluxe Room" || !h.BreakfastIncluded || !h.FreeCancellation {
		t.Fatalf("offer details not applied: %+v", h)
	}
	if h.Rating < 3 || h.Rating > 5 {
		t.Fatalf("synthetic star rating out of band: %d", h.Rating)
	}
	if len(h.Images) == 0 {
		t.Fatalf("expected placeholder images")
	}
	if h.Lat == nil || h.Lon == nil {
		t.Fatalf("expected coordinates")
	}
}

func TestFetchCatalog_TokenReusedAcrossCalls(t *testing.T) {
	fake := &fakeAmadeus{
		cityHotels:  []map[string]any{cityHotel("HLPAR001", "Hotel One")},
		offerStatus: http.StatusNotFound, // enrichment skipped, still non-fatal
	}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	cl := mustClient(t, ts.URL)
	ctx := context.Background()

	if _, err := cl.FetchCatalog(ctx, "PAR", domain.StayDates{}); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := cl.FetchCatalog(ctx, "PAR", domain.StayDates{}); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if n := atomic.LoadInt32(&fake.tokenCalls); n != 1 {
		t.Fatalf("expected one token exchange, got %d", n)
	}
	if n := atomic.LoadInt32(&fake.cityCalls); n != 2 {
		t.Fatalf("expected two catalog queries, got %d", n)
	}
}

func TestFetchCatalog_OfferFailureIsNonFatal(t *testing.T) {
	fake := &fakeAmadeus{
		cityHotels:  []map[string]any{cityHotel("HLPAR001", "Hotel One"), cityHotel("HLPAR002", "Hotel Two")},
		offerStatus: http.StatusNotFound,
	}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	cl := mustClient(t, ts.URL)
	got, err := cl.FetchCatalog(context.Background(), "PAR", domain.StayDates{})
	if err != nil {
		t.Fatalf("offer failures must not fail the fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both hotels on basic data, got %d", len(got))
	}
	for _, h := range got {
		if h.PricePerNight <= 0 {
			t.Fatalf("synthetic price missing: %+v", h)
		}
	}
}

func TestFetchCatalog_TokenFailureIsFatal(t *testing.T) {
	fake := &fakeAmadeus{tokenStatus: http.StatusUnauthorized}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	cl := mustClient(t, ts.URL)
	_, err := cl.FetchCatalog(context.Background(), "PAR", domain.StayDates{})
	if !errors.Is(err, amadeus.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFetchCatalog_CatalogFailureIsFatal(t *testing.T) {
	fake := &fakeAmadeus{cityStatus: http.StatusServiceUnavailable}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	cl := mustClient(t, ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cl.FetchCatalog(ctx, "PAR", domain.StayDates{}); err == nil {
		t.Fatalf("expected error for failing catalog query")
	}
}

func TestFetchCatalog_DedupesAndCaps(t *testing.T) {
	var hotels []map[string]any
	for i := 0; i < 60; i++ {
		hotels = append(hotels, cityHotel(fmt.Sprintf("HL%03d", i), fmt.Sprintf("Hotel %d", i)))
	}
	// duplicate of the first entry, later in the list: first occurrence wins
	dup := cityHotel("HL000", "Hotel Zero Duplicate")
	hotels = append(hotels[:1], append([]map[string]any{dup}, hotels[1:]...)...)

	fake := &fakeAmadeus{cityHotels: hotels, offerStatus: http.StatusNotFound}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	cl := mustClient(t, ts.URL)
	got, err := cl.FetchCatalog(context.Background(), "PAR", domain.StayDates{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("expected cap at 50, got %d", len(got))
	}
	if got[0].Name != "Hotel 0" {
		t.Fatalf("first occurrence must win the dedupe, got %q", got[0].Name)
	}
}

func TestFetchCatalog_PlaceholderImagesAreStable(t *testing.T) {
	fake := &fakeAmadeus{
		cityHotels:  []map[string]any{cityHotel("HLPAR001", "Hotel One")},
		offerStatus: http.StatusNotFound,
	}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	cl := mustClient(t, ts.URL)
	a, err := cl.FetchCatalog(context.Background(), "PAR", domain.StayDates{})
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	b, err := cl.FetchCatalog(context.Background(), "PAR", domain.StayDates{})
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !reflect.DeepEqual(a[0].Images, b[0].Images) {
		t.Fatalf("images must be deterministic per hotel: %v vs %v", a[0].Images, b[0].Images)
	}
	if a[0].PricePerNight != b[0].PricePerNight || a[0].UserRating != b[0].UserRating {
		t.Fatalf("synthetic defaults must be deterministic")
	}
}
