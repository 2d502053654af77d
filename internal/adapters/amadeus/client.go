package amadeus

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"staysearch/internal/adapters/observability"
	"staysearch/internal/domain"
)

const (
	searchRadiusKM    = 20
	maxCatalogSize    = 50 // cap after dedupe to bound downstream cost
	maxEnriched       = 15 // leading subset that gets live offers
	enrichConcurrency = 4
	tokenMargin       = 60 * time.Second // refresh this early
)

// Client fetches the live hotel catalog: credential-grant token, by-city
// catalog query, then per-hotel offer enrichment. Offer failures are
// non-fatal; token and catalog failures are returned to the caller.
type Client struct {
	base   string
	hc     *http.Client
	id     string
	secret string
	rl     *rate.Limiter

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func New(base, id, secret string, rps int) (*Client, error) {
	if id == "" || secret == "" {
		return nil, fmt.Errorf("client credentials are required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		hc:     &http.Client{Timeout: 20 * time.Second},
		id:     id,
		secret: secret,
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrUnauthorized = errors.New("amadeus: unauthorized")
	ErrForbidden    = errors.New("amadeus: forbidden")
	ErrNotFound     = errors.New("amadeus: not found")
)

// FetchCatalog implements domain.CatalogProvider.
func (c *Client) FetchCatalog(ctx context.Context, cityCode string, stay domain.StayDates) ([]domain.Hotel, error) {
	tok, err := c.bearer(ctx)
	if err != nil {
		return nil, fmt.Errorf("token acquisition: %w", err)
	}

	raw, err := c.hotelsByCity(ctx, tok, cityCode)
	if err != nil {
		return nil, fmt.Errorf("catalog query for %s: %w", cityCode, err)
	}

	// Dedupe by identity, first occurrence wins, then cap.
	seen := make(map[string]struct{}, len(raw))
	deduped := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		id := lookupStr(r, "hotelId")
		if id == "" {
			id = lookupStr(r, "dupeId")
		}
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, r)
		if len(deduped) == maxCatalogSize {
			break
		}
	}

	hotels := make([]domain.Hotel, len(deduped))
	for i, r := range deduped {
		hotels[i] = normalizeBasic(r, cityCode)
	}

	c.enrich(ctx, tok, hotels, stay)
	return hotels, nil
}

// enrich fetches live offers for the leading subset. Every failure here is
// swallowed: the affected hotels simply stay on basic data.
func (c *Client) enrich(ctx context.Context, tok string, hotels []domain.Hotel, stay domain.StayDates) {
	n := len(hotels)
	if n > maxEnriched {
		n = maxEnriched
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			offer, err := c.hotelOffer(gctx, tok, hotels[i].ID, stay)
			if err != nil {
				log.Debug().Err(err).Str("hotel", hotels[i].ID).Msg("offer enrichment skipped")
				return nil
			}
			applyOffer(&hotels[i], offer)
			return nil
		})
	}
	_ = g.Wait()
}

/********** token cache **********/

// bearer returns a valid access token, reusing the cached one until it is
// within tokenMargin of expiry.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.id},
		"client_secret": {c.secret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("amadeus", "token", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", ErrUnauthorized
	case http.StatusForbidden:
		return "", ErrForbidden
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", errors.New("token response missing access_token")
	}
	c.token = body.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - tokenMargin)
	return c.token, nil
}

/********** endpoint calls **********/

func (c *Client) hotelsByCity(ctx context.Context, tok, cityCode string) ([]map[string]any, error) {
	q := url.Values{
		"cityCode":   {cityCode},
		"radius":     {strconv.Itoa(searchRadiusKM)},
		"radiusUnit": {"KM"},
		"ratings":    {"3,4,5"}, // bound response size to the quality band we serve
	}
	var out struct {
		Data []map[string]any `json:"data"`
	}
	u := c.base + "/v1/reference-data/locations/hotels/by-city?" + q.Encode()
	if err := c.get(ctx, u, tok, "hotels-by-city", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) hotelOffer(ctx context.Context, tok, hotelID string, stay domain.StayDates) (map[string]any, error) {
	q := url.Values{"hotelIds": {hotelID}}
	if stay.Guests > 0 {
		q.Set("adults", strconv.Itoa(stay.Guests))
	}
	if stay.CheckIn != "" {
		q.Set("checkInDate", stay.CheckIn)
	}
	if stay.CheckOut != "" {
		q.Set("checkOutDate", stay.CheckOut)
	}
	var out struct {
		Data []map[string]any `json:"data"`
	}
	u := c.base + "/v3/shopping/hotel-offers?" + q.Encode()
	if err := c.get(ctx, u, tok, "hotel-offers", &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, ErrNotFound
	}
	return out.Data[0], nil
}

/********** HTTP internals **********/

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, url, tok, endpoint string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "staysearch/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("amadeus", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
