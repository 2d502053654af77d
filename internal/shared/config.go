package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	AmadeusBase   string
	AmadeusID     string
	AmadeusSecret string
	AmadeusRPS    int
	HotelSource   string // mock|live
	PageSize      int
	CacheTTL      time.Duration // search-result slot
	DetailTTL     time.Duration // detail-lookup cache
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisDB:       atoi("REDIS_DB", 0),
		RedisPass:     env("REDIS_PASSWORD", ""),
		AmadeusBase:   env("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusID:     env("AMADEUS_CLIENT_ID", ""),
		AmadeusSecret: env("AMADEUS_CLIENT_SECRET", ""),
		AmadeusRPS:    atoi("AMADEUS_RPS", 5),
		HotelSource:   env("HOTEL_SOURCE", "mock"),
		PageSize:      atoi("PAGE_SIZE", 12),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		DetailTTL:     time.Duration(atoi("DETAIL_CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.HotelSource == "live" && !c.HasCredentials() {
		log.Warn().Msg("HOTEL_SOURCE=live but Amadeus credentials are missing; forcing mock mode")
	}
	return c
}

// UseLive reports whether the live remote path is selected. Absent credentials
// force mock mode regardless of the flag.
func (c Config) UseLive() bool {
	return c.HotelSource == "live" && c.HasCredentials()
}

func (c Config) HasCredentials() bool {
	return c.AmadeusID != "" && c.AmadeusSecret != ""
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
