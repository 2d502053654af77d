package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"staysearch/internal/adapters/amadeus"
	server "staysearch/internal/adapters/httpserver"
	"staysearch/internal/adapters/observability"
	redisad "staysearch/internal/adapters/redis"
	"staysearch/internal/catalog"
	"staysearch/internal/search"
	"staysearch/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	fallback, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("embedded catalog load failed")
	}
	log.Info().Int("hotels", fallback.Len()).Msg("fallback catalog loaded")

	opts := []search.Option{search.WithPageSize(cfg.PageSize)}
	if cfg.UseLive() {
		client, err := amadeus.New(cfg.AmadeusBase, cfg.AmadeusID, cfg.AmadeusSecret, cfg.AmadeusRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Amadeus client")
		}
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		opts = append(opts,
			search.WithLiveProvider(client),
			search.WithDetailCache(cache, cfg.DetailTTL),
		)
		log.Info().Str("base", cfg.AmadeusBase).Msg("live hotel source enabled")
	} else {
		log.Info().Msg("mock hotel source selected")
	}
	svc := search.NewService(fallback, cfg.CacheTTL, opts...)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
