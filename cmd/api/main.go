package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"geyser-scheduler/internal/api"
	"geyser-scheduler/internal/config"
	"geyser-scheduler/internal/data"
	"geyser-scheduler/internal/logger"
	"geyser-scheduler/internal/metrics"
)

func main() {
	configPath := flag.String("config", os.Getenv("GEYSER_CONFIG"), "server config file (yaml or json, optional)")
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		bootLog := logger.New("", "api")
		bootLog.Fatal().Err(err).Msg("invalid server config")
	}
	log := logger.New(cfg.Env, "api")
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ttl, _ := cfg.TTL()
	cache := data.NewResultCache(ttl, ttl/4)
	defer cache.Close()

	rec, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Cache:    cache,
		Metrics:  rec,
		Gatherer: prometheus.DefaultGatherer,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
