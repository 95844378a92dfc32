// StockCal - investment calendar, hot sectors and strategies.
// Serves the dataset files over a read-only HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leeaandrob/stockcal/internal/api"
	"github.com/leeaandrob/stockcal/internal/config"
	"github.com/leeaandrob/stockcal/internal/dataset"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("StockCal - Starting query service")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	store := dataset.NewStore(cfg.DataDir)

	// A missing file is served as 503 until it appears, so only warn here.
	for _, st := range store.Check(time.Now()) {
		if !st.OK {
			log.Warn().Str("dataset", string(st.Kind)).Str("error", st.Error).Msg("Dataset not available at startup")
		}
	}

	apiServer := api.NewServer(store, cfg.HTTPAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("API server error")
		}
	}()

	log.Info().
		Str("api", cfg.HTTPAddr).
		Str("data_dir", cfg.DataDir).
		Msg("StockCal query service running")

	<-sigChan
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown error")
	}

	log.Info().Msg("StockCal query service stopped")
}
