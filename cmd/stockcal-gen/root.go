package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/leeaandrob/stockcal/internal/config"
	"github.com/leeaandrob/stockcal/internal/content"
	"github.com/leeaandrob/stockcal/internal/dataset"
	"github.com/leeaandrob/stockcal/internal/llm"
	"github.com/leeaandrob/stockcal/internal/prompts"
	"github.com/leeaandrob/stockcal/internal/publish"
	"github.com/leeaandrob/stockcal/internal/storage"
	"github.com/leeaandrob/stockcal/internal/update"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stockcal-gen",
	Short: "Regenerate and publish the StockCal datasets",
	Long: `stockcal-gen rewrites the hot-trends and strategies datasets from an AI
model and commits the new files to git.

Configuration is read from the environment (and .env when present).

Example usage:
  stockcal-gen regenerate                  # Regenerate both datasets and publish
  stockcal-gen regenerate --kind strategies
  stockcal-gen regenerate --no-publish     # Write the files only
  stockcal-gen schedule                    # Run daily at SCHEDULE_TIME
  stockcal-gen check                       # Report dataset health
  stockcal-gen runs --limit 5              # Show recent runs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// initConfig sets up logging and loads the environment configuration.
func initConfig() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Debug || verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg.Validate()
}

// openLedger returns the MongoDB run ledger when MONGO_URI is set and an
// in-process one otherwise. The returned func releases it.
func openLedger(ctx context.Context) (storage.RunLedger, func(), error) {
	if cfg.MongoURI == "" {
		log.Debug().Msg("MONGO_URI not set, run history is kept in memory")
		return storage.NewMemoryLedger(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := storage.NewStore(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect run ledger: %w", err)
	}
	return store, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store.Close(closeCtx)
	}, nil
}

// newUpdater wires the generator, publisher and ledger from cfg.
func newUpdater(ctx context.Context, publishEnabled, push bool) (*update.Updater, func(), error) {
	if err := cfg.ValidateGenerator(); err != nil {
		return nil, nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	completer, err := llm.New(llm.Config{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		Endpoint: cfg.AIEndpoint,
		Model:    cfg.AIModel,
		Timeout:  cfg.AITimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("AI client: %w", err)
	}

	set, err := prompts.Default()
	if err != nil {
		return nil, nil, fmt.Errorf("load prompts: %w", err)
	}
	if cfg.AITemperature > 0 {
		for _, tmpl := range set {
			tmpl.Temperature = float32(cfg.AITemperature)
		}
	}

	gen := content.NewGenerator(dataset.NewStore(cfg.DataDir), completer, set, loc)

	// Leave the interface nil rather than holding a nil *publish.Publisher.
	var pub update.Publisher
	if publishEnabled {
		pub = publish.NewPublisher(publish.Config{
			RepoDir:     cfg.RepoDir,
			Remote:      cfg.GitRemote,
			Branch:      cfg.GitBranch,
			AuthorName:  cfg.GitAuthorName,
			AuthorEmail: cfg.GitAuthorEmail,
			Push:        push,
		}, publish.NewExecExecutor())
	}

	ledger, closeLedger, err := openLedger(ctx)
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("provider", cfg.AIProvider).
		Str("data_dir", cfg.DataDir).
		Bool("publish", publishEnabled).
		Msg("Generator initialized")

	updater := update.NewUpdater(gen, pub, ledger)
	updater.SetLocation(loc)
	return updater, closeLedger, nil
}
