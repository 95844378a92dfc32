package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/leeaandrob/stockcal/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const dailyJob = "daily-update"

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Regenerate and publish once a day in-process",
	Long: `Run the daily update at SCHEDULE_TIME in TIMEZONE until interrupted.

Send SIGUSR1 to trigger a run immediately. Runs are not serialized: a
manual trigger during a scheduled run starts a second one.

Examples:
  stockcal-gen schedule
  SCHEDULE_TIME=07:30 TIMEZONE=Asia/Taipei stockcal-gen schedule
  kill -USR1 <pid>                          # Run now`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().Bool("run-now", false, "also run once at startup")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	runNow, _ := cmd.Flags().GetBool("run-now")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	daily, err := scheduler.ParseDaily(cfg.ScheduleTime, loc)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	updater, closeLedger, err := newUpdater(ctx, cfg.PublishEnabled, true)
	if err != nil {
		return err
	}
	defer closeLedger()

	sched := scheduler.NewScheduler()
	sched.AddJob(&scheduler.Job{
		Name:     dailyJob,
		Schedule: daily,
		Handler: func(ctx context.Context) error {
			_, err := updater.Run(ctx, "schedule", models.GeneratedKinds...)
			return err
		},
	})

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server error")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigChan)

	sched.Start()
	if runNow {
		if err := sched.RunJobNow(dailyJob); err != nil {
			log.Error().Err(err).Msg("Failed to trigger startup run")
		}
	}

	log.Info().
		Str("at", cfg.ScheduleTime).
		Str("timezone", cfg.Timezone).
		Msg("Scheduler running")

	for sig := range sigChan {
		if sig == syscall.SIGUSR1 {
			log.Info().Msg("Manual trigger received")
			if err := sched.RunJobNow(dailyJob); err != nil {
				log.Error().Err(err).Msg("Failed to trigger run")
			}
			continue
		}
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		break
	}

	sched.Stop()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsServer.Shutdown(shutdownCtx)
	}

	log.Info().Msg("Scheduler stopped")
	return nil
}
