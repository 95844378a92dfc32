// Package update runs a full daily update: regenerate, publish, record.
package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leeaandrob/stockcal/internal/content"
	"github.com/leeaandrob/stockcal/internal/metrics"
	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/leeaandrob/stockcal/internal/publish"
	"github.com/leeaandrob/stockcal/internal/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Regenerator rewrites one dataset.
type Regenerator interface {
	Regenerate(ctx context.Context, kind models.Kind) (*content.Result, error)
}

// Publisher commits and pushes dataset files.
type Publisher interface {
	Publish(ctx context.Context, files []string, at time.Time) (*publish.Result, error)
}

// Report summarizes one update.
type Report struct {
	RunID   string
	Records []models.RunRecord
	Publish *publish.Result
}

// Updater ties regeneration, publishing and the run ledger together.
type Updater struct {
	gen    Regenerator
	pub    Publisher
	ledger storage.RunLedger
	loc    *time.Location
	now    func() time.Time
}

// NewUpdater creates an updater. A nil publisher disables publishing; a nil
// ledger keeps records in memory only.
func NewUpdater(gen Regenerator, pub Publisher, ledger storage.RunLedger) *Updater {
	if ledger == nil {
		ledger = storage.NewMemoryLedger()
	}
	return &Updater{gen: gen, pub: pub, ledger: ledger, loc: time.UTC, now: time.Now}
}

// SetLocation sets the timezone commit messages are dated in. It should be
// the generator's, so a commit and the files it carries agree on the day.
func (u *Updater) SetLocation(loc *time.Location) {
	if loc != nil {
		u.loc = loc
	}
}

// Run regenerates each kind, publishes the files that were rewritten and
// records one ledger entry per kind. Kinds are independent: a failed kind
// leaves its file untouched and does not stop the others. The returned
// error joins every generation failure and the publish failure, if any.
func (u *Updater) Run(ctx context.Context, trigger string, kinds ...models.Kind) (*Report, error) {
	kinds = dedupe(kinds)
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no datasets to regenerate")
	}

	report := &Report{RunID: uuid.NewString()}
	started := u.now()

	log.Info().
		Str("run_id", report.RunID).
		Str("trigger", trigger).
		Int("kinds", len(kinds)).
		Msg("Update run started")

	results := make([]*content.Result, len(kinds))
	genErrs := make([]error, len(kinds))
	finished := make([]time.Time, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			results[i], genErrs[i] = u.gen.Regenerate(ctx, kind)
			finished[i] = u.now()
			return genErrs[i]
		})
	}
	_ = g.Wait()

	var files []string
	for _, res := range results {
		if res != nil {
			files = append(files, res.Path)
		}
	}

	var pubErr error
	if u.pub != nil && len(files) > 0 {
		report.Publish, pubErr = u.pub.Publish(ctx, files, u.now().In(u.loc))
		switch {
		case pubErr != nil:
			metrics.RecordPublish("failed")
			log.Error().Err(pubErr).Str("run_id", report.RunID).Msg("Publish failed")
		case report.Publish.Changed:
			metrics.RecordPublish("success")
		default:
			metrics.RecordPublish("unchanged")
		}
	}

	for i, kind := range kinds {
		rec := models.RunRecord{
			RunID:      report.RunID,
			Kind:       kind,
			Trigger:    trigger,
			StartedAt:  started,
			FinishedAt: finished[i],
		}

		switch {
		case genErrs[i] != nil:
			rec.Status = models.RunGenerateFailed
			rec.Error = genErrs[i].Error()
		case pubErr != nil:
			rec.Status = models.RunPublishFailed
			rec.Error = pubErr.Error()
		default:
			rec.Status = models.RunSuccess
		}

		if res := results[i]; res != nil {
			rec.Date = res.Date
			rec.Items = res.Items
			rec.TokensUsed = res.TokensUsed
		}
		if report.Publish != nil {
			rec.Commit = report.Publish.Commit
		}

		metrics.RecordRegenerate(string(kind), string(rec.Status),
			rec.FinishedAt.Sub(rec.StartedAt).Seconds(), rec.FinishedAt.Unix())

		if err := u.ledger.SaveRun(ctx, &rec); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to record run")
		}
		report.Records = append(report.Records, rec)

		ev := log.Info()
		if rec.Status != models.RunSuccess {
			ev = log.Error()
		}
		ev.Str("run_id", rec.RunID).
			Str("kind", string(kind)).
			Str("status", string(rec.Status)).
			Str("error", rec.Error).
			Msg("Update run finished")
	}

	return report, errors.Join(append(genErrs, pubErr)...)
}

// Runs returns the newest ledger entries.
func (u *Updater) Runs(ctx context.Context, kind models.Kind, limit int) ([]models.RunRecord, error) {
	return u.ledger.GetRecentRuns(ctx, kind, limit)
}

func dedupe(kinds []models.Kind) []models.Kind {
	seen := map[models.Kind]bool{}
	out := make([]models.Kind, 0, len(kinds))
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
