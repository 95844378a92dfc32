// Package content regenerates the daily StockCal datasets with an AI model.
package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leeaandrob/stockcal/internal/dataset"
	"github.com/leeaandrob/stockcal/internal/llm"
	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/leeaandrob/stockcal/internal/prompts"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnsupportedKind means the dataset is not generated (events are
	// maintained by hand).
	ErrUnsupportedKind = errors.New("dataset is not generated")

	// ErrCompletion means the AI call failed.
	ErrCompletion = errors.New("AI completion failed")
)

// Result describes one successful regeneration.
type Result struct {
	Kind       models.Kind
	Date       string
	Path       string
	Items      int
	TokensUsed int
}

// Generator regenerates snapshot datasets.
type Generator struct {
	store    *dataset.Store
	llm      llm.Completer
	prompts  prompts.Set
	location *time.Location
	now      func() time.Time
}

// NewGenerator creates a new content generator. Run dates are taken in loc.
func NewGenerator(store *dataset.Store, completer llm.Completer, set prompts.Set, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		store:    store,
		llm:      completer,
		prompts:  set,
		location: loc,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// Today returns the run date in the generator's timezone.
func (g *Generator) Today() string {
	return g.now().In(g.location).Format(models.DateLayout)
}

// Regenerate asks the model for a fresh snapshot of kind and replaces the
// dataset file with it. On any error the existing file is left untouched.
// Nothing is retried.
func (g *Generator) Regenerate(ctx context.Context, kind models.Kind) (*Result, error) {
	if !kind.Generated() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	today := g.Today()

	log.Info().
		Str("kind", string(kind)).
		Str("date", today).
		Msg("Regenerating dataset")

	prompt, err := g.prompts.Render(kind, today)
	if err != nil {
		return nil, err
	}

	resp, err := g.llm.Complete(ctx, llm.Request{
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
		Temperature:  prompt.Temperature,
		MaxTokens:    prompt.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompletion, kind, err)
	}

	log.Debug().
		Str("kind", string(kind)).
		Int("reply_chars", len(resp.Content)).
		Str("finish_reason", resp.FinishReason).
		Int("tokens", resp.TokensUsed.TotalTokens).
		Msg("Model replied")

	doc, err := ParseDocument(kind, resp.Content)
	if err != nil {
		log.Warn().
			Str("kind", string(kind)).
			Str("reply_head", truncate(resp.Content, 200)).
			Msg("Model reply did not parse")
		return nil, err
	}

	doc.Stamp(today)

	if err := g.store.Write(kind, doc); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", kind, err)
	}

	log.Info().
		Str("kind", string(kind)).
		Int("items", doc.Len()).
		Msg("Dataset regenerated")

	return &Result{
		Kind:       kind,
		Date:       today,
		Path:       g.store.Path(kind),
		Items:      doc.Len(),
		TokensUsed: resp.TokensUsed.TotalTokens,
	}, nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
