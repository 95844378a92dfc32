package storage

import (
	"context"
	"testing"
	"time"

	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerRecentRuns(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	base := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	for i, kind := range []models.Kind{models.KindHotTrends, models.KindStrategies, models.KindHotTrends} {
		require.NoError(t, ledger.SaveRun(ctx, &models.RunRecord{
			RunID:     "run",
			Kind:      kind,
			Status:    models.RunSuccess,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := ledger.GetRecentRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(2*time.Hour), all[0].StartedAt, "newest first")

	hot, err := ledger.GetRecentRuns(ctx, models.KindHotTrends, 1)
	require.NoError(t, err)
	require.Len(t, hot, 1)
	assert.Equal(t, models.KindHotTrends, hot[0].Kind)
	assert.Equal(t, base.Add(2*time.Hour), hot[0].StartedAt)
}

var _ RunLedger = (*Store)(nil)
var _ RunLedger = (*MemoryLedger)(nil)
