package prompts

import (
	"testing"

	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplatesCoverGeneratedKinds(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	for _, kind := range models.GeneratedKinds {
		p, err := set.Render(kind, "2026-10-15")
		require.NoError(t, err, kind)
		assert.Contains(t, p.User, "2026-10-15")
		assert.NotContains(t, p.User, "{{")
		assert.NotEmpty(t, p.System)
		assert.InDelta(t, 0.7, p.Temperature, 0.001)
	}

	_, err = set.Render(models.KindEvents, "2026-10-15")
	assert.Error(t, err, "events are edited by hand")
}

func TestParseRejectsBadTemplates(t *testing.T) {
	_, err := Parse([]byte("weather:\n  user: hi\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("strategies:\n  system: only system\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("strategies:\n  user: \"{{ .Today \"\n"))
	assert.Error(t, err)
}

func TestRenderIsFixedPerDate(t *testing.T) {
	set, err := Parse([]byte("hotTrends:\n  user: \"today is {{ .Today }}\"\n  temperature: 0.2\n"))
	require.NoError(t, err)

	a, err := set.Render(models.KindHotTrends, "2026-10-15")
	require.NoError(t, err)
	b, err := set.Render(models.KindHotTrends, "2026-10-15")
	require.NoError(t, err)

	assert.Equal(t, "today is 2026-10-15", a.User)
	assert.Equal(t, a, b)
}
