package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/wcanalysis/internal/trend"
)

func testContext() context.Context { return context.Background() }

func TestPolicySummaryEmpty(t *testing.T) {
	out := PolicySummary(5, func(int) int { return 0 }, nil, nil)
	assert.Contains(t, out, "N0=5")
	assert.Contains(t, out, "empty")
}

func TestPolicySummaryWithChoices(t *testing.T) {
	counts := map[int]int{0: 2, 1: 5}
	freqs := map[int]float32{0: 2.0 / 7, 1: 5.0 / 7}
	out := PolicySummary(3, func(c int) int { return counts[c] }, freqs, []int{0, 1})
	assert.Contains(t, out, "choice 0")
	assert.Contains(t, out, "choice 1")
}

func TestSeriesIncludesBestFit(t *testing.T) {
	series := []trend.Point{{N: 0, Cost: 0}, {N: 1, Cost: 1}, {N: 2, Cost: 2}}
	models, err := trend.FitAll(testContext(), series)
	require.NoError(t, err)

	out := Series(series, models)
	assert.Contains(t, out, "best fit")
}

func TestSummaryWriteJSON(t *testing.T) {
	series := []trend.Point{{N: 0, Cost: 0}, {N: 1, Cost: 1}}
	models, err := trend.FitAll(testContext(), series)
	require.NoError(t, err)

	summary := NewSummary(3, 10, false, trend.Horizon(len(series)), series, models)
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, summary.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var roundTripped Summary
	require.NoError(t, json.Unmarshal(data, &roundTripped))
	assert.Equal(t, summary.PolicyInputSize, roundTripped.PolicyInputSize)
	assert.Equal(t, summary.Series, roundTripped.Series)
}
