package chart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/wcanalysis/internal/trend"
)

func TestRenderWritesFile(t *testing.T) {
	series := []trend.Point{{N: 0, Cost: 0}, {N: 1, Cost: 1}, {N: 2, Cost: 4}}
	models, err := trend.FitAll(context.Background(), series)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wc.png")
	err = Render(path, series, models, Options{
		Title:           "worst-case growth",
		Horizon:         trend.Horizon(len(series)),
		ReqMaxInputSize: 5,
		ReqMaxRes:       50,
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderWithNoModels(t *testing.T) {
	series := []trend.Point{{N: 0, Cost: 0}}
	path := filepath.Join(t.TempDir(), "wc.png")
	require.NoError(t, Render(path, series, nil, Options{Title: "no models"}))
}
