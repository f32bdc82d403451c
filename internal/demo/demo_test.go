package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/host"
)

func TestWorstCaseIsNSquared(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5} {
		var best float64
		var found bool
		h := New(n)
		err := h.Run(context.Background(), host.Hooks{
			OnBranch: func(ev host.BranchEvent) []decision.Choice { return nil },
			OnTerminal: func(ev host.TerminalEvent) {
				if !found || ev.Cost > best {
					found = true
					best = ev.Cost
				}
			},
		})
		require.NoError(t, err)
		assert.Equal(t, float64(n*n), best)
	}
}
