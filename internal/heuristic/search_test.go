package heuristic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/history"
	"github.com/janpfeifer/wcanalysis/internal/host/hosttest"
	"github.com/janpfeifer/wcanalysis/internal/policy"
)

// TestPruningMonotonicity: the search never visits a choice outside a
// non-empty recommended set.
func TestPruningMonotonicity(t *testing.T) {
	b := policy.NewBuilder()
	b.Put(history.Of(), 1) // root recommends choice 1 only.
	trie := b.Build()

	visited := map[int]bool{}
	choice0 := &hosttest.Node{Cost: func(n int) float64 { visited[0] = true; return float64(n) }}
	choice1 := &hosttest.Node{Cost: func(n int) float64 { visited[1] = true; return float64(n * n) }}
	root := &hosttest.Node{
		Branch:     "root",
		NumChoices: 2,
		Next: func(n int, choice int) *hosttest.Node {
			if choice == 1 {
				return choice1
			}
			return choice0
		},
	}

	cost, _, err := Run(context.Background(), hosttest.New(root, 7), trie)
	require.NoError(t, err)
	assert.Equal(t, 49.0, cost)
	assert.True(t, visited[1])
	assert.False(t, visited[0], "pruned choice must never be visited")
}

// TestPolicyMissExploresAll: a branch site never recorded in phase 1 keeps
// the default ExploreAll fallback, so the true worst case is still found.
func TestPolicyMissExploresAll(t *testing.T) {
	trie := policy.NewBuilder().Build() // empty: every lookup misses.

	choice0 := &hosttest.Node{Cost: func(n int) float64 { return float64(n) }}
	choice1 := &hosttest.Node{Cost: func(n int) float64 { return float64(n * n) }}
	root := &hosttest.Node{
		Branch:     "root",
		NumChoices: 2,
		Next: func(n int, choice int) *hosttest.Node {
			if choice == 1 {
				return choice1
			}
			return choice0
		},
	}

	cost, _, err := Run(context.Background(), hosttest.New(root, 7), trie)
	require.NoError(t, err)
	assert.Equal(t, 49.0, cost, "exploring all choices must still find the true worst case")
}

// TestPolicyMissFirstChoiceFallback exercises the FirstChoice fallback: with
// an empty policy, only the first available choice is ever taken.
func TestPolicyMissFirstChoiceFallback(t *testing.T) {
	trie := policy.NewBuilder().Build()

	visited := map[int]bool{}
	choice0 := &hosttest.Node{Cost: func(n int) float64 { visited[0] = true; return float64(n) }}
	choice1 := &hosttest.Node{Cost: func(n int) float64 { visited[1] = true; return float64(n * n) }}
	root := &hosttest.Node{
		Branch:     "root",
		NumChoices: 2,
		Next: func(n int, choice int) *hosttest.Node {
			if choice == 1 {
				return choice1
			}
			return choice0
		},
	}

	_, _, err := Run(context.Background(), hosttest.New(root, 7), trie, func(s *Search) *Search {
		return s.WithFallback(FirstChoice)
	})
	require.NoError(t, err)
	assert.True(t, visited[0])
	assert.False(t, visited[1])
}

// TestContextSensitiveSuffix: the recommended choice at branch "b" depends
// on which choice was taken in-frame at the
// preceding branch "a". The policy recommends choice 0 at "b" when "a" took
// choice 1, and choice 1 at "b" when "a" took choice 0.
func TestContextSensitiveSuffix(t *testing.T) {
	b := policy.NewBuilder()
	b.Put(history.Of(decision.Decision{Branch: "a", Choice: 1}), 0)
	b.Put(history.Of(decision.Decision{Branch: "a", Choice: 0}), 1)
	trie := b.Build()

	var seenPairs [][2]int
	leaf := &hosttest.Node{Cost: func(n int) float64 { return float64(n) }}
	branchB := &hosttest.Node{
		Branch:     "b",
		NumChoices: 2,
		Next: func(n int, choiceB int) *hosttest.Node {
			seenPairs = append(seenPairs, [2]int{-1, choiceB})
			return leaf
		},
	}
	branchA := &hosttest.Node{
		Branch:     "a",
		NumChoices: 2,
		NewFrame:   true,
		Next:       func(n int, choiceA int) *hosttest.Node { return branchB },
	}

	_, _, err := Run(context.Background(), hosttest.New(branchA, 4), trie)
	require.NoError(t, err)

	got := map[int]bool{}
	for _, pair := range seenPairs {
		got[pair[1]] = true
	}
	assert.True(t, got[0], "b=0 must be explored, recommended after a=1")
	assert.True(t, got[1], "b=1 must be explored, recommended after a=0")
	assert.Len(t, seenPairs, 2, "exactly one b choice must survive pruning under each a branch")
}
