// Package policygen implements the phase-1 observer: attached to the host
// during an exhaustive exploration at a single, small input size, it
// remembers the heaviest leaf discovered and compiles the Decisions on its
// path into a PolicyTrie (package policy).
package policygen

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/history"
	"github.com/janpfeifer/wcanalysis/internal/host"
	"github.com/janpfeifer/wcanalysis/internal/policy"
)

// DefaultMaxKeyLen bounds how many Decisions of context-preserving history
// are inserted as a PolicyTrie key for each Decision on the heaviest path.
// Kept small: the policy is most predictive near the branch being decided.
const DefaultMaxKeyLen = 8

// Generator observes a single exhaustive exploration and, at the end,
// yields a PolicyTrie recommending the choices taken on the heaviest
// (highest-cost) path discovered.
//
// A Generator is single-use: create one per exploration with New.
type Generator struct {
	maxKeyLen int

	found    bool
	bestCost float64
	bestEnd  host.HistoryHandle
}

// New returns a Generator with default settings.
func New() *Generator {
	return &Generator{maxKeyLen: DefaultMaxKeyLen}
}

// WithMaxKeyLen overrides DefaultMaxKeyLen.
func (g *Generator) WithMaxKeyLen(n int) *Generator {
	g.maxKeyLen = n
	return g
}

// Hooks returns the host.Hooks to attach for phase 1. OnBranch never prunes
// -- phase 1 must see every path to find the true heaviest leaf at N₀.
func (g *Generator) Hooks() host.Hooks {
	return host.Hooks{
		OnBranch:   g.onBranch,
		OnTerminal: g.onTerminal,
	}
}

func (g *Generator) onBranch(ev host.BranchEvent) []decision.Choice {
	return nil // no pruning: explore every available choice.
}

func (g *Generator) onTerminal(ev host.TerminalEvent) {
	// Ties are broken by preferring the earliest-discovered heaviest path,
	// so a later, merely-equal cost never replaces it.
	if !g.found || ev.Cost > g.bestCost {
		g.found = true
		g.bestCost = ev.Cost
		g.bestEnd = ev.History
		klog.V(2).Infof("policygen: new heaviest leaf cost=%g", ev.Cost)
	}
}

// Finalize builds the PolicyTrie from the heaviest path discovered. If no
// terminal was ever observed (the host never called OnTerminal), or the
// heaviest path had no branches, the result is an empty trie.
func (g *Generator) Finalize() *policy.PolicyTrie {
	builder := policy.NewBuilder()
	if !g.found {
		return builder.Build()
	}

	full := history.New(g.bestEnd, false, 0)
	for i := 0; i < full.Len(); i++ {
		d := full.At(i)
		key := full.CtxPreservingSuffix(i, g.maxKeyLen)
		builder.Put(key, int(d.Choice))
	}
	klog.V(1).Infof("policygen: heaviest path had %d decisions, cost=%g", full.Len(), g.bestCost)
	return builder.Build()
}

// BestCost returns the cost of the heaviest leaf discovered, and whether any
// terminal was observed at all.
func (g *Generator) BestCost() (cost float64, found bool) {
	return g.bestCost, g.found
}

// Run drives a full phase-1 exhaustive exploration of h and returns the
// compiled PolicyTrie. It is the entry point package driver calls for the
// one-time phase-1 step of the two-phase analysis.
func Run(ctx context.Context, h host.Host, opts ...func(*Generator) *Generator) (*policy.PolicyTrie, error) {
	g := New()
	for _, opt := range opts {
		g = opt(g)
	}
	if err := h.Run(ctx, g.Hooks()); err != nil {
		return nil, err
	}
	return g.Finalize(), nil
}
