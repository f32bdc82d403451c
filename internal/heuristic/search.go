// Package heuristic implements the phase-2 observer: attached to the host
// during a policy-guided exploration at a single input size, it consults a
// loaded PolicyTrie at every branch to prune the choices offered to the
// host, and tracks the heaviest terminal path actually visited.
package heuristic

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/history"
	"github.com/janpfeifer/wcanalysis/internal/host"
	"github.com/janpfeifer/wcanalysis/internal/policy"
)

// DefaultMaxKeyLen bounds the context-preserving history built at each
// branch before querying the policy. Matches policygen.DefaultMaxKeyLen so
// a key inserted by phase 1 is comparable to one queried by phase 2.
const DefaultMaxKeyLen = 8

// Fallback selects what happens at a branch the policy has no opinion about
// (a "policy miss" -- recovered locally, never surfaced as an error).
type Fallback int

const (
	// ExploreAll offers every available choice to the host. Expensive but
	// keeps worst-case detection correct.
	ExploreAll Fallback = iota
	// FirstChoice deterministically restricts to the first available
	// choice. Cheap, but may underestimate the true worst case.
	FirstChoice
)

// Search drives a single policy-guided exploration.
//
// Single-use and single-threaded: create a fresh Search per input size --
// no state is shared across explorations.
type Search struct {
	trie      *policy.PolicyTrie
	maxKeyLen int
	fallback  Fallback

	found   bool
	best    float64
	bestEnd host.HistoryHandle
}

// New returns a Search consulting trie, with default settings.
func New(trie *policy.PolicyTrie) *Search {
	return &Search{trie: trie, maxKeyLen: DefaultMaxKeyLen, fallback: ExploreAll}
}

// WithMaxKeyLen overrides DefaultMaxKeyLen.
func (s *Search) WithMaxKeyLen(n int) *Search {
	s.maxKeyLen = n
	return s
}

// WithFallback overrides the no-solver fallback (default ExploreAll),
// corresponding to the `heuristic.noSolver` configuration option.
func (s *Search) WithFallback(f Fallback) *Search {
	s.fallback = f
	return s
}

// Hooks returns the host.Hooks to attach for phase 2.
func (s *Search) Hooks() host.Hooks {
	return host.Hooks{
		OnBranch:   s.onBranch,
		OnTerminal: s.onTerminal,
	}
}

func (s *Search) onBranch(ev host.BranchEvent) []decision.Choice {
	// Only Decisions made in the branch's own frame form its history, as in
	// the phase-1 keys: if the preceding Decision belongs to another frame,
	// the history is empty.
	var h history.Path
	if ev.History != nil && ev.History.Decision().Context == ev.Context {
		h = history.New(ev.History, true, s.maxKeyLen)
	}
	recommended := s.trie.ChoicesForLongestSuffix(h)

	if len(recommended) == 0 {
		klog.V(2).Infof("heuristic: policy miss at branch %v, history %v", ev.Branch.BranchID(), h)
		if s.fallback == FirstChoice && len(ev.Available) > 0 {
			return ev.Available[:1]
		}
		return nil // ExploreAll, or nothing available to restrict to.
	}

	allowed := make([]decision.Choice, 0, len(ev.Available))
	for _, c := range ev.Available {
		if recommended.Has(int(c)) {
			allowed = append(allowed, c)
		}
	}
	if len(allowed) == 0 {
		// The policy recommends choices the host isn't offering here (a
		// stale or mismatched policy). Defensively fall back rather than
		// starve the exploration of any path at all.
		klog.V(2).Infof("heuristic: recommended choices %v absent from available %v, falling back", recommended, ev.Available)
		return nil
	}
	return allowed
}

func (s *Search) onTerminal(ev host.TerminalEvent) {
	if !s.found || ev.Cost > s.best {
		s.found = true
		s.best = ev.Cost
		s.bestEnd = ev.History
	}
}

// Result returns the cost and Decision sequence of the heaviest path
// observed, and whether any terminal was visited at all.
func (s *Search) Result() (cost float64, path history.Path, found bool) {
	if !s.found {
		return 0, history.Path{}, false
	}
	return s.best, history.New(s.bestEnd, false, 0), true
}

// Run drives a full phase-2 exploration of h at a single input size,
// consulting trie, and returns WC(n) and its witnessing path.
func Run(ctx context.Context, h host.Host, trie *policy.PolicyTrie, opts ...func(*Search) *Search) (cost float64, path history.Path, err error) {
	s := New(trie)
	for _, opt := range opts {
		s = opt(s)
	}
	if runErr := h.Run(ctx, s.Hooks()); runErr != nil {
		return 0, history.Path{}, runErr
	}
	cost, path, _ = s.Result()
	return cost, path, nil
}
