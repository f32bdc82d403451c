// Package hosttest provides a small deterministic fake host used to exercise
// the observer protocol (package host) end to end in tests, without pulling
// in a real symbolic-execution backend.
//
// It is a helper package (not suffixed _test.go) rather than a _test.go
// file so it can be shared across several packages' test suites.
package hosttest

import (
	"context"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/host"
)

// Node describes one point of a tiny declarative program tree used as a
// stand-in for the symbolic-execution host. A Node with NumChoices == 0 is a
// leaf; otherwise it is a branch with that many outgoing edges.
type Node struct {
	// Branch identifies the branch site. Ignored for leaves.
	Branch decision.BranchID

	// NumChoices is the number of outgoing edges. Zero means this is a leaf.
	NumChoices int

	// NewFrame, if true, starts a fresh stack-frame activation at this node:
	// the Decision made here (and any descendants, until another NewFrame
	// node is reached) carry a Context distinct from the enclosing one. Used
	// to simulate multiple call sites of the same procedure.
	NewFrame bool

	// Cost computes the resource cost of this leaf for input size n. Only
	// consulted when NumChoices == 0.
	Cost func(n int) float64

	// Next returns the child reached by taking the given choice, for input
	// size n. Only consulted when NumChoices > 0.
	Next func(n int, choice int) *Node
}

// BranchID implements decision.BranchInstruction.
func (node *Node) BranchID() decision.BranchID { return node.Branch }

// Host runs explorations of a fixed Program tree at a fixed input size,
// honoring whatever pruning Hooks.OnBranch requests.
type Host struct {
	Root *Node
	N    int
}

// New returns a Host that explores Root at input size n.
func New(root *Node, n int) *Host {
	return &Host{Root: root, N: n}
}

// Run implements host.Host.
func (h *Host) Run(ctx context.Context, hooks host.Hooks) error {
	return walk(ctx, h.Root, h.N, nil, nil, hooks)
}

// frameToken is a distinct pointer per stack-frame activation, giving
// decision.ContextID reference-identity semantics: two Decisions compare
// context-equal only if they share the same frame's token.
type frameToken struct{}

// histLink is a HistoryHandle implementation: an immutable linked list node.
type histLink struct {
	d    decision.Decision
	prev *histLink
}

func (h *histLink) Decision() decision.Decision { return h.d }

func (h *histLink) Prev() (host.HistoryHandle, bool) {
	if h.prev == nil {
		return nil, false
	}
	return h.prev, true
}

func walk(ctx context.Context, node *Node, n int, frame decision.ContextID, hist *histLink, hooks host.Hooks) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if node.NewFrame {
		frame = &frameToken{}
	}
	if node.NumChoices == 0 {
		var histHandle host.HistoryHandle
		if hist != nil {
			histHandle = hist
		}
		hooks.OnTerminal(host.TerminalEvent{Cost: node.Cost(n), History: histHandle})
		return nil
	}

	available := make([]decision.Choice, node.NumChoices)
	for i := range available {
		available[i] = decision.Choice(i)
	}
	var histHandle host.HistoryHandle
	if hist != nil {
		histHandle = hist
	}
	allowed := hooks.OnBranch(host.BranchEvent{
		Branch:    node,
		Available: available,
		Context:   frame,
		History:   histHandle,
	})
	if allowed == nil {
		allowed = available
	}
	for _, c := range allowed {
		d := decision.New(node, c, frame)
		nextHist := &histLink{d: d, prev: hist}
		child := node.Next(n, int(c))
		if err := walk(ctx, child, n, frame, nextHist, hooks); err != nil {
			return err
		}
	}
	return nil
}
