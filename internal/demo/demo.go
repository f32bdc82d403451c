// Package demo is a small illustrative program under test: a recursive
// binary-choice computation whose depth is the input size n and whose
// "expensive" edge costs n per level, giving a true worst case of n^2.
//
// It exists only so cmd/analyze has something to analyze out of the box.
// The real symbolic-execution host (choice generators, stack frames,
// solver backends) is an external collaborator this module does not
// implement; a real deployment links the Driver against that host instead
// of this package.
package demo

import (
	"context"
	"fmt"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/host"
)

type branch struct {
	id decision.BranchID
}

func (b branch) BranchID() decision.BranchID { return b.id }

type frameToken struct{}

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

// Host is the demo program under test at a fixed input size N.
type Host struct {
	N int
}

// New returns a Host implementing host.Host for input size n. Suitable as a
// driver.HostFactory: driver.New(cfg, func(n int) host.Host { return
// demo.New(n) }).
func New(n int) host.Host {
	return &Host{N: n}
}

// Run implements host.Host: recurses N levels deep, branching two ways at
// each level -- choice 1 ("expensive") costs N per level, choice 0
// ("cheap") costs 1.
func (h *Host) Run(ctx context.Context, hooks host.Hooks) error {
	return visit(ctx, h.N, h.N, 0, nil, hooks)
}

func visit(ctx context.Context, depthRemaining, n int, runningCost float64, hist *histLink, hooks host.Hooks) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var histHandle host.HistoryHandle
	if hist != nil {
		histHandle = hist
	}

	if depthRemaining == 0 {
		hooks.OnTerminal(host.TerminalEvent{Cost: runningCost, History: histHandle})
		return nil
	}

	frame := decision.ContextID(&frameToken{})
	b := branch{id: decision.BranchID(fmt.Sprintf("depth-%d", depthRemaining))}
	available := []decision.Choice{0, 1}
	allowed := hooks.OnBranch(host.BranchEvent{
		Branch:    b,
		Available: available,
		Context:   frame,
		History:   histHandle,
	})
	if allowed == nil {
		allowed = available
	}

	for _, c := range allowed {
		d := decision.New(b, c, frame)
		next := &histLink{d: d, prev: hist}
		step := 1.0
		if c == 1 {
			step = float64(n)
		}
		if err := visit(ctx, depthRemaining-1, n, runningCost+step, next, hooks); err != nil {
			return err
		}
	}
	return nil
}
